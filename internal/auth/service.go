package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/debemdeboas/folio/internal/model"
	"github.com/rs/zerolog"
)

type Service struct {
	verifier TokenVerifier
	users    UserRepository
	sessions *Sessions

	// Empty means anyone with a verified Google account may sign in
	allowed map[string]bool
}

func NewService(verifier TokenVerifier, users UserRepository, sessions *Sessions, allowedEmails []string) *Service {
	allowed := make(map[string]bool, len(allowedEmails))
	for _, email := range allowedEmails {
		if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
			allowed[email] = true
		}
	}
	return &Service{
		verifier: verifier,
		users:    users,
		sessions: sessions,
		allowed:  allowed,
	}
}

func (s *Service) Allowed(email string) bool {
	return len(s.allowed) == 0 || s.allowed[strings.ToLower(email)]
}

// Login verifies token, records the user and starts a session.
func (s *Service) Login(w http.ResponseWriter, r *http.Request, token string) (*model.User, error) {
	l := zerolog.Ctx(r.Context())

	identity, err := s.verifier.Verify(r.Context(), token)
	if err != nil {
		l.Warn().Err(err).Msg("ID token rejected")
		return nil, err
	}

	if !s.Allowed(identity.Email) {
		l.Warn().Str("email", identity.Email).Msg("Sign-in from an email that is not allowed")
		return nil, fmt.Errorf("%w: %s", ErrForbidden, identity.Email)
	}

	user, err := s.users.Upsert(r.Context(), identity)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Login(w, r, user.ID); err != nil {
		return nil, fmt.Errorf("error saving session: %w", err)
	}

	authLogger.Info().Str("user_id", string(user.ID)).Str("email", user.Email).Msg("User signed in")
	return user, nil
}

func (s *Service) Logout(w http.ResponseWriter, r *http.Request) error {
	return s.sessions.Logout(w, r)
}

// CurrentUser returns the user behind the request's session.
func (s *Service) CurrentUser(r *http.Request) (*model.User, error) {
	id, ok := UserIDFromContext(r.Context())
	if !ok {
		var err error
		if id, err = s.sessions.UserID(r); err != nil {
			return nil, err
		}
	}

	user, err := s.users.GetByID(r.Context(), id)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrUnauthenticated
	}
	return user, err
}

// Require rejects requests without a session by calling deny, and puts the
// user id in the context of the others.
func (s *Service) Require(deny func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := s.sessions.UserID(r)
			if err != nil {
				zerolog.Ctx(r.Context()).Debug().Msg("Request without a session")
				deny(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
		})
	}
}
