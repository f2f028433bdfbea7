package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/debemdeboas/folio/internal/model"
	"github.com/gorilla/sessions"
)

const (
	MinSecretLength = 32

	sessionUserIDKey = "user_id"
)

type SessionOptions struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// Sessions stores the signed-in user id in an authenticated cookie.
type Sessions struct {
	store sessions.Store
	name  string
}

func NewSessions(secret []byte, opts SessionOptions) (*Sessions, error) {
	if len(secret) < MinSecretLength {
		return nil, errors.New("session secret must be at least 32 bytes")
	}

	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(opts.MaxAge.Seconds()),
		SameSite: http.SameSiteStrictMode,
		Secure:   opts.Secure,
	}

	return &Sessions{store: store, name: opts.Name}, nil
}

func (s *Sessions) Login(w http.ResponseWriter, r *http.Request, userID model.UserID) error {
	// A cookie that fails to decode still yields a fresh session
	sess, _ := s.store.Get(r, s.name)
	sess.Values[sessionUserIDKey] = string(userID)
	return sess.Save(r, w)
}

func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.store.Get(r, s.name)
	delete(sess.Values, sessionUserIDKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

func (s *Sessions) UserID(r *http.Request) (model.UserID, error) {
	sess, err := s.store.Get(r, s.name)
	if err != nil {
		return "", ErrUnauthenticated
	}
	id, ok := sess.Values[sessionUserIDKey].(string)
	if !ok || id == "" {
		return "", ErrUnauthenticated
	}
	return model.UserID(id), nil
}
