// Package auth signs authors in with Google ID tokens and keeps them signed
// in with a cookie session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/api/idtoken"
)

var authLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	authLogger = l
}

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("not allowed to sign in")
	ErrInvalidToken    = errors.New("invalid ID token")
)

// Identity is what a verified ID token says about its holder.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

type validateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// GoogleVerifier checks signature, expiry, issuer and audience of Google
// ID tokens.
type GoogleVerifier struct { // implements TokenVerifier
	clientID string
	validate validateFunc
}

func NewGoogleVerifier(clientID string) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, errors.New("google client id is required")
	}
	return &GoogleVerifier{
		clientID: clientID,
		validate: idtoken.Validate,
	}, nil
}

func (g *GoogleVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	payload, err := g.validate(ctx, token, g.clientID)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	identity := identityFromPayload(payload)
	if identity.Subject == "" {
		return Identity{}, fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return Identity{}, fmt.Errorf("%w: email %s is not verified", ErrInvalidToken, identity.Email)
	}

	return identity, nil
}

func identityFromPayload(p *idtoken.Payload) Identity {
	claim := func(name string) string {
		v, _ := p.Claims[name].(string)
		return v
	}
	return Identity{
		Subject: p.Subject,
		Email:   strings.ToLower(claim("email")),
		Name:    claim("name"),
		Picture: claim("picture"),
	}
}
