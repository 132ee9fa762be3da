// Package auth derives the signed-in user from the backend session token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/nhle/daybook/internal/credential"
	"github.com/nhle/daybook/internal/remote"
)

// TokenSource returns the stored session token.
type TokenSource interface {
	SessionToken() (string, error)
}

// Claims is what daybook reads from a session token.
type Claims struct {
	Subject string
	Email   string
	Expiry  time.Time
}

// Session resolves the user id for remote sync. The token signature is
// checked by the backend, so only the claims and expiry are validated here.
type Session struct {
	tokens TokenSource
	now    func() time.Time
}

// NewSession creates a Session reading tokens from src.
func NewSession(src TokenSource) *Session {
	return &Session{tokens: src, now: time.Now}
}

// UserID returns the subject of the current session token.
func (s *Session) UserID(ctx context.Context) (string, error) {
	claims, err := s.Claims(ctx)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Claims parses the current session token. A missing, malformed or expired
// token yields an error wrapping remote.ErrNotAuthenticated.
func (s *Session) Claims(_ context.Context) (Claims, error) {
	raw, err := s.tokens.SessionToken()
	if errors.Is(err, credential.ErrNotFound) {
		return Claims{}, fmt.Errorf("no session token: %w", remote.ErrNotAuthenticated)
	}
	if err != nil {
		return Claims{}, fmt.Errorf("reading session token: %w", err)
	}
	return Inspect(raw, s.now())
}

// Inspect parses raw without verifying its signature and validates its
// time-based claims against now.
func Inspect(raw string, now time.Time) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, fmt.Errorf("empty session token: %w", remote.ErrNotAuthenticated)
	}

	tok, err := jwt.Parse([]byte(raw),
		jwt.WithVerify(false),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(func() time.Time { return now })),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("invalid session token: %v: %w", err, remote.ErrNotAuthenticated)
	}
	if tok.Subject() == "" {
		return Claims{}, fmt.Errorf("session token has no subject: %w", remote.ErrNotAuthenticated)
	}

	claims := Claims{
		Subject: tok.Subject(),
		Expiry:  tok.Expiration(),
	}
	if email, ok := tok.Get("email"); ok {
		if s, ok := email.(string); ok {
			claims.Email = s
		}
	}
	return claims, nil
}
