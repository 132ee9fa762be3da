package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/nhle/daybook/internal/credential"
	"github.com/nhle/daybook/internal/remote"
)

var now = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

type fakeTokens struct {
	token string
	err   error
}

func (f fakeTokens) SessionToken() (string, error) { return f.token, f.err }

func signToken(t *testing.T, subject string, exp time.Time, email string) string {
	t.Helper()

	b := jwt.NewBuilder().Subject(subject).IssuedAt(now.Add(-time.Hour))
	if !exp.IsZero() {
		b = b.Expiration(exp)
	}
	if email != "" {
		b = b.Claim("email", email)
	}
	tok, err := b.Build()
	if err != nil {
		t.Fatalf("building token: %v", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, []byte("backend-secret")))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return string(signed)
}

func TestUserID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		tokens   fakeTokens
		want     string
		wantAuth bool
	}{
		{
			name:   "valid",
			tokens: fakeTokens{token: signToken(t, "user-1", now.Add(time.Hour), "")},
			want:   "user-1",
		},
		{
			name:   "no expiry",
			tokens: fakeTokens{token: signToken(t, "user-2", time.Time{}, "")},
			want:   "user-2",
		},
		{
			name:     "expired",
			tokens:   fakeTokens{token: signToken(t, "user-1", now.Add(-time.Minute), "")},
			wantAuth: true,
		},
		{
			name:     "no subject",
			tokens:   fakeTokens{token: signToken(t, "", now.Add(time.Hour), "")},
			wantAuth: true,
		},
		{
			name:     "garbage",
			tokens:   fakeTokens{token: "not-a-jwt"},
			wantAuth: true,
		},
		{
			name:     "missing",
			tokens:   fakeTokens{err: fmt.Errorf("getting credential: %w", credential.ErrNotFound)},
			wantAuth: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := NewSession(tt.tokens)
			s.now = func() time.Time { return now }

			got, err := s.UserID(context.Background())
			if tt.wantAuth {
				if !errors.Is(err, remote.ErrNotAuthenticated) {
					t.Fatalf("err=%v, want ErrNotAuthenticated", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("UserID: %v", err)
			}
			if got != tt.want {
				t.Fatalf("UserID=%q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeyringFailureIsNotAnAuthError(t *testing.T) {
	t.Parallel()

	s := NewSession(fakeTokens{err: errors.New("keyring locked")})
	_, err := s.UserID(context.Background())
	if err == nil || errors.Is(err, remote.ErrNotAuthenticated) {
		t.Fatalf("err=%v, want plain keyring error", err)
	}
}

func TestInspectReadsEmail(t *testing.T) {
	t.Parallel()

	exp := now.Add(time.Hour)
	claims, err := Inspect(signToken(t, "user-1", exp, "me@example.com"), now)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if claims.Email != "me@example.com" || claims.Subject != "user-1" || !claims.Expiry.Equal(exp) {
		t.Fatalf("claims=%+v", claims)
	}
}
