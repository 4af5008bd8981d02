package middleware

import (
	"net/http"
	"strings"

	"github.com/brad-luo/web-tools/internal/auth"
	apierrors "github.com/brad-luo/web-tools/internal/pkg/errors"
	"github.com/brad-luo/web-tools/internal/pkg/response"
)

// SessionReader reads the identity stored in a session cookie.
type SessionReader interface {
	Load(r *http.Request) (*auth.Identity, bool)
}

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(token string) (*auth.Identity, error)
}

// Authenticator resolves the caller from a session cookie or a bearer token.
type Authenticator struct {
	sessions SessionReader
	tokens   TokenParser
}

// NewAuthenticator creates an authenticator. Either source may be nil.
func NewAuthenticator(sessions SessionReader, tokens TokenParser) *Authenticator {
	return &Authenticator{sessions: sessions, tokens: tokens}
}

// identify returns the caller, preferring an explicit bearer token.
func (a *Authenticator) identify(r *http.Request) *auth.Identity {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		if a.tokens == nil {
			return nil
		}
		id, err := a.tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return nil
		}
		return id
	}

	if a.sessions != nil {
		if id, ok := a.sessions.Load(r); ok {
			return id
		}
	}
	return nil
}

// RequireAuth rejects requests without a signed-in identity.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := a.identify(r)
		if id == nil {
			response.Error(w, apierrors.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// OptionalAuth attaches the identity when present but never rejects.
func (a *Authenticator) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := a.identify(r); id != nil {
			r = r.WithContext(WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
