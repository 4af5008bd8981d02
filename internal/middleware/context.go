// Package middleware provides HTTP middleware for the web tools server.
package middleware

import (
	"context"

	"github.com/brad-luo/web-tools/internal/auth"
)

type contextKey string

// IdentityKey is the context key for the signed-in identity.
const IdentityKey contextKey = "identity"

// WithIdentity returns ctx carrying id.
func WithIdentity(ctx context.Context, id *auth.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// GetIdentity retrieves the signed-in identity from context, or nil.
func GetIdentity(ctx context.Context) *auth.Identity {
	if v, ok := ctx.Value(IdentityKey).(*auth.Identity); ok {
		return v
	}
	return nil
}
