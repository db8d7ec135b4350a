// Package middleware holds the Connect interceptors shared by every service.
package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitpay/internal/auth"
)

type identityKey struct{}

// Identity is the authenticated caller of an RPC.
type Identity struct {
	UserID string
	Email  string
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller set by RequireAuth or OptionalAuth.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// GetUserID returns the caller's user ID, or "" for anonymous calls.
func GetUserID(ctx context.Context) string {
	id, _ := IdentityFrom(ctx)
	return id.UserID
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func authenticate(jwtManager *auth.JWTManager, header string) (Identity, error) {
	if header == "" {
		return Identity{}, auth.ErrMissingToken
	}
	token, ok := bearerToken(header)
	if !ok {
		return Identity{}, auth.ErrInvalidToken
	}
	claims, err := jwtManager.Validate(token)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: claims.UserID, Email: claims.Email}, nil
}

// RequireAuth rejects calls without a valid bearer token and puts the
// caller's Identity in the context.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			id, err := authenticate(jwtManager, req.Header().Get("Authorization"))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			return next(WithIdentity(ctx, id), req)
		}
	}
}

// OptionalAuth sets the Identity when a valid token is present and lets
// anonymous calls through otherwise. Invalid tokens are treated as absent.
func OptionalAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if id, err := authenticate(jwtManager, req.Header().Get("Authorization")); err == nil {
				ctx = WithIdentity(ctx, id)
			}
			return next(ctx, req)
		}
	}
}
