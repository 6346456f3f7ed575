// Package auth verifies the dashboard's bearer tokens and puts the caller's
// identity on the request context. Every API route below /api/v1 requires it.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey struct{}

// Identity is the authenticated caller: the organization the token is
// scoped to and the user acting on its behalf.
type Identity struct {
	OrgID  uuid.UUID
	UserID uuid.UUID
}

type claims struct {
	jwt.RegisteredClaims

	OrgID string `json:"org_id"`
}

// Middleware validates the Authorization bearer token with the shared HMAC
// secret and rejects anything without a usable org and subject claim.
func Middleware(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			identity, err := parseToken(token, key)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
		})
	}
}

func parseToken(token string, key []byte) (Identity, error) {
	var c claims

	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}

		return key, nil
	})
	if err != nil {
		return Identity{}, err
	}

	if !parsed.Valid {
		return Identity{}, fmt.Errorf("invalid token")
	}

	orgID, err := uuid.Parse(c.OrgID)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid org_id claim: %w", err)
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid sub claim: %w", err)
	}

	return Identity{OrgID: orgID, UserID: userID}, nil
}

func withIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity put there by the middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
