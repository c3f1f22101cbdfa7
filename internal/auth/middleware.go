package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// Roles used across the API.
const (
	RoleCustomer   = "CUSTOMER"
	RoleAdmin      = "ADMIN"
	RoleTechnician = "TECHNICIAN"
)

// Identity is the resolved caller of an authenticated request.
type Identity struct {
	ID     string
	Email  string
	Role   string
	Active bool
}

// IdentityResolver loads the identity behind a token subject. Implemented by
// the user repository; tokens for deleted or deactivated users are rejected.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID string) (Identity, error)
}

type ctxKey string

const ctxIdentity ctxKey = "identity"

// IdentityFromContext returns the authenticated caller, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxIdentity).(Identity)
	return id, ok
}

// WithIdentity is used by handler tests to inject a caller.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxIdentity, id)
}

// Authenticate validates the Bearer token, resolves the user behind it and
// stores the identity in the request context.
func Authenticate(tm *TokenManager, resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeUnauthorized(w, "No token, authorization denied")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeUnauthorized(w, "Token is not valid")
				return
			}

			claims, err := tm.Validate(parts[1])
			if err != nil || claims.Subject == "" {
				writeUnauthorized(w, "Token is not valid")
				return
			}

			identity, err := resolver.Resolve(r.Context(), claims.Subject)
			if err != nil || !identity.Active {
				writeUnauthorized(w, "Token is not valid")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// Authorize rejects callers whose role is not in the allow list. It must run
// after Authenticate.
func Authorize(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				writeUnauthorized(w, "Not authenticated")
				return
			}
			for _, role := range roles {
				if identity.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeJSON(w, http.StatusForbidden, map[string]any{
				"success": false,
				"message": "Not authorized to access this resource",
			})
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusUnauthorized, map[string]any{
		"success": false,
		"message": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
