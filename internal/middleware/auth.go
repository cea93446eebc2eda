// Package middleware provides HTTP middleware for authentication, access
// guards, request IDs, and rate limiting.
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"pageguard/authz"
	"pageguard/internal/domain"
)

type principalKey struct{}

// WithPrincipal stores the principal in the context.
func WithPrincipal(ctx context.Context, p authz.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext extracts the principal from the context. Requests that
// never passed the Authenticator resolve to the anonymous principal.
func PrincipalFromContext(ctx context.Context) authz.Principal {
	if p, ok := ctx.Value(principalKey{}).(authz.Principal); ok {
		return p
	}
	return authz.Anonymous()
}

// UserLookup resolves a username to its stored account record.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// APIKeyLookup resolves an API key hash to the owning username.
type APIKeyLookup interface {
	LookupUsernameByHash(ctx context.Context, keyHash string) (string, error)
}

// Authenticator returns middleware that resolves credentials to an
// authz.Principal stored in the request context. A Bearer JWT is tried first,
// then an X-API-Key header (when apiKeys is non-nil). Requests without valid
// credentials proceed as the anonymous principal — access decisions belong to
// the per-route guards, and owner policies must see anonymous requests so the
// not-found check can still fire.
func Authenticator(validator JWTValidator, users UserLookup, apiKeys APIKeyLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if username, ok := resolveSubject(r, validator, apiKeys); ok {
				p := authz.Principal{Identifier: username, Authenticated: true}

				// Staff and superuser flags come from the user store, never
				// from token claims.
				if users != nil {
					if u, err := users.GetByUsername(r.Context(), username); err == nil {
						p.Staff = u.Staff
						p.Superuser = u.Superuser
					}
				}

				next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// resolveSubject extracts the authenticated username from the request
// credentials: Bearer JWT first, then API key.
func resolveSubject(r *http.Request, validator JWTValidator, apiKeys APIKeyLookup) (string, bool) {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		claims, err := validator.Validate(r.Context(), strings.TrimPrefix(auth, "Bearer "))
		if err != nil || claims.Subject == "" {
			slog.DebugContext(r.Context(), "token rejected", "error", err)
			return "", false
		}
		return claims.Subject, true
	}

	if rawKey := r.Header.Get("X-API-Key"); rawKey != "" && apiKeys != nil {
		username, err := apiKeys.LookupUsernameByHash(r.Context(), domain.HashAPIKey(rawKey))
		if err != nil {
			slog.DebugContext(r.Context(), "api key rejected", "error", err)
			return "", false
		}
		return username, true
	}

	return "", false
}

// writeJSONError writes a JSON error body with the given status code.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    status,
		"message": message,
	})
}
