package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"medrx_backend/internal/httputil"
	"medrx_backend/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// PrincipalKey is the context key for the authenticated principal
	PrincipalKey contextKey = "principal"
)

// TokenVerifier turns a session token into the principal it was issued for.
type TokenVerifier interface {
	Parse(token string) (model.Principal, error)
}

// AuthMiddleware validates the session token.
// Checks the Authorization header first (mobile), then falls back to the access_token cookie (web).
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := tokenFromRequest(r)
			if tokenString == "" {
				httputil.WriteUnauthorized(w, "Missing authentication token")
				return
			}

			principal, err := verifier.Parse(tokenString)
			if err != nil {
				if errors.Is(err, model.ErrTokenExpired) {
					httputil.WriteUnauthorizedWithCode(w, model.CodeTokenExpired, "Access token has expired")
					return
				}
				httputil.WriteUnauthorizedWithCode(w, model.CodeTokenInvalid, "Invalid authentication token")
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated principals whose role is not one of roles.
// It must run after AuthMiddleware.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipalFromContext(r.Context())
			if !ok {
				httputil.WriteUnauthorized(w, "Authentication required")
				return
			}
			for _, role := range roles {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httputil.WriteForbidden(w, "This action is not allowed for your account type")
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// GetPrincipalFromContext extracts the authenticated principal from the request context
func GetPrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	principal, ok := ctx.Value(PrincipalKey).(model.Principal)
	return principal, ok
}

// WithPrincipal returns a context carrying principal, for handler tests.
func WithPrincipal(ctx context.Context, principal model.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, principal)
}
