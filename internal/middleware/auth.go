package middleware

import (
	"context"
	"net/http"
	"strings"

	"mynutrify-backend/internal/auth"
	"mynutrify-backend/internal/transport"
)

const AccessCookieName = "nutrify_access"

type sessionKey struct{}

// Session authenticates the request from the access cookie (or a Bearer
// token) and stores the parsed claims in the context. Requests without a
// valid token are rejected with 401; role checks are layered on top with
// RequireRole.
func Session(manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				transport.WriteError(w, http.StatusServiceUnavailable, "auth not configured", nil)
				return
			}

			token := bearerToken(r)
			if token == "" {
				if cookie, err := r.Cookie(AccessCookieName); err == nil {
					token = cookie.Value
				}
			}
			if token == "" {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}

			claims, err := manager.Parse(token)
			if err != nil {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := SessionFromContext(r.Context())
			if claims == nil {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			if !allowed[claims.Role] {
				transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func SessionFromContext(ctx context.Context) *auth.Claims {
	if v := ctx.Value(sessionKey{}); v != nil {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
