package middleware

import (
	"net/http"
	"strings"

	"github.com/mcoot/tourneybot/internal/api/apierr"
	"github.com/mcoot/tourneybot/internal/services/auth"
)

// AdminAuth rejects requests that do not carry the admin bearer token
func AdminAuth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authService.Enabled() {
				apierr.WriteError(w, auth.ErrAdminDisabled)
				return
			}

			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			if err := authService.ValidateToken(token); err != nil {
				apierr.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken extracts the bearer token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
