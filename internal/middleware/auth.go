// File: internal/middleware/auth.go
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/solent-ai/genchat/internal/services"
)

// TokenValidator resolves a bearer token to a user ID.
type TokenValidator interface {
	ValidateToken(tokenString string) (uint, error)
}

// NewJWTMiddleware validates the caller's JWT, from the Authorization
// header or the auth_token cookie, and stores the user ID in the
// request context.
func NewJWTMiddleware(validator TokenValidator, logger services.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w)
				return
			}

			userID, err := validator.ValidateToken(token)
			if err != nil {
				logger.Warn("rejected token", "error", err.Error(), "request_id", RequestIDFrom(r.Context()))
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, found := strings.CutPrefix(header, "Bearer "); found {
			return token
		}
		return ""
	}
	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
}
