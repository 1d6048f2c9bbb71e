// File: internal/middleware/context.go
package middleware

import "context"

type contextKey string

const (
	userIDKey    contextKey = "userID"
	requestIDKey contextKey = "requestID"
)

// UserIDFrom extracts the authenticated user's ID set by the JWT
// middleware.
func UserIDFrom(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userIDKey).(uint)
	return id, ok
}

// RequestIDFrom extracts the request ID set by the request-ID
// middleware; empty when the middleware is not installed.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
