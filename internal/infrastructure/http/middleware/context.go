package middleware

import (
	"context"
)

type contextKey string

const userIDContextKey contextKey = "user_id"

// WithUserID injects the authenticated user id into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext returns the authenticated user id, or "" for anonymous requests.
func UserIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(userIDContextKey).(string)
	return v
}
