package auth

import "context"

type contextKey int

const (
	userIDKey contextKey = iota
	sessionIDKey
)

// WithSession stores the authenticated user and session on ctx.
func WithSession(ctx context.Context, userID, sessionID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// GetUserID returns the signed-in user, or "" outside an authenticated request.
func GetUserID(ctx context.Context) string {
	if val, ok := ctx.Value(userIDKey).(string); ok {
		return val
	}
	return ""
}

func GetSessionID(ctx context.Context) string {
	if val, ok := ctx.Value(sessionIDKey).(string); ok {
		return val
	}
	return ""
}
