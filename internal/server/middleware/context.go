package middleware

import "context"

type contextKey string

const (
	ContextKeyUserID  contextKey = "user_id"
	ContextKeyIsGuest contextKey = "is_guest"
)

func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyUserID).(string)
	return v, ok
}

func IsGuestFromContext(ctx context.Context) bool {
	v, ok := ctx.Value(ContextKeyIsGuest).(bool)
	return ok && v
}
