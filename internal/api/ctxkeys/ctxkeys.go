// Package ctxkeys holds the context keys shared by the API middleware and handlers.
// It is a leaf package so api/middleware and api/handlers can both import it without a cycle.
package ctxkeys

import "context"

// Key is the named type for all API context keys.
// context.Value compares both type and value, so a Key never collides with a plain string key.
type Key string

const (
	// UserID is the authenticated user. Injected by the auth middleware from the JWT claims.
	UserID Key = "user_id"
)

// WithValue adds a ctxkeys.Key value to the context.
func WithValue(ctx context.Context, key Key, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

// UserIDFrom returns the authenticated user id, or "" for anonymous requests.
func UserIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(UserID).(string)
	return id
}
