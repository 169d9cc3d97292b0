// Package usercontext carries the authenticated owner through a request context.
package usercontext

import "context"

type userIDKey struct{}

// WithUserID sets the acting owner ID onto the context.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// UserIDFromContext fetches the acting owner ID from the context if present.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(userIDKey{}).(int64)
	return id, ok
}
