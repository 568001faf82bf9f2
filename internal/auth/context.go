package auth

import (
	"context"

	"github.com/serroba/golinks/internal/linkdir"
)

type userKey struct{}

// ContextWithUser attaches the verified user to the context.
func ContextWithUser(ctx context.Context, user *linkdir.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext extracts the verified user, or nil for an anonymous
// request.
func UserFromContext(ctx context.Context) *linkdir.User {
	if user, ok := ctx.Value(userKey{}).(*linkdir.User); ok {
		return user
	}

	return nil
}
