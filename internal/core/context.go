package core

import (
	"context"

	"github.com/jules-12/card-creator-pro/internal/auth"
)

type contextKey string

const ctxKeyUser contextKey = "user"

// ContextWithUser attaches the authenticated user to ctx.
func ContextWithUser(ctx context.Context, u auth.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, u)
}

// UserFromContext returns the user attached by ContextWithUser.
func UserFromContext(ctx context.Context) (auth.User, bool) {
	u, ok := ctx.Value(ctxKeyUser).(auth.User)
	return u, ok && u.ID != ""
}

func requireUser(ctx context.Context) (auth.User, error) {
	u, ok := UserFromContext(ctx)
	if !ok {
		return auth.User{}, auth.ErrUnauthenticated
	}
	return u, nil
}
