package gate

import (
	"context"

	"github.com/dmitrymomot/authgate/pkg/auth"
)

type userContextKey struct{}

type principal struct {
	user  *auth.User
	token string
}

// ContextWithUser stores a resolved user and its session token.
func ContextWithUser(ctx context.Context, user *auth.User, token string) context.Context {
	return context.WithValue(ctx, userContextKey{}, principal{user: user, token: token})
}

// UserFromContext returns the user stored by RequireUser or LoadUser, or nil.
func UserFromContext(ctx context.Context) *auth.User {
	p, _ := ctx.Value(userContextKey{}).(principal)
	return p.user
}

// SessionTokenFromContext returns the token of the resolved session, or "".
func SessionTokenFromContext(ctx context.Context) string {
	p, _ := ctx.Value(userContextKey{}).(principal)
	return p.token
}
