// Package appctx provides request-scoped values: the authenticated user and
// request tracing identifiers.
package appctx

import (
	"context"

	"gestock/internal/core/id"
	"gestock/internal/core/role"
)

// UserContext carries the authenticated caller's identity.
// Every read and write in the domain layer is scoped by CompanyID.
type UserContext struct {
	UserID    id.ID
	CompanyID id.ID
	Email     string
	Role      role.Role
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context, or nil.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// Can reports whether the context user holds the capability.
func Can(ctx context.Context, action role.Action) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	return u.Role.Can(action)
}
