package httpserver

import (
	"context"

	"github.com/and161185/coursemart/internal/model"
)

type ctxKey string

const (
	usernameKey ctxKey = "cm.username"
	roleKey     ctxKey = "cm.role"
)

// WithPrincipal stores the authenticated username and role in context.
func WithPrincipal(ctx context.Context, username string, role model.Role) context.Context {
	ctx = context.WithValue(ctx, usernameKey, username)
	return context.WithValue(ctx, roleKey, role)
}

// UsernameFromCtx fetches the authenticated username from context.
func UsernameFromCtx(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(usernameKey).(string)
	return v, ok && v != ""
}

// RoleFromCtx fetches the authenticated role from context.
func RoleFromCtx(ctx context.Context) (model.Role, bool) {
	v, ok := ctx.Value(roleKey).(model.Role)
	return v, ok
}
