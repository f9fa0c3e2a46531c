package claims

import (
	"context"
	"errors"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Claims identifies the signed-in user for the duration of one request.
// They are attached to the context by the auth middleware; code that can
// work without a user (guest checkout) treats a Get failure as "no user".
type Claims struct {
	UserID string
	Role   string
}

type ctxKey int

const key ctxKey = 1

var ErrNotFound = errors.New("claims not found in context")

func Set(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, key, c)
}

func Get(ctx context.Context) (Claims, error) {
	c, ok := ctx.Value(key).(Claims)
	if !ok {
		return Claims{}, ErrNotFound
	}
	return c, nil
}

func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
