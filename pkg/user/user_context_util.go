package user

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const UserKey contextKey = "user"

var ErrNoUser = errors.New("no user in context")

// CurrentUsername retrieves the session user's name from the context. Returns ErrNoUser if absent.
func CurrentUsername(ctx context.Context) (string, error) {
	u, ok := ctx.Value(UserKey).(User)
	if !ok || u.Username == "" {
		log.Trace("user not found in context")
		return "", ErrNoUser
	}
	return u.Username, nil
}

func CurrentUser(ctx context.Context) (User, error) {
	u, ok := ctx.Value(UserKey).(User)
	if !ok || u.Username == "" {
		log.Trace("user not found in context")
		return User{}, ErrNoUser
	}
	return u, nil
}

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, UserKey, u)
}
