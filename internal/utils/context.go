package utils

import (
	"context"
)

// CustomContext is the per-request caller state carried through ctx.
type CustomContext struct {
	AppSource string
	RequestId string
	UserId    string
	Username  string
	UserEmail string
}

type customContextKey struct{}

func WithCustomContext(ctx context.Context, customContext *CustomContext) context.Context {
	return context.WithValue(ctx, customContextKey{}, customContext)
}

// GetContext never returns nil; a ctx without caller state yields an empty CustomContext.
func GetContext(ctx context.Context) *CustomContext {
	customContext, ok := ctx.Value(customContextKey{}).(*CustomContext)
	if !ok {
		return new(CustomContext)
	}
	return customContext
}

func GetRequestIdFromContext(ctx context.Context) string {
	return GetContext(ctx).RequestId
}

func GetUserIdFromContext(ctx context.Context) string {
	return GetContext(ctx).UserId
}

func GetUsernameFromContext(ctx context.Context) string {
	return GetContext(ctx).Username
}

// SetUserInContext is called by the auth middleware once the access token is verified.
// It copies the caller state so earlier holders of ctx are unaffected.
func SetUserInContext(ctx context.Context, userId, username, email string) context.Context {
	customContext := *GetContext(ctx)
	customContext.UserId = userId
	customContext.Username = username
	customContext.UserEmail = email
	return WithCustomContext(ctx, &customContext)
}
