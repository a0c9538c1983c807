package auth

import (
	"context"
)

// UserContext holds authenticated user information extracted from the
// Supabase session token
type UserContext struct {
	UserID      string
	Email       string
	DisplayName string
	Role        string
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// Nome returns the best display name available for audit fields
func (u *UserContext) Nome() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}
