package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// SystemUserID identifies service principals authenticated by API key
var SystemUserID = uuid.MustParse("00000000-0000-0000-0000-000000000000")

// UserContext holds authenticated user information
type UserContext struct {
	UserID      uuid.UUID
	DisplayName string
	Email       string
	Roles       []string
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
	return user, ok && user != nil
}

// SystemContext returns a context carrying a service principal with the
// given roles. Scheduled jobs use it to run reports.
func SystemContext(ctx context.Context, roles ...string) context.Context {
	return WithUserContext(ctx, &UserContext{
		UserID:      SystemUserID,
		DisplayName: "System",
		Email:       "system@reports.local",
		Roles:       roles,
	})
}

// HasRole checks if user has a specific role, ignoring case
func (u *UserContext) HasRole(role string) bool {
	for _, r := range u.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user holds one of the admin roles
func (u *UserContext) IsAdmin(adminRoles []string) bool {
	return u.HasAnyRole(adminRoles...)
}

// IsAdmin reports whether the context carries an admin user
func IsAdmin(ctx context.Context, adminRoles []string) bool {
	user, ok := FromContext(ctx)
	return ok && user.IsAdmin(adminRoles)
}
