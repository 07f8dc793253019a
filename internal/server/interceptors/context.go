package interceptors

import (
	"context"

	"tracking-analytics/backend/internal/security"
)

type contextKey struct{ name string }

var identityKey = contextKey{"identity"}

// WithIdentity returns a context carrying the authenticated caller.
func WithIdentity(ctx context.Context, id security.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity returns the caller set by AuthUnary and true, or the zero Identity and false.
func GetIdentity(ctx context.Context) (security.Identity, bool) {
	v, ok := ctx.Value(identityKey).(security.Identity)
	return v, ok
}

// GetUserID returns the user_id from context and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	id, ok := GetIdentity(ctx)
	if !ok || id.UserID == "" {
		return "", false
	}
	return id.UserID, true
}

// GetWorkspaceID returns the workspace_id from context and true if set; otherwise "", false.
func GetWorkspaceID(ctx context.Context) (string, bool) {
	id, ok := GetIdentity(ctx)
	if !ok || id.WorkspaceID == "" {
		return "", false
	}
	return id.WorkspaceID, true
}

// IsAdmin reports whether the caller holds an admin token.
func IsAdmin(ctx context.Context) bool {
	id, ok := GetIdentity(ctx)
	return ok && id.Admin
}
