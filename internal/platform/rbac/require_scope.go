package rbac

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tracking-analytics/backend/internal/analytics"
	"tracking-analytics/backend/internal/security"
	"tracking-analytics/backend/internal/server/interceptors"
)

// RequireScope resolves the tenant scope for a stats request from the caller's identity.
// workspaceID and adminWide are what the request asked for.
//
// Workspace tokens are confined to their own workspace; an empty workspaceID means that workspace.
// Admin tokens may name any workspace or ask for the admin-wide view, but must ask for one of them.
// Returns Unauthenticated without an identity, PermissionDenied for a scope the caller may not use,
// and InvalidArgument for an admin request that names no scope.
func RequireScope(ctx context.Context, workspaceID string, adminWide bool) (analytics.Scope, error) {
	id, ok := interceptors.GetIdentity(ctx)
	if !ok {
		return analytics.Scope{}, status.Error(codes.Unauthenticated, "authentication required")
	}
	if adminWide && workspaceID != "" {
		return analytics.Scope{}, status.Error(codes.InvalidArgument, "admin_wide and workspace_id are mutually exclusive")
	}
	if id.Admin {
		return adminScope(id, workspaceID, adminWide)
	}
	if adminWide {
		return analytics.Scope{}, status.Error(codes.PermissionDenied, "admin-wide statistics require an admin token")
	}
	if id.WorkspaceID == "" {
		return analytics.Scope{}, status.Error(codes.PermissionDenied, "token is not bound to a workspace")
	}
	if workspaceID != "" && workspaceID != id.WorkspaceID {
		return analytics.Scope{}, status.Error(codes.PermissionDenied, "workspace not accessible")
	}
	return analytics.ScopeForWorkspace(id.WorkspaceID), nil
}

func adminScope(id security.Identity, workspaceID string, adminWide bool) (analytics.Scope, error) {
	switch {
	case adminWide:
		return analytics.AdminScope(), nil
	case workspaceID != "":
		return analytics.ScopeForWorkspace(workspaceID), nil
	case id.WorkspaceID != "":
		return analytics.ScopeForWorkspace(id.WorkspaceID), nil
	}
	return analytics.Scope{}, status.Error(codes.InvalidArgument, "workspace_id or admin_wide is required")
}

// RequireAdmin ensures the caller holds an admin token.
func RequireAdmin(ctx context.Context) (security.Identity, error) {
	id, ok := interceptors.GetIdentity(ctx)
	if !ok {
		return security.Identity{}, status.Error(codes.Unauthenticated, "authentication required")
	}
	if !id.Admin {
		return security.Identity{}, status.Error(codes.PermissionDenied, "admin token required")
	}
	return id, nil
}
