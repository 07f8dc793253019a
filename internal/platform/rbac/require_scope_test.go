package rbac

import (
	"context"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tracking-analytics/backend/internal/analytics"
	"tracking-analytics/backend/internal/security"
	"tracking-analytics/backend/internal/server/interceptors"
)

func TestRequireScope(t *testing.T) {
	member := security.Identity{UserID: "u1", WorkspaceID: "ws-1"}
	admin := security.Identity{UserID: "ops", Admin: true}
	adminInWS := security.Identity{UserID: "ops", WorkspaceID: "ws-9", Admin: true}

	tests := []struct {
		name      string
		id        *security.Identity
		workspace string
		adminWide bool
		want      analytics.Scope
		wantCode  codes.Code
	}{
		{name: "no identity", wantCode: codes.Unauthenticated},
		{name: "member own workspace implicit", id: &member, want: analytics.ScopeForWorkspace("ws-1")},
		{name: "member own workspace explicit", id: &member, workspace: "ws-1", want: analytics.ScopeForWorkspace("ws-1")},
		{name: "member other workspace", id: &member, workspace: "ws-2", wantCode: codes.PermissionDenied},
		{name: "member admin wide", id: &member, adminWide: true, wantCode: codes.PermissionDenied},
		{name: "admin wide", id: &admin, adminWide: true, want: analytics.AdminScope()},
		{name: "admin any workspace", id: &admin, workspace: "ws-2", want: analytics.ScopeForWorkspace("ws-2")},
		{name: "admin no scope", id: &admin, wantCode: codes.InvalidArgument},
		{name: "admin defaults to own workspace", id: &adminInWS, want: analytics.ScopeForWorkspace("ws-9")},
		{name: "both requested", id: &admin, workspace: "ws-2", adminWide: true, wantCode: codes.InvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.id != nil {
				ctx = interceptors.WithIdentity(ctx, *tt.id)
			}
			got, err := RequireScope(ctx, tt.workspace, tt.adminWide)
			if status.Code(err) != tt.wantCode {
				t.Fatalf("code = %v, want %v (err %v)", status.Code(err), tt.wantCode, err)
			}
			if err == nil {
				if got != tt.want {
					t.Errorf("scope = %+v, want %+v", got, tt.want)
				}
				if vErr := got.Validate(); vErr != nil {
					t.Errorf("resolved scope invalid: %v", vErr)
				}
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	if _, err := RequireAdmin(context.Background()); status.Code(err) != codes.Unauthenticated {
		t.Errorf("no identity: %v", err)
	}
	ctx := interceptors.WithIdentity(context.Background(), security.Identity{WorkspaceID: "ws-1"})
	if _, err := RequireAdmin(ctx); status.Code(err) != codes.PermissionDenied {
		t.Errorf("member: %v", err)
	}
	ctx = interceptors.WithIdentity(context.Background(), security.Identity{UserID: "ops", Admin: true})
	id, err := RequireAdmin(ctx)
	if err != nil || id.UserID != "ops" {
		t.Errorf("admin: %+v %v", id, err)
	}
}
