// Package analytics computes traffic statistics over traces: deduplication, dimensional
// aggregation and the range stats served by the tracking API.
package analytics

import (
	"errors"

	"tracking-analytics/backend/internal/tracking/domain"
)

// ErrMissingScope is returned for a Scope that names neither a workspace nor the admin-wide view.
var ErrMissingScope = errors.New("missing tenant scope")

// Scope is the tenant partition a query runs in.
type Scope struct {
	WorkspaceID string
	AdminWide   bool
}

// ScopeForWorkspace restricts queries to trackings owned by workspaceID.
func ScopeForWorkspace(workspaceID string) Scope {
	return Scope{WorkspaceID: workspaceID}
}

// AdminScope applies no tenant restriction.
func AdminScope() Scope {
	return Scope{AdminWide: true}
}

// Validate rejects the zero Scope and ambiguous scopes.
func (s Scope) Validate() error {
	if s.AdminWide && s.WorkspaceID != "" {
		return errors.New("scope cannot be both admin-wide and workspace scoped")
	}
	if !s.AdminWide && s.WorkspaceID == "" {
		return ErrMissingScope
	}
	return nil
}

// Apply sets the tenant restriction on f.
func (s Scope) Apply(f *domain.TraceFilter) {
	if s.AdminWide {
		f.Scoped = false
		f.WorkspaceID = ""
		return
	}
	f.Scoped = true
	f.WorkspaceID = s.WorkspaceID
}

// Allows reports whether a tracking is visible in this scope.
func (s Scope) Allows(t *domain.Tracking) bool {
	if t == nil {
		return false
	}
	return s.AdminWide || t.WorkspaceID == s.WorkspaceID
}

func (s Scope) String() string {
	if s.AdminWide {
		return "admin"
	}
	return "ws:" + s.WorkspaceID
}
