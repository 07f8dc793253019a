package domain

import "time"

// TraceFilter narrows a trace query. Zero values mean "no restriction" for each field.
type TraceFilter struct {
	// TrackingIDs restricts to these trackings; empty means every tracking in scope.
	TrackingIDs []string
	// WorkspaceID restricts to trackings owned by this workspace when Scoped is true.
	WorkspaceID string
	// Scoped enables the WorkspaceID restriction. Admin-wide queries leave it false.
	Scoped bool
	// From is the inclusive lower bound on CreatedAt; zero means unbounded.
	From time.Time
	// To is the exclusive upper bound on CreatedAt; zero means unbounded.
	To time.Time
	// IsBot filters by bot flag when non-nil.
	IsBot *bool
}
