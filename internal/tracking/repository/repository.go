package repository

import (
	"context"
	"time"

	"tracking-analytics/backend/internal/tracking/domain"
)

// Repository defines persistence for trackings and their traces.
// Lookups return (nil, nil) when the row does not exist; errors are reserved for store failures.
type Repository interface {
	GetTracking(ctx context.Context, id string) (*domain.Tracking, error)
	CreateTracking(ctx context.Context, t *domain.Tracking) error
	ListTrackingsByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Tracking, error)

	CreateTrace(ctx context.Context, tr *domain.Trace) error
	GetTrace(ctx context.Context, id string) (*domain.Trace, error)
	// TouchOpenTrace folds one more hit into the trace if it belongs to trackingID/sessionID and
	// was last seen at or after openAfter. Returns (nil, nil) when the trace is not open.
	TouchOpenTrace(ctx context.Context, id, trackingID, sessionID string, seenAt, openAfter time.Time) (*domain.Trace, error)

	// ListTraces returns matching traces ordered by CreatedAt then ID.
	ListTraces(ctx context.Context, f domain.TraceFilter) ([]*domain.Trace, error)
	CountTraces(ctx context.Context, f domain.TraceFilter) (int64, error)
	// CountVisitors counts distinct visitors (user id, else session id) among matching traces.
	CountVisitors(ctx context.Context, f domain.TraceFilter) (int64, error)
}
