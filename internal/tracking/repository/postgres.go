package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tracking-analytics/backend/internal/db/sqlc/gen"
	"tracking-analytics/backend/internal/tracking/domain"
)

type PostgresRepository struct {
	db      *sql.DB
	queries *gen.Queries
}

// NewPostgresRepository returns a tracking repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, queries: gen.New(db)}
}

// Ping checks database connectivity; used by the health service.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// GetTracking returns the tracking for id, or nil if not found.
func (r *PostgresRepository) GetTracking(ctx context.Context, id string) (*domain.Tracking, error) {
	t, err := r.queries.GetTracking(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genTrackingToDomain(&t), nil
}

// CreateTracking persists the tracking. The tracking must have ID set.
func (r *PostgresRepository) CreateTracking(ctx context.Context, t *domain.Tracking) error {
	_, err := r.queries.CreateTracking(ctx, gen.CreateTrackingParams{
		ID:          t.ID,
		WorkspaceID: nullString(t.WorkspaceID),
		Name:        t.Name,
		CreatedAt:   t.CreatedAt,
	})
	return err
}

// ListTrackingsByWorkspace returns the trackings owned by workspaceID.
func (r *PostgresRepository) ListTrackingsByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Tracking, error) {
	list, err := r.queries.ListTrackingsByWorkspace(ctx, nullString(workspaceID))
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Tracking, len(list))
	for i := range list {
		out[i] = genTrackingToDomain(&list[i])
	}
	return out, nil
}

// CreateTrace persists a new trace. The trace must have ID set.
func (r *PostgresRepository) CreateTrace(ctx context.Context, tr *domain.Trace) error {
	_, err := r.queries.CreateTrace(ctx, gen.CreateTraceParams{
		ID:         tr.ID,
		TrackingID: tr.TrackingID,
		SessionID:  tr.SessionID,
		UserID:     nullStringFromPtr(tr.UserID),
		IsBot:      tr.IsBot,
		Browser:    tr.Browser,
		Device:     tr.Device,
		Os:         tr.OS,
		Hits:       tr.Hits,
		CreatedAt:  tr.CreatedAt,
		LastSeenAt: tr.LastSeenAt,
	})
	return err
}

// GetTrace returns the trace for id, or nil if not found.
func (r *PostgresRepository) GetTrace(ctx context.Context, id string) (*domain.Trace, error) {
	tr, err := r.queries.GetTrace(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genTraceToDomain(&tr), nil
}

// TouchOpenTrace runs the conditional continuation update in a single statement,
// so concurrent continuations of the same trace serialize on the row lock.
func (r *PostgresRepository) TouchOpenTrace(ctx context.Context, id, trackingID, sessionID string, seenAt, openAfter time.Time) (*domain.Trace, error) {
	tr, err := r.queries.TouchOpenTrace(ctx, gen.TouchOpenTraceParams{
		SeenAt:     seenAt,
		ID:         id,
		TrackingID: trackingID,
		SessionID:  sessionID,
		OpenAfter:  openAfter,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genTraceToDomain(&tr), nil
}

// ListTraces returns the traces matching f ordered by created_at, id.
func (r *PostgresRepository) ListTraces(ctx context.Context, f domain.TraceFilter) ([]*domain.Trace, error) {
	ids, ws, from, to, bot := filterArgs(f)
	list, err := r.queries.ListTraces(ctx, gen.ListTracesParams{
		TrackingIds: ids, WorkspaceID: ws, FromTime: from, ToTime: to, IsBot: bot,
	})
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Trace, len(list))
	for i := range list {
		out[i] = genTraceToDomain(&list[i])
	}
	return out, nil
}

// CountTraces returns the number of traces matching f.
func (r *PostgresRepository) CountTraces(ctx context.Context, f domain.TraceFilter) (int64, error) {
	ids, ws, from, to, bot := filterArgs(f)
	return r.queries.CountTraces(ctx, gen.CountTracesParams{
		TrackingIds: ids, WorkspaceID: ws, FromTime: from, ToTime: to, IsBot: bot,
	})
}

// CountVisitors returns the number of distinct visitors among traces matching f.
func (r *PostgresRepository) CountVisitors(ctx context.Context, f domain.TraceFilter) (int64, error) {
	ids, ws, from, to, bot := filterArgs(f)
	return r.queries.CountDistinctVisitors(ctx, gen.CountDistinctVisitorsParams{
		TrackingIds: ids, WorkspaceID: ws, FromTime: from, ToTime: to, IsBot: bot,
	})
}

func filterArgs(f domain.TraceFilter) ([]string, sql.NullString, sql.NullTime, sql.NullTime, sql.NullBool) {
	ids := f.TrackingIDs
	if ids == nil {
		ids = []string{}
	}
	var ws sql.NullString
	if f.Scoped {
		ws = sql.NullString{String: f.WorkspaceID, Valid: true}
	}
	var bot sql.NullBool
	if f.IsBot != nil {
		bot = sql.NullBool{Bool: *f.IsBot, Valid: true}
	}
	return ids, ws, nullTime(f.From), nullTime(f.To), bot
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullStringFromPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return nullString(*s)
}

func ptrFromNullString(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	return &n.String
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func genTrackingToDomain(t *gen.Tracking) *domain.Tracking {
	if t == nil {
		return nil
	}
	return &domain.Tracking{
		ID:          t.ID,
		WorkspaceID: t.WorkspaceID.String,
		Name:        t.Name,
		CreatedAt:   t.CreatedAt,
	}
}

func genTraceToDomain(t *gen.Trace) *domain.Trace {
	if t == nil {
		return nil
	}
	return &domain.Trace{
		ID:         t.ID,
		TrackingID: t.TrackingID,
		SessionID:  t.SessionID,
		UserID:     ptrFromNullString(t.UserID),
		IsBot:      t.IsBot,
		Browser:    t.Browser,
		Device:     t.Device,
		OS:         t.Os,
		Hits:       t.Hits,
		CreatedAt:  t.CreatedAt,
		LastSeenAt: t.LastSeenAt,
	}
}
