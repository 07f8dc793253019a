package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"tracking-analytics/backend/internal/tracking/domain"
)

// ErrDuplicateID is returned by the memory repository when a row with the same id already exists.
var ErrDuplicateID = errors.New("duplicate id")

// MemoryRepository is an in-memory Repository used in development when no database is configured and in tests.
type MemoryRepository struct {
	mu        sync.RWMutex
	trackings map[string]domain.Tracking
	traces    map[string]domain.Trace
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		trackings: make(map[string]domain.Tracking),
		traces:    make(map[string]domain.Trace),
	}
}

// Ping always succeeds.
func (r *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *MemoryRepository) GetTracking(ctx context.Context, id string) (*domain.Tracking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.trackings[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *MemoryRepository) CreateTracking(ctx context.Context, t *domain.Tracking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trackings[t.ID]; ok {
		return ErrDuplicateID
	}
	r.trackings[t.ID] = *t
	return nil
}

func (r *MemoryRepository) ListTrackingsByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Tracking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Tracking
	for _, t := range r.trackings {
		if t.WorkspaceID == workspaceID {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// CreateTrace stores a copy of tr. The tracking must exist, mirroring the foreign key.
func (r *MemoryRepository) CreateTrace(ctx context.Context, tr *domain.Trace) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trackings[tr.TrackingID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := r.traces[tr.ID]; ok {
		return ErrDuplicateID
	}
	c := *tr
	if tr.UserID != nil {
		u := *tr.UserID
		c.UserID = &u
	}
	r.traces[tr.ID] = c
	return nil
}

func (r *MemoryRepository) GetTrace(ctx context.Context, id string) (*domain.Trace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	tr, ok := r.traces[id]
	if !ok {
		return nil, nil
	}
	return &tr, nil
}

// TouchOpenTrace applies the continuation under the write lock, matching the single-statement update in Postgres.
func (r *MemoryRepository) TouchOpenTrace(ctx context.Context, id, trackingID, sessionID string, seenAt, openAfter time.Time) (*domain.Trace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tr, ok := r.traces[id]
	if !ok || tr.TrackingID != trackingID || tr.SessionID != sessionID || tr.LastSeenAt.Before(openAfter) {
		return nil, nil
	}
	if seenAt.After(tr.LastSeenAt) {
		tr.LastSeenAt = seenAt
	}
	tr.Hits++
	r.traces[id] = tr
	out := tr
	return &out, nil
}

func (r *MemoryRepository) ListTraces(ctx context.Context, f domain.TraceFilter) ([]*domain.Trace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.match(f), nil
}

func (r *MemoryRepository) CountTraces(ctx context.Context, f domain.TraceFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.match(f))), nil
}

func (r *MemoryRepository) CountVisitors(ctx context.Context, f domain.TraceFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, tr := range r.match(f) {
		seen[tr.VisitorKey()] = struct{}{}
	}
	return int64(len(seen)), nil
}

// match returns copies of traces satisfying f, ordered by CreatedAt then ID. Caller holds the lock.
func (r *MemoryRepository) match(f domain.TraceFilter) []*domain.Trace {
	var ids map[string]struct{}
	if len(f.TrackingIDs) > 0 {
		ids = make(map[string]struct{}, len(f.TrackingIDs))
		for _, id := range f.TrackingIDs {
			ids[id] = struct{}{}
		}
	}
	out := make([]*domain.Trace, 0)
	for _, tr := range r.traces {
		if ids != nil {
			if _, ok := ids[tr.TrackingID]; !ok {
				continue
			}
		}
		if f.Scoped {
			t, ok := r.trackings[tr.TrackingID]
			if !ok || t.WorkspaceID != f.WorkspaceID {
				continue
			}
		}
		if !f.From.IsZero() && tr.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !tr.CreatedAt.Before(f.To) {
			continue
		}
		if f.IsBot != nil && tr.IsBot != *f.IsBot {
			continue
		}
		tr := tr
		out = append(out, &tr)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
