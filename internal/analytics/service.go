package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/axiomhq/hyperloglog"
	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"tracking-analytics/backend/internal/analytics/cache"
	"tracking-analytics/backend/internal/metrics"
	"tracking-analytics/backend/internal/tracking/domain"
)

const (
	endpointStats         = "stats"
	endpointTrackingStats = "tracking_stats"
	endpointBreakdown     = "breakdown"
)

// TraceStore is the read side of the tracking repository used by the service.
type TraceStore interface {
	GetTracking(ctx context.Context, id string) (*domain.Tracking, error)
	ListTraces(ctx context.Context, f domain.TraceFilter) ([]*domain.Trace, error)
	CountTraces(ctx context.Context, f domain.TraceFilter) (int64, error)
	CountVisitors(ctx context.Context, f domain.TraceFilter) (int64, error)
}

// Stats are the range scalars for a query. Today, Last7Days and LastMonth are nested sub-ranges of the
// working set; Ever ignores the date interval but keeps every other filter.
type Stats struct {
	Today          int64 `json:"today"`
	Last7Days      int64 `json:"last7_days"`
	LastMonth      int64 `json:"last_month"`
	Ever           int64 `json:"ever"`
	ApproxVisitors int64 `json:"approx_visitors"`
}

// BreakdownResult is a grouped count over the working set.
type BreakdownResult struct {
	Dimension string   `json:"dimension"`
	Buckets   []Bucket `json:"buckets"`
	Total     int64    `json:"total"`
}

// Config holds service defaults applied when a query does not override them.
type Config struct {
	Location  *time.Location
	WeekStart time.Weekday
}

// Service answers stats queries from the trace store through the result cache.
type Service struct {
	store     TraceStore
	cache     *cache.ResultCache
	loc       *time.Location
	weekStart time.Weekday
	nowF      func() time.Time
	tracer    trace.Tracer
}

// NewService returns a stats service. rc may be nil to disable caching.
func NewService(store TraceStore, rc *cache.ResultCache, cfg Config) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:     store,
		cache:     rc,
		loc:       loc,
		weekStart: cfg.WeekStart,
		nowF:      time.Now,
		tracer:    otel.Tracer("tracking-analytics/analytics"),
	}
}

// Stats returns the range scalars for q.
func (s *Service) Stats(ctx context.Context, q Query) (*Stats, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return s.stats(ctx, q, endpointStats)
}

// TrackingStats returns the tracking and its range scalars. A tracking outside q.Scope is reported as
// domain.ErrNotFound so that its existence is not disclosed across tenants.
func (s *Service) TrackingStats(ctx context.Context, trackingID string, q Query) (*domain.Tracking, *Stats, error) {
	if trackingID == "" {
		return nil, nil, fmt.Errorf("%w: tracking id is required", ErrInvalidQuery)
	}
	q.TrackingIDs = []string{trackingID}
	if err := q.Validate(); err != nil {
		return nil, nil, err
	}
	t, err := s.store.GetTracking(ctx, trackingID)
	if err != nil {
		return nil, nil, storeError(ctx, err)
	}
	if !q.Scope.Allows(t) {
		return nil, nil, domain.ErrNotFound
	}
	st, err := s.stats(ctx, q, endpointTrackingStats)
	if err != nil {
		return nil, nil, err
	}
	return t, st, nil
}

// Breakdown groups the working set of q by dim, after deduplication when q.Unique is set.
func (s *Service) Breakdown(ctx context.Context, q Query, dim Dimension) (*BreakdownResult, error) {
	if !dim.Valid() {
		return nil, fmt.Errorf("%w: unknown dimension %s", ErrInvalidQuery, dim)
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	loc := s.location(q)
	w := q.resolve(s.nowF(), loc)
	key := s.key(q, w, loc, endpointBreakdown, dim.String())

	compute := func(ctx context.Context) (*BreakdownResult, error) {
		ctx, span := s.tracer.Start(ctx, "analytics.Breakdown", trace.WithAttributes(
			attribute.String("analytics.dimension", dim.String()),
			attribute.Bool("analytics.unique", q.Unique),
		))
		defer span.End()

		traces, err := s.store.ListTraces(ctx, q.filter(w, false))
		if err != nil {
			err = storeError(ctx, err)
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			metrics.StatsQueriesTotal.WithLabelValues(endpointBreakdown, "error").Inc()
			return nil, err
		}
		b := Aggregate(Dedupe(traces, q.Unique), dim, Options{Location: loc, WeekStart: s.weekStart})
		metrics.StatsQueriesTotal.WithLabelValues(endpointBreakdown, "ok").Inc()
		return &BreakdownResult{Dimension: dim.String(), Buckets: b.Sorted(), Total: b.Total()}, nil
	}
	if q.Bypass {
		metrics.CacheLookupsTotal.WithLabelValues("bypass").Inc()
		return compute(ctx)
	}
	return cache.GetOrCompute(ctx, s.cache, key, compute)
}

func (s *Service) stats(ctx context.Context, q Query, endpoint string) (*Stats, error) {
	loc := s.location(q)
	w := q.resolve(s.nowF(), loc)
	key := s.key(q, w, loc, endpoint, "")

	compute := func(ctx context.Context) (*Stats, error) {
		ctx, span := s.tracer.Start(ctx, "analytics.Stats", trace.WithAttributes(
			attribute.String("analytics.endpoint", endpoint),
			attribute.Bool("analytics.unique", q.Unique),
		))
		defer span.End()

		st, err := s.computeStats(ctx, q, w)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			metrics.StatsQueriesTotal.WithLabelValues(endpoint, "error").Inc()
			return nil, err
		}
		metrics.StatsQueriesTotal.WithLabelValues(endpoint, "ok").Inc()
		return st, nil
	}
	if q.Bypass {
		metrics.CacheLookupsTotal.WithLabelValues("bypass").Inc()
		return compute(ctx)
	}
	return cache.GetOrCompute(ctx, s.cache, key, compute)
}

// computeStats fetches the working set and the ever count concurrently.
func (s *Service) computeStats(ctx context.Context, q Query, w window) (*Stats, error) {
	var (
		traces []*domain.Trace
		ever   int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		traces, err = s.store.ListTraces(gctx, q.filter(w, false))
		return err
	})
	g.Go(func() error {
		var err error
		if q.Unique {
			ever, err = s.store.CountVisitors(gctx, q.filter(w, true))
		} else {
			ever, err = s.store.CountTraces(gctx, q.filter(w, true))
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeError(ctx, err)
	}

	todayFrom := w.ref
	weekFrom := w.ref.AddDate(0, 0, -6)
	dayEnd := w.ref.AddDate(0, 0, 1)
	st := &Stats{
		Today:          countRange(traces, todayFrom, dayEnd, q.Unique),
		Last7Days:      countRange(traces, weekFrom, dayEnd, q.Unique),
		LastMonth:      countRange(traces, time.Time{}, time.Time{}, q.Unique),
		Ever:           ever,
		ApproxVisitors: approxVisitors(traces),
	}
	return st, nil
}

// countRange counts traces with from <= CreatedAt < to (zero bounds are open), one per visitor when unique.
func countRange(traces []*domain.Trace, from, to time.Time, unique bool) int64 {
	var n int64
	var seen map[string]struct{}
	if unique {
		seen = make(map[string]struct{})
	}
	for _, tr := range traces {
		if !from.IsZero() && tr.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !tr.CreatedAt.Before(to) {
			continue
		}
		if unique {
			k := tr.VisitorKey()
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
		}
		n++
	}
	return n
}

func approxVisitors(traces []*domain.Trace) int64 {
	if len(traces) == 0 {
		return 0
	}
	sk := hyperloglog.New16()
	for _, tr := range traces {
		sk.InsertHash(xxhash.Sum64String(tr.VisitorKey()))
	}
	return int64(sk.Estimate())
}

func (s *Service) location(q Query) *time.Location {
	if q.Location != nil {
		return q.Location
	}
	return s.loc
}

func (s *Service) key(q Query, w window, loc *time.Location, endpoint, dim string) cache.Key {
	return CacheKey(KeyParams{
		Endpoint:    endpoint,
		Dimension:   dim,
		From:        w.from,
		To:          w.to,
		Reference:   w.ref,
		Timezone:    loc.String(),
		WeekStart:   s.weekStart,
		IsBot:       q.IsBot,
		Unique:      q.Unique,
		TrackingIDs: q.TrackingIDs,
		Scope:       q.Scope,
	})
}

// storeError keeps caller cancellation distinct from store failures.
func storeError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
