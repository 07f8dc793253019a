package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	trackingv1 "tracking-analytics/backend/api/tracking/v1"
	"tracking-analytics/backend/internal/analytics"
	"tracking-analytics/backend/internal/ingest"
	"tracking-analytics/backend/internal/platform/rbac"
	"tracking-analytics/backend/internal/seed"
	"tracking-analytics/backend/internal/server/interceptors"
	"tracking-analytics/backend/internal/tracking/domain"
)

// HitRecorder is implemented by *ingest.Service.
type HitRecorder interface {
	Record(ctx context.Context, hit ingest.Hit) (*ingest.Result, error)
}

// StatsService is implemented by *analytics.Service.
type StatsService interface {
	Stats(ctx context.Context, q analytics.Query) (*analytics.Stats, error)
	TrackingStats(ctx context.Context, trackingID string, q analytics.Query) (*domain.Tracking, *analytics.Stats, error)
	Breakdown(ctx context.Context, q analytics.Query, dim analytics.Dimension) (*analytics.BreakdownResult, error)
}

// Seeder is implemented by *seed.Seeder.
type Seeder interface {
	Seed(ctx context.Context, p seed.Params, onEach func(*domain.Trace)) (int, error)
}

// Server implements TrackingService: hit ingestion, stats queries and (outside production) seeding.
type Server struct {
	trackingv1.UnimplementedTrackingServiceServer
	hits   HitRecorder
	stats  StatsService
	seeder Seeder
	loc    *time.Location
}

// NewServer returns a TrackingService server. A nil dependency makes its RPCs return Unimplemented;
// pass a nil seeder in production. loc is the zone request dates are read in when no timezone is given.
func NewServer(hits HitRecorder, stats StatsService, seeder Seeder, loc *time.Location) *Server {
	if loc == nil {
		loc = time.UTC
	}
	return &Server{hits: hits, stats: stats, seeder: seeder, loc: loc}
}

// RecordHit records one hit and returns the ids the client must send with its next hit.
func (s *Server) RecordHit(ctx context.Context, req *trackingv1.RecordHitRequest) (*trackingv1.RecordHitResponse, error) {
	if s.hits == nil {
		return nil, status.Error(codes.Unimplemented, "method RecordHit not implemented")
	}
	ua := req.UserAgent
	if ua == "" {
		ua = interceptors.UserAgent(ctx)
	}
	res, err := s.hits.Record(ctx, ingest.Hit{
		TrackingID:  strings.TrimSpace(req.TrackingID),
		SessionID:   req.SessionID,
		TraceID:     req.TraceID,
		UserID:      req.UserID,
		IsAnonymous: req.IsAnonymous,
		UserAgent:   ua,
	})
	if err != nil {
		return nil, toStatus(err, "tracking not found")
	}
	return &trackingv1.RecordHitResponse{TraceID: res.TraceID, SessionID: res.SessionID, Continued: res.Continued}, nil
}

// GetStats returns range counts over the trackings visible to the caller.
func (s *Server) GetStats(ctx context.Context, req *trackingv1.GetStatsRequest) (*trackingv1.GetStatsResponse, error) {
	if s.stats == nil {
		return nil, status.Error(codes.Unimplemented, "method GetStats not implemented")
	}
	q, err := s.query(ctx, req.StatsFilter)
	if err != nil {
		return nil, err
	}
	st, err := s.stats.Stats(ctx, q)
	if err != nil {
		return nil, toStatus(err, "")
	}
	return &trackingv1.GetStatsResponse{Stats: statsToProto(st)}, nil
}

// GetTrackingStats returns one tracking with its stats. Trackings outside the caller's scope are reported as not found.
func (s *Server) GetTrackingStats(ctx context.Context, req *trackingv1.GetTrackingStatsRequest) (*trackingv1.GetTrackingStatsResponse, error) {
	if s.stats == nil {
		return nil, status.Error(codes.Unimplemented, "method GetTrackingStats not implemented")
	}
	if req.TrackingID == "" {
		return nil, status.Error(codes.InvalidArgument, "tracking_id is required")
	}
	q, err := s.query(ctx, req.StatsFilter)
	if err != nil {
		return nil, err
	}
	tracking, st, err := s.stats.TrackingStats(ctx, req.TrackingID, q)
	if err != nil {
		return nil, toStatus(err, "tracking not found")
	}
	return &trackingv1.GetTrackingStatsResponse{Tracking: trackingToProto(tracking), Stats: statsToProto(st)}, nil
}

// GetBreakdown returns trace counts grouped by one dimension.
func (s *Server) GetBreakdown(ctx context.Context, req *trackingv1.GetBreakdownRequest) (*trackingv1.GetBreakdownResponse, error) {
	if s.stats == nil {
		return nil, status.Error(codes.Unimplemented, "method GetBreakdown not implemented")
	}
	dim, err := analytics.ParseDimension(req.Dimension)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	q, err := s.query(ctx, req.StatsFilter)
	if err != nil {
		return nil, err
	}
	res, err := s.stats.Breakdown(ctx, q, dim)
	if err != nil {
		return nil, toStatus(err, "")
	}
	buckets := make([]*trackingv1.Bucket, 0, len(res.Buckets))
	for _, b := range res.Buckets {
		buckets = append(buckets, &trackingv1.Bucket{Key: b.Key, Count: b.Count})
	}
	return &trackingv1.GetBreakdownResponse{Dimension: res.Dimension, Buckets: buckets, Total: res.Total}, nil
}

// Seed writes synthetic traces. Admin only; not served in production.
func (s *Server) Seed(ctx context.Context, req *trackingv1.SeedRequest) (*trackingv1.SeedResponse, error) {
	if s.seeder == nil {
		return nil, status.Error(codes.Unimplemented, "method Seed not implemented")
	}
	if _, err := rbac.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	start, _, err := parseDate(req.StartDate, s.loc)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "start_date: "+err.Error())
	}
	if start.IsZero() {
		return nil, status.Error(codes.InvalidArgument, "start_date is required")
	}
	n, err := s.seeder.Seed(ctx, seed.Params{
		TrackingID:  req.TrackingID,
		WorkspaceID: req.WorkspaceID,
		StartDate:   start,
		Days:        int(req.Days),
		CountRange:  seed.CountRange{Min: int(req.Min), Max: int(req.Max)},
		BotRatio:    req.BotRatio,
	}, nil)
	if err != nil {
		log.Printf("tracking: seed %s stopped after %d traces: %v", req.TrackingID, n, err)
		return nil, toStatus(err, "tracking not found")
	}
	return &trackingv1.SeedResponse{Created: int64(n)}, nil
}

// query turns the wire filter into an analytics.Query for the caller's scope.
func (s *Server) query(ctx context.Context, f trackingv1.StatsFilter) (analytics.Query, error) {
	scope, err := rbac.RequireScope(ctx, f.WorkspaceID, f.AdminWide)
	if err != nil {
		return analytics.Query{}, err
	}
	if f.CacheBypass && !interceptors.IsAdmin(ctx) {
		return analytics.Query{}, status.Error(codes.PermissionDenied, "cache_bypass requires an admin token")
	}
	q := analytics.Query{
		TrackingIDs: f.TrackingIDs,
		Scope:       scope,
		IsBot:       f.IsBot,
		Unique:      f.Unique,
		Bypass:      f.CacheBypass,
	}
	loc := s.loc
	if tz := strings.TrimSpace(f.Timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return analytics.Query{}, status.Errorf(codes.InvalidArgument, "unknown timezone %q", tz)
		}
		loc = l
		q.Location = l
	}
	for _, d := range []struct {
		name string
		raw  string
		dst  *time.Time
	}{
		{"from", f.From, &q.Interval.From},
		{"to", f.To, &q.Interval.To},
		{"date", f.Date, &q.Interval.Date},
	} {
		t, dateOnly, err := parseDate(d.raw, loc)
		if err != nil {
			return analytics.Query{}, status.Error(codes.InvalidArgument, d.name+": "+err.Error())
		}
		if dateOnly && d.dst == &q.Interval.To {
			// a calendar day as the upper bound includes that whole day
			t = t.AddDate(0, 0, 1)
		}
		*d.dst = t
	}
	return q, nil
}

// parseDate accepts YYYY-MM-DD (midnight in loc) or RFC3339 and reports which one it got.
// Empty input is the zero time.
func parseDate(s string, loc *time.Location) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("want YYYY-MM-DD or RFC3339, got %q", s)
	}
	return t, false, nil
}

// toStatus maps service errors to gRPC status codes. notFound is the message for domain.ErrNotFound.
func toStatus(err error, notFound string) error {
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request cancelled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, domain.ErrNotFound):
		if notFound == "" {
			notFound = "not found"
		}
		return status.Error(codes.NotFound, notFound)
	case errors.Is(err, analytics.ErrInvalidQuery), errors.Is(err, ingest.ErrInvalidHit), errors.Is(err, seed.ErrInvalidParams):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, analytics.ErrStoreUnavailable):
		log.Printf("tracking: %v", err)
		return status.Error(codes.Unavailable, "trace store unavailable, retry later")
	}
	log.Printf("tracking: internal error: %v", err)
	return status.Error(codes.Internal, "internal error")
}

func statsToProto(st *analytics.Stats) *trackingv1.Stats {
	if st == nil {
		return nil
	}
	return &trackingv1.Stats{
		Today:          st.Today,
		Last7Days:      st.Last7Days,
		LastMonth:      st.LastMonth,
		Ever:           st.Ever,
		ApproxVisitors: st.ApproxVisitors,
	}
}

func trackingToProto(t *domain.Tracking) *trackingv1.Tracking {
	if t == nil {
		return nil
	}
	return &trackingv1.Tracking{
		ID:          t.ID,
		WorkspaceID: t.WorkspaceID,
		Name:        t.Name,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
	}
}
