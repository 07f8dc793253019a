// Package ingest records visitor hits as traces. A hit either continues the visitor's open trace or
// starts a new one; the caller keeps the returned trace and session ids for the next hit.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"tracking-analytics/backend/internal/ingest/botpolicy"
	"tracking-analytics/backend/internal/metrics"
	"tracking-analytics/backend/internal/telemetry"
	telemetrydomain "tracking-analytics/backend/internal/telemetry/domain"
	"tracking-analytics/backend/internal/tracking/domain"
)

// DefaultContinuationWindow is how long a trace stays open after its last hit.
const DefaultContinuationWindow = 30 * time.Minute

// ErrInvalidHit is returned for hits missing a tracking id.
var ErrInvalidHit = errors.New("invalid hit")

// Store is the write side of the tracking repository used by ingestion.
type Store interface {
	GetTracking(ctx context.Context, id string) (*domain.Tracking, error)
	CreateTrace(ctx context.Context, tr *domain.Trace) error
	TouchOpenTrace(ctx context.Context, id, trackingID, sessionID string, seenAt, openAfter time.Time) (*domain.Trace, error)
}

// BotClassifier decides whether a hit is bot traffic. *botpolicy.Evaluator implements it.
type BotClassifier interface {
	IsBot(ctx context.Context, in botpolicy.Input) (bool, error)
}

// Hit is one incoming page interaction.
type Hit struct {
	TrackingID string
	// SessionID is empty on a visitor's first hit; one is minted.
	SessionID string
	// TraceID is the trace returned by the previous hit, if any.
	TraceID     string
	UserID      string
	IsAnonymous bool
	UserAgent   string
}

// Result identifies the trace the hit was folded into.
type Result struct {
	TraceID   string
	SessionID string
	Continued bool
}

// Service implements the record-hit protocol.
type Service struct {
	store   Store
	bots    BotClassifier
	emitter telemetry.EventEmitter
	window  time.Duration
	nowF    func() time.Time
	newID   func() string
}

// NewService returns an ingestion service. bots and emitter may be nil. A non-positive window uses
// DefaultContinuationWindow.
func NewService(store Store, bots BotClassifier, emitter telemetry.EventEmitter, window time.Duration) *Service {
	if window <= 0 {
		window = DefaultContinuationWindow
	}
	return &Service{
		store:   store,
		bots:    bots,
		emitter: emitter,
		window:  window,
		nowF:    func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// Record folds hit into the open trace for its session, or creates a new trace.
// Returns domain.ErrNotFound when the tracking does not exist.
func (s *Service) Record(ctx context.Context, hit Hit) (*Result, error) {
	if hit.TrackingID == "" {
		return nil, fmt.Errorf("%w: tracking id is required", ErrInvalidHit)
	}
	tracking, err := s.store.GetTracking(ctx, hit.TrackingID)
	if err != nil {
		return nil, err
	}
	if tracking == nil {
		return nil, domain.ErrNotFound
	}

	now := s.nowF()
	sessionID := hit.SessionID
	if sessionID == "" {
		sessionID = s.newID()
	} else if hit.TraceID != "" {
		tr, err := s.store.TouchOpenTrace(ctx, hit.TraceID, hit.TrackingID, sessionID, now, now.Add(-s.window))
		if err != nil {
			return nil, err
		}
		if tr != nil {
			metrics.TracesRecordedTotal.WithLabelValues("continued").Inc()
			s.emit(ctx, tracking, tr, telemetrydomain.EventTraceContinued)
			return &Result{TraceID: tr.ID, SessionID: sessionID, Continued: true}, nil
		}
	}

	info := ParseUserAgent(hit.UserAgent)
	tr := &domain.Trace{
		ID:         s.newID(),
		TrackingID: hit.TrackingID,
		SessionID:  sessionID,
		IsBot:      s.isBot(ctx, hit.UserAgent, info),
		Browser:    info.Browser,
		Device:     info.Device,
		OS:         info.OS,
		Hits:       1,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if !hit.IsAnonymous && hit.UserID != "" {
		uid := hit.UserID
		tr.UserID = &uid
	}
	if err := s.store.CreateTrace(ctx, tr); err != nil {
		return nil, err
	}
	metrics.TracesRecordedTotal.WithLabelValues("created").Inc()
	if tr.IsBot {
		metrics.BotHitsTotal.Inc()
	}
	s.emit(ctx, tracking, tr, telemetrydomain.EventTraceRecorded)
	return &Result{TraceID: tr.ID, SessionID: sessionID}, nil
}

// isBot asks the policy and falls back to the parser's verdict when the policy fails.
func (s *Service) isBot(ctx context.Context, ua string, info ClientInfo) bool {
	if s.bots == nil {
		return info.Bot
	}
	bot, err := s.bots.IsBot(ctx, botpolicy.Input{
		UserAgent: ua,
		ParserBot: info.Bot,
		Browser:   info.Browser,
		Device:    info.Device,
		OS:        info.OS,
	})
	if err != nil {
		log.Printf("ingest: bot policy failed, using parser result: %v", err)
		return info.Bot
	}
	return bot
}

type traceMetadata struct {
	Browser string `json:"browser"`
	Device  string `json:"device"`
	OS      string `json:"os"`
	IsBot   bool   `json:"is_bot"`
	Hits    int32  `json:"hits"`
}

func (s *Service) emit(ctx context.Context, tracking *domain.Tracking, tr *domain.Trace, eventType string) {
	if s.emitter == nil {
		return
	}
	meta, _ := json.Marshal(traceMetadata{
		Browser: tr.Browser, Device: tr.Device, OS: tr.OS, IsBot: tr.IsBot, Hits: tr.Hits,
	})
	ev := &telemetrydomain.Event{
		WorkspaceID: tracking.WorkspaceID,
		TrackingID:  tr.TrackingID,
		TraceID:     tr.ID,
		SessionID:   tr.SessionID,
		EventType:   eventType,
		Source:      "ingest",
		Metadata:    meta,
		CreatedAt:   tr.LastSeenAt,
	}
	if tr.UserID != nil {
		ev.UserID = *tr.UserID
	}
	telemetry.EmitAsync(s.emitter, ctx, ev)
}
