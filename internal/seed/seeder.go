// Package seed writes synthetic historical traces for demos and local testing.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"tracking-analytics/backend/internal/ingest"
	"tracking-analytics/backend/internal/metrics"
	"tracking-analytics/backend/internal/tracking/domain"
)

// ErrInvalidParams is returned for malformed seed parameters.
var ErrInvalidParams = errors.New("invalid seed params")

// MaxDays bounds a single seed run.
const MaxDays = 366

var (
	browsers = []string{"chrome", "firefox", "safari", "edge", "opera", "samsung browser"}
	devices  = []string{ingest.DeviceDesktop, ingest.DeviceMobile, ingest.DeviceTablet}
	systems  = []string{"windows", "macos", "linux", "android", "ios"}
	crawlers = []string{"googlebot", "bingbot", "ahrefsbot", "yandexbot"}
)

// Store is the subset of the tracking repository the seeder writes through.
type Store interface {
	GetTracking(ctx context.Context, id string) (*domain.Tracking, error)
	CreateTrace(ctx context.Context, tr *domain.Trace) error
}

// CountRange is the inclusive range each day's trace count is drawn from.
type CountRange struct {
	Min int
	Max int
}

// Params describes one seed run.
type Params struct {
	TrackingID string
	// WorkspaceID must match the tracking's workspace; empty for admin-wide trackings.
	WorkspaceID string
	StartDate   time.Time
	Days        int
	CountRange  CountRange
	// BotRatio is the probability in [0, 1] that a trace is flagged as a bot.
	BotRatio float64
}

func (p Params) validate() error {
	switch {
	case p.TrackingID == "":
		return fmt.Errorf("%w: tracking id is required", ErrInvalidParams)
	case p.StartDate.IsZero():
		return fmt.Errorf("%w: start date is required", ErrInvalidParams)
	case p.Days <= 0 || p.Days > MaxDays:
		return fmt.Errorf("%w: days must be in [1, %d]", ErrInvalidParams, MaxDays)
	case p.CountRange.Min < 0 || p.CountRange.Max < p.CountRange.Min:
		return fmt.Errorf("%w: count range [%d, %d]", ErrInvalidParams, p.CountRange.Min, p.CountRange.Max)
	case p.BotRatio < 0 || p.BotRatio > 1:
		return fmt.Errorf("%w: bot ratio must be in [0, 1]", ErrInvalidParams)
	}
	return nil
}

// Seeder generates traces with a pseudo-random source. Safe for concurrent use: each Seed call
// draws from its own source, seeded from the shared one.
type Seeder struct {
	store Store
	newID func() string

	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Seeder. A nil rng uses a randomly seeded source.
func New(store Store, rng *rand.Rand) *Seeder {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Seeder{store: store, rng: rng, newID: uuid.NewString}
}

// Seed writes traces for p.Days days starting at the day of p.StartDate (in its location) and
// returns how many were created. onEach, if non-nil, is called after every write. On error the
// count of traces already written is returned with it.
func (s *Seeder) Seed(ctx context.Context, p Params, onEach func(*domain.Trace)) (int, error) {
	if err := p.validate(); err != nil {
		return 0, err
	}
	tracking, err := s.store.GetTracking(ctx, p.TrackingID)
	if err != nil {
		return 0, err
	}
	if tracking == nil || tracking.WorkspaceID != p.WorkspaceID {
		return 0, domain.ErrNotFound
	}

	rng := s.runRand()
	y, m, d := p.StartDate.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, p.StartDate.Location())
	created := 0
	for i := 0; i < p.Days; i++ {
		start := day.AddDate(0, 0, i)
		end := start.AddDate(0, 0, 1)
		count := p.CountRange.Min + rng.IntN(p.CountRange.Max-p.CountRange.Min+1)
		sessions := s.sessionPool(count)
		for j := 0; j < count; j++ {
			if err := ctx.Err(); err != nil {
				return created, err
			}
			tr := s.trace(rng, p, start, end, sessions)
			if err := s.store.CreateTrace(ctx, tr); err != nil {
				return created, fmt.Errorf("seed day %s: %w", start.Format(time.DateOnly), err)
			}
			created++
			metrics.SeededTracesTotal.Inc()
			if onEach != nil {
				onEach(tr)
			}
		}
	}
	return created, nil
}

// runRand returns a source for one Seed call.
func (s *Seeder) runRand() *rand.Rand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rand.New(rand.NewPCG(s.rng.Uint64(), s.rng.Uint64()))
}

// sessionPool returns roughly one session per three traces so the same visitor shows up more than once a day.
func (s *Seeder) sessionPool(count int) []string {
	n := count/3 + 1
	pool := make([]string, n)
	for i := range pool {
		pool[i] = s.newID()
	}
	return pool
}

func (s *Seeder) trace(rng *rand.Rand, p Params, start, end time.Time, sessions []string) *domain.Trace {
	at := start.Add(time.Duration(rng.Int64N(int64(end.Sub(start))))).UTC()
	tr := &domain.Trace{
		ID:         s.newID(),
		TrackingID: p.TrackingID,
		SessionID:  sessions[rng.IntN(len(sessions))],
		IsBot:      rng.Float64() < p.BotRatio,
		Device:     pick(rng, devices),
		OS:         pick(rng, systems),
		Hits:       1 + rng.Int32N(5),
		CreatedAt:  at,
		LastSeenAt: at,
	}
	if tr.IsBot {
		tr.Browser = pick(rng, crawlers)
		tr.Device = domain.UnknownValue
	} else {
		tr.Browser = pick(rng, browsers)
		if rng.IntN(4) == 0 {
			uid := fmt.Sprintf("seed-user-%d", rng.IntN(20))
			tr.UserID = &uid
		}
	}
	return tr
}

func pick(rng *rand.Rand, vals []string) string {
	return vals[rng.IntN(len(vals))]
}
