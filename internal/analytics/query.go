package analytics

import (
	"errors"
	"fmt"
	"time"

	"tracking-analytics/backend/internal/tracking/domain"
)

var (
	// ErrInvalidQuery is returned for malformed queries before the store is touched.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrStoreUnavailable wraps trace store failures. It is retryable and never reported as an empty result.
	ErrStoreUnavailable = errors.New("trace store unavailable")
)

// statsWindowDays is the length of the working set resolved from a reference date.
const statsWindowDays = 30

// DateInterval selects the working set: either an explicit [From, To) range or the statsWindowDays
// days ending with the calendar day of Date. The zero value means the window ending today.
type DateInterval struct {
	From time.Time
	To   time.Time
	Date time.Time
}

// Explicit reports whether the interval is a From/To range.
func (d DateInterval) Explicit() bool {
	return !d.From.IsZero() || !d.To.IsZero()
}

// Query is a stats request.
type Query struct {
	TrackingIDs []string
	Scope       Scope
	Interval    DateInterval
	// Location overrides the service reference zone when set.
	Location *time.Location
	IsBot    *bool
	Unique   bool
	// Bypass skips the result cache.
	Bypass bool
}

// Validate checks the query shape. Errors wrap ErrInvalidQuery.
func (q Query) Validate() error {
	if err := q.Scope.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	for _, id := range q.TrackingIDs {
		if id == "" {
			return fmt.Errorf("%w: empty tracking id", ErrInvalidQuery)
		}
	}
	iv := q.Interval
	if iv.Explicit() {
		if !iv.Date.IsZero() {
			return fmt.Errorf("%w: date cannot be combined with from/to", ErrInvalidQuery)
		}
		if iv.From.IsZero() || iv.To.IsZero() {
			return fmt.Errorf("%w: from and to must both be set", ErrInvalidQuery)
		}
		if !iv.From.Before(iv.To) {
			return fmt.Errorf("%w: from %s is not before to %s", ErrInvalidQuery,
				iv.From.Format(time.RFC3339), iv.To.Format(time.RFC3339))
		}
	}
	return nil
}

// window is a resolved interval: the working set [from, to) and the start of the reference day.
type window struct {
	from time.Time
	to   time.Time
	ref  time.Time
}

func (q Query) resolve(now time.Time, loc *time.Location) window {
	iv := q.Interval
	if iv.Explicit() {
		last := iv.To
		if iv.To.After(iv.From) {
			last = iv.To.Add(-time.Nanosecond)
		}
		return window{from: iv.From, to: iv.To, ref: StartOfDay(last.In(loc))}
	}
	d := iv.Date
	if d.IsZero() {
		d = now
	}
	ref := StartOfDay(d.In(loc))
	return window{
		from: ref.AddDate(0, 0, -(statsWindowDays - 1)),
		to:   ref.AddDate(0, 0, 1),
		ref:  ref,
	}
}

// filter builds the store predicate for the working set. ever drops the date bounds.
func (q Query) filter(w window, ever bool) domain.TraceFilter {
	f := domain.TraceFilter{
		TrackingIDs: q.TrackingIDs,
		IsBot:       q.IsBot,
	}
	q.Scope.Apply(&f)
	if !ever {
		f.From = w.from
		f.To = w.to
	}
	return f
}
