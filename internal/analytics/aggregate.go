package analytics

import (
	"sort"
	"strings"
	"time"

	"tracking-analytics/backend/internal/tracking/domain"
)

// Bucket keys for temporal dimensions. All sort lexically in chronological order.
const (
	HourKeyLayout  = "2006-01-02T15"
	DayKeyLayout   = "2006-01-02"
	MonthKeyLayout = "2006-01"
	YearKeyLayout  = "2006"
)

// Options controls temporal bucketing.
type Options struct {
	// Location is the reference zone for truncation; nil means UTC.
	Location *time.Location
	// WeekStart is the first day of a week bucket.
	WeekStart time.Weekday
}

// Breakdown maps a bucket or category key to its trace count.
type Breakdown map[string]int64

// Bucket is one entry of a Breakdown.
type Bucket struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// Sorted returns the buckets ordered by key, which is chronological for temporal dimensions.
func (b Breakdown) Sorted() []Bucket {
	out := make([]Bucket, 0, len(b))
	for k, v := range b {
		out = append(out, Bucket{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Total returns the sum of all counts.
func (b Breakdown) Total() int64 {
	var n int64
	for _, v := range b {
		n += v
	}
	return n
}

// Aggregate counts traces per bucket of dim. Only buckets with at least one trace appear.
// An invalid dim yields an empty breakdown.
func Aggregate(traces []*domain.Trace, dim Dimension, opts Options) Breakdown {
	out := make(Breakdown)
	if !dim.Valid() {
		return out
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	for _, tr := range traces {
		out[bucketKey(tr, dim, loc, opts.WeekStart)]++
	}
	return out
}

func bucketKey(tr *domain.Trace, dim Dimension, loc *time.Location, weekStart time.Weekday) string {
	switch dim {
	case DimensionBrowser:
		return NormalizeCategory(tr.Browser)
	case DimensionDevice:
		return NormalizeCategory(tr.Device)
	case DimensionOS:
		return NormalizeCategory(tr.OS)
	}
	t := tr.CreatedAt.In(loc)
	switch dim {
	case DimensionHour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc).Format(HourKeyLayout)
	case DimensionDay:
		return StartOfDay(t).Format(DayKeyLayout)
	case DimensionWeek:
		return StartOfWeek(t, weekStart).Format(DayKeyLayout)
	case DimensionMonth:
		return t.Format(MonthKeyLayout)
	default:
		return t.Format(YearKeyLayout)
	}
}

// NormalizeCategory lower-cases and trims v; empty values become domain.UnknownValue.
func NormalizeCategory(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return domain.UnknownValue
	}
	return v
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the most recent weekStart on or before t, in t's location.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	d := StartOfDay(t)
	back := (int(d.Weekday()) - int(weekStart) + 7) % 7
	return d.AddDate(0, 0, -back)
}
