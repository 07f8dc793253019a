package analytics

import (
	"sort"

	"tracking-analytics/backend/internal/tracking/domain"
)

// Dedupe keeps one trace per visitor when enabled. The representative is the visitor's first trace by
// (CreatedAt, ID); output is ordered the same way. When disabled the input is returned unchanged.
func Dedupe(traces []*domain.Trace, enabled bool) []*domain.Trace {
	if !enabled {
		return traces
	}
	sorted := make([]*domain.Trace, len(traces))
	copy(sorted, traces)
	sort.SliceStable(sorted, func(i, j int) bool {
		return traceLess(sorted[i], sorted[j])
	})
	seen := make(map[string]struct{}, len(sorted))
	out := make([]*domain.Trace, 0, len(sorted))
	for _, tr := range sorted {
		k := tr.VisitorKey()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, tr)
	}
	return out
}

func traceLess(a, b *domain.Trace) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
