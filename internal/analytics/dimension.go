package analytics

import (
	"fmt"
	"strings"
)

// Dimension is the grouping applied by Aggregate.
type Dimension int

const (
	DimensionBrowser Dimension = iota + 1
	DimensionDevice
	DimensionOS
	DimensionHour
	DimensionDay
	DimensionWeek
	DimensionMonth
	DimensionYear
)

var dimensionNames = map[Dimension]string{
	DimensionBrowser: "browser",
	DimensionDevice:  "device",
	DimensionOS:      "os",
	DimensionHour:    "hour",
	DimensionDay:     "day",
	DimensionWeek:    "week",
	DimensionMonth:   "month",
	DimensionYear:    "year",
}

func (d Dimension) String() string {
	if s, ok := dimensionNames[d]; ok {
		return s
	}
	return fmt.Sprintf("dimension(%d)", int(d))
}

// Valid reports whether d is one of the declared dimensions.
func (d Dimension) Valid() bool {
	_, ok := dimensionNames[d]
	return ok
}

// Temporal reports whether d buckets by time rather than by a categorical field.
func (d Dimension) Temporal() bool {
	return d >= DimensionHour && d <= DimensionYear
}

// ParseDimension accepts the dimension name, case-insensitively, with an optional "by" prefix ("byBrowser").
func ParseDimension(s string) (Dimension, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	n = strings.TrimPrefix(n, "by")
	n = strings.TrimPrefix(n, "_")
	for d, name := range dimensionNames {
		if name == n {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown dimension %q", ErrInvalidQuery, s)
}
