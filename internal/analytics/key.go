package analytics

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"tracking-analytics/backend/internal/analytics/cache"
)

const cacheKeyVersion = "v1"

// KeyParams is every input that can change a cached stats result.
type KeyParams struct {
	Endpoint    string
	Dimension   string
	From        time.Time
	To          time.Time
	Reference   time.Time
	Timezone    string
	WeekStart   time.Weekday
	IsBot       *bool
	Unique      bool
	TrackingIDs []string
	Scope       Scope
}

// Canonical encodes p deterministically: fixed field order, UTC RFC3339 times, tracking ids sorted and deduplicated.
func (p KeyParams) Canonical() string {
	var b strings.Builder
	field := func(name, v string) {
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(v)
	}
	field("endpoint", strconv.Quote(p.Endpoint))
	field("dim", p.Dimension)
	field("from", canonicalTime(p.From))
	field("to", canonicalTime(p.To))
	field("ref", canonicalTime(p.Reference))
	field("tz", strconv.Quote(p.Timezone))
	field("week", strconv.Itoa(int(p.WeekStart)))
	bot := "any"
	if p.IsBot != nil {
		bot = strconv.FormatBool(*p.IsBot)
	}
	field("bot", bot)
	field("unique", strconv.FormatBool(p.Unique))
	field("ids", canonicalIDs(p.TrackingIDs))
	scope := "admin"
	if !p.Scope.AdminWide {
		scope = "ws:" + strconv.Quote(p.Scope.WorkspaceID)
	}
	field("scope", scope)
	return b.String()
}

// CacheKey returns the result cache key for p.
func CacheKey(p KeyParams) cache.Key {
	c := p.Canonical()
	return cache.Key{
		Storage:   "stats:" + cacheKeyVersion + ":" + p.Endpoint + ":" + strconv.FormatUint(xxhash.Sum64String(c), 16),
		Canonical: c,
	}
}

func canonicalTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func canonicalIDs(ids []string) string {
	if len(ids) == 0 {
		return "*"
	}
	s := make([]string, len(ids))
	copy(s, ids)
	sort.Strings(s)
	out := make([]string, 0, len(s))
	for i, id := range s {
		if i > 0 && id == s[i-1] {
			continue
		}
		out = append(out, strconv.Quote(id))
	}
	return strings.Join(out, ",")
}
