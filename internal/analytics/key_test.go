package analytics

import (
	"strings"
	"testing"
	"time"
)

func baseParams() KeyParams {
	return KeyParams{
		Endpoint:    "stats",
		From:        base,
		To:          base.Add(24 * time.Hour),
		Reference:   base,
		Timezone:    "UTC",
		WeekStart:   time.Monday,
		TrackingIDs: []string{"b", "a"},
		Scope:       ScopeForWorkspace("ws-1"),
	}
}

func TestCacheKey_SameSemanticsSameKey(t *testing.T) {
	a := baseParams()
	b := baseParams()
	b.TrackingIDs = []string{"a", "b", "a"}
	b.From = a.From.In(time.FixedZone("X", 3600))
	if CacheKey(a) != CacheKey(b) {
		t.Errorf("keys differ:\n%s\n%s", a.Canonical(), b.Canonical())
	}
}

func TestCacheKey_AnyDifferenceChangesKey(t *testing.T) {
	tr, fa := true, false
	mutations := map[string]func(*KeyParams){
		"endpoint":   func(p *KeyParams) { p.Endpoint = "tracking_stats" },
		"dimension":  func(p *KeyParams) { p.Dimension = "day" },
		"from":       func(p *KeyParams) { p.From = p.From.Add(time.Second) },
		"to":         func(p *KeyParams) { p.To = p.To.Add(time.Second) },
		"reference":  func(p *KeyParams) { p.Reference = p.Reference.AddDate(0, 0, 1) },
		"timezone":   func(p *KeyParams) { p.Timezone = "Europe/Paris" },
		"week start": func(p *KeyParams) { p.WeekStart = time.Sunday },
		"bot true":   func(p *KeyParams) { p.IsBot = &tr },
		"bot false":  func(p *KeyParams) { p.IsBot = &fa },
		"unique":     func(p *KeyParams) { p.Unique = true },
		"ids":        func(p *KeyParams) { p.TrackingIDs = []string{"a"} },
		"no ids":     func(p *KeyParams) { p.TrackingIDs = nil },
		"tenant":     func(p *KeyParams) { p.Scope = ScopeForWorkspace("ws-2") },
		"admin":      func(p *KeyParams) { p.Scope = AdminScope() },
	}
	seen := map[string]string{CacheKey(baseParams()).Canonical: "base"}
	storage := map[string]string{CacheKey(baseParams()).Storage: "base"}
	for name, mutate := range mutations {
		p := baseParams()
		mutate(&p)
		k := CacheKey(p)
		if other, ok := seen[k.Canonical]; ok {
			t.Errorf("%s shares canonical key with %s", name, other)
		}
		if other, ok := storage[k.Storage]; ok {
			t.Errorf("%s shares storage key with %s", name, other)
		}
		seen[k.Canonical] = name
		storage[k.Storage] = name
	}
}

func TestCacheKey_IDsCannotSmuggleSeparators(t *testing.T) {
	a := baseParams()
	a.TrackingIDs = []string{"a,b"}
	b := baseParams()
	b.TrackingIDs = []string{"a", "b"}
	if CacheKey(a) == CacheKey(b) {
		t.Error("ids containing separators collide")
	}
}

func TestCacheKey_StorageFormat(t *testing.T) {
	k := CacheKey(baseParams())
	if !strings.HasPrefix(k.Storage, "stats:v1:stats:") {
		t.Errorf("storage key = %s", k.Storage)
	}
}
