package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"tracking-analytics/backend/internal/analytics/cache"
	"tracking-analytics/backend/internal/tracking/domain"
	"tracking-analytics/backend/internal/tracking/repository"
)

var now = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

type fixture struct {
	repo *repository.MemoryRepository
	n    int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{repo: repository.NewMemoryRepository()}
	for _, tk := range []domain.Tracking{
		{ID: "tk-a", WorkspaceID: "ws-a", Name: "A", CreatedAt: now.AddDate(-1, 0, 0)},
		{ID: "tk-a2", WorkspaceID: "ws-a", Name: "A2", CreatedAt: now.AddDate(-1, 0, 0)},
		{ID: "tk-b", WorkspaceID: "ws-b", Name: "B", CreatedAt: now.AddDate(-1, 0, 0)},
	} {
		tk := tk
		if err := f.repo.CreateTracking(context.Background(), &tk); err != nil {
			t.Fatal(err)
		}
	}
	return f
}

func (f *fixture) add(t *testing.T, tracking, session string, user *string, bot bool, at time.Time) {
	t.Helper()
	f.n++
	tr := &domain.Trace{
		ID: fmt.Sprintf("tr-%04d", f.n), TrackingID: tracking, SessionID: session, UserID: user,
		IsBot: bot, Browser: "chrome", Device: "desktop", OS: "linux",
		Hits: 1, CreatedAt: at, LastSeenAt: at,
	}
	if err := f.repo.CreateTrace(context.Background(), tr); err != nil {
		t.Fatal(err)
	}
}

func newService(store TraceStore, rc *cache.ResultCache) *Service {
	s := NewService(store, rc, Config{Location: time.UTC, WeekStart: time.Monday})
	s.nowF = func() time.Time { return now }
	return s
}

func TestService_TodayExcludesBots(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 10; i++ {
		f.add(t, "tk-a", fmt.Sprintf("s%d", i), nil, i < 3, now.Add(-time.Duration(i)*time.Minute))
	}
	s := newService(f.repo, nil)
	humans := false

	st, err := s.Stats(context.Background(), Query{Scope: ScopeForWorkspace("ws-a"), TrackingIDs: []string{"tk-a"}, IsBot: &humans})
	if err != nil {
		t.Fatal(err)
	}
	if st.Today != 7 {
		t.Errorf("today = %d, want 7", st.Today)
	}
	if st.Ever != 7 {
		t.Errorf("ever with isBot=false = %d, want 7", st.Ever)
	}

	all, err := s.Stats(context.Background(), Query{Scope: ScopeForWorkspace("ws-a"), TrackingIDs: []string{"tk-a"}})
	if err != nil {
		t.Fatal(err)
	}
	if all.Today != 10 || all.Ever != 10 {
		t.Errorf("unfiltered today=%d ever=%d, want 10/10", all.Today, all.Ever)
	}
}

func TestService_RangeScalars(t *testing.T) {
	f := newFixture(t)
	f.add(t, "tk-a", "s1", nil, false, now.Add(-time.Hour))              // today
	f.add(t, "tk-a", "s1", nil, false, now.Add(-2*time.Hour))            // today, same visitor
	f.add(t, "tk-a", "s2", nil, false, now.AddDate(0, 0, -3))            // last 7
	f.add(t, "tk-a", "s1", nil, false, now.AddDate(0, 0, -6))            // last 7, same visitor
	f.add(t, "tk-a", "s3", nil, false, now.AddDate(0, 0, -7))            // outside 7-day window
	f.add(t, "tk-a", "s4", nil, false, now.AddDate(0, 0, -29))           // last month
	f.add(t, "tk-a", "s5", nil, false, now.AddDate(0, 0, -31))           // only ever
	f.add(t, "tk-a", "s6", nil, false, now.AddDate(0, 0, 2))             // future, only ever
	f.add(t, "tk-a2", "s9", nil, false, now.Add(-time.Hour))             // other tracking, same tenant
	f.add(t, "tk-b", "s1", strptr("u-b"), false, now.Add(-30*time.Minute)) // other tenant

	s := newService(f.repo, nil)
	ctx := context.Background()
	q := Query{Scope: ScopeForWorkspace("ws-a"), TrackingIDs: []string{"tk-a"}}

	st, err := s.Stats(ctx, q)
	if err != nil {
		t.Fatal(err)
	}
	want := Stats{Today: 2, Last7Days: 4, LastMonth: 6, Ever: 8}
	if st.Today != want.Today || st.Last7Days != want.Last7Days || st.LastMonth != want.LastMonth || st.Ever != want.Ever {
		t.Errorf("stats = %+v, want %+v", *st, want)
	}

	q.Unique = true
	u, err := s.Stats(ctx, q)
	if err != nil {
		t.Fatal(err)
	}
	want = Stats{Today: 1, Last7Days: 2, LastMonth: 4, Ever: 6}
	if u.Today != want.Today || u.Last7Days != want.Last7Days || u.LastMonth != want.LastMonth || u.Ever != want.Ever {
		t.Errorf("unique stats = %+v, want %+v", *u, want)
	}
	if u.ApproxVisitors != 4 {
		t.Errorf("approx visitors = %d, want 4", u.ApproxVisitors)
	}
}

func TestService_TenantIsolation(t *testing.T) {
	f := newFixture(t)
	f.add(t, "tk-a", "s1", nil, false, now.Add(-time.Hour))
	f.add(t, "tk-b", "s2", nil, false, now.Add(-time.Hour))
	f.add(t, "tk-b", "s3", nil, false, now.Add(-time.Hour))
	s := newService(f.repo, nil)
	ctx := context.Background()

	a, err := s.Stats(ctx, Query{Scope: ScopeForWorkspace("ws-a")})
	if err != nil {
		t.Fatal(err)
	}
	if a.Today != 1 || a.Ever != 1 {
		t.Errorf("ws-a stats = %+v", *a)
	}
	// naming another tenant's tracking yields nothing rather than leaking it
	leak, err := s.Stats(ctx, Query{Scope: ScopeForWorkspace("ws-a"), TrackingIDs: []string{"tk-b"}})
	if err != nil {
		t.Fatal(err)
	}
	if leak.Ever != 0 || leak.LastMonth != 0 {
		t.Errorf("cross-tenant stats = %+v", *leak)
	}
	admin, err := s.Stats(ctx, Query{Scope: AdminScope()})
	if err != nil {
		t.Fatal(err)
	}
	if admin.Ever != 3 {
		t.Errorf("admin ever = %d, want 3", admin.Ever)
	}

	if _, _, err := s.TrackingStats(ctx, "tk-b", Query{Scope: ScopeForWorkspace("ws-a")}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("TrackingStats cross-tenant err = %v, want ErrNotFound", err)
	}
	if _, _, err := s.TrackingStats(ctx, "missing", Query{Scope: AdminScope()}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("TrackingStats missing err = %v, want ErrNotFound", err)
	}
	tk, st, err := s.TrackingStats(ctx, "tk-b", Query{Scope: AdminScope()})
	if err != nil || tk.ID != "tk-b" || st.Ever != 2 {
		t.Errorf("TrackingStats admin = %v, %v, %v", tk, st, err)
	}
}

func TestService_Breakdown(t *testing.T) {
	f := newFixture(t)
	f.add(t, "tk-a", "s1", nil, false, now.Add(-time.Hour))
	f.add(t, "tk-a", "s1", nil, false, now.AddDate(0, 0, -1))
	f.add(t, "tk-a", "s2", nil, false, now.AddDate(0, 0, -1))
	s := newService(f.repo, nil)
	ctx := context.Background()
	q := Query{Scope: ScopeForWorkspace("ws-a")}

	res, err := s.Breakdown(ctx, q, DimensionDay)
	if err != nil {
		t.Fatal(err)
	}
	want := []Bucket{{"2025-03-09", 2}, {"2025-03-10", 1}}
	if len(res.Buckets) != 2 || res.Buckets[0] != want[0] || res.Buckets[1] != want[1] || res.Total != 3 {
		t.Errorf("breakdown = %+v", res)
	}

	// global dedupe: s1 is counted once, on the day of its first visit
	q.Unique = true
	res, err = s.Breakdown(ctx, q, DimensionDay)
	if err != nil {
		t.Fatal(err)
	}
	want = []Bucket{{"2025-03-09", 2}}
	if len(res.Buckets) != 1 || res.Buckets[0] != want[0] {
		t.Errorf("unique breakdown = %+v", res)
	}

	if _, err := s.Breakdown(ctx, q, Dimension(0)); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("invalid dimension err = %v", err)
	}
}

func TestService_InvalidQueryNeverTouchesStore(t *testing.T) {
	st := &countingStore{TraceStore: repository.NewMemoryRepository()}
	s := newService(st, nil)
	q := Query{Scope: AdminScope(), Interval: DateInterval{From: now, To: now.Add(-time.Hour)}}
	if _, err := s.Stats(context.Background(), q); !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("err = %v, want ErrInvalidQuery", err)
	}
	if _, err := s.Stats(context.Background(), Query{}); !errors.Is(err, ErrMissingScope) {
		t.Fatalf("err = %v, want ErrMissingScope", err)
	}
	if st.calls.Load() != 0 {
		t.Errorf("store calls = %d, want 0", st.calls.Load())
	}
}

func TestService_StoreUnavailable(t *testing.T) {
	s := newService(failingStore{}, cache.New(cache.NewMemoryBackend(8), time.Minute))
	_, err := s.Stats(context.Background(), Query{Scope: AdminScope()})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
	_, err = s.Breakdown(context.Background(), Query{Scope: AdminScope()}, DimensionBrowser)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("breakdown err = %v, want ErrStoreUnavailable", err)
	}
}

func TestService_CallerCancellation(t *testing.T) {
	s := newService(failingStore{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Stats(ctx, Query{Scope: AdminScope()})
	if !errors.Is(err, context.Canceled) || errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestService_CacheServesIdenticalQueries(t *testing.T) {
	f := newFixture(t)
	f.add(t, "tk-a", "s1", nil, false, now.Add(-time.Hour))
	st := &countingStore{TraceStore: f.repo}
	s := newService(st, cache.New(cache.NewMemoryBackend(64), time.Minute))
	ctx := context.Background()
	q := Query{Scope: ScopeForWorkspace("ws-a")}

	first, _ := s.Stats(ctx, q)
	calls := st.calls.Load()
	f.add(t, "tk-a", "s2", nil, false, now.Add(-time.Minute))

	cached, _ := s.Stats(ctx, q)
	if st.calls.Load() != calls {
		t.Errorf("identical query hit the store")
	}
	if cached.Today != first.Today {
		t.Errorf("cached today = %d, want stale %d", cached.Today, first.Today)
	}

	q.Unique = true
	fresh, _ := s.Stats(ctx, q)
	if st.calls.Load() == calls || fresh.Today != 2 {
		t.Errorf("differing query was served from cache: %+v", fresh)
	}

	q.Unique = false
	q.Bypass = true
	bypassed, _ := s.Stats(ctx, q)
	if bypassed.Today != 2 {
		t.Errorf("bypass today = %d, want 2", bypassed.Today)
	}
	again, _ := s.Stats(ctx, q)
	if *again != *bypassed {
		t.Errorf("bypassed queries differ: %+v vs %+v", again, bypassed)
	}
}

type countingStore struct {
	TraceStore
	calls atomic.Int32
}

func (c *countingStore) ListTraces(ctx context.Context, f domain.TraceFilter) ([]*domain.Trace, error) {
	c.calls.Add(1)
	return c.TraceStore.ListTraces(ctx, f)
}

func (c *countingStore) CountTraces(ctx context.Context, f domain.TraceFilter) (int64, error) {
	c.calls.Add(1)
	return c.TraceStore.CountTraces(ctx, f)
}

type failingStore struct{}

var errDown = errors.New("connection refused")

func (failingStore) GetTracking(ctx context.Context, id string) (*domain.Tracking, error) {
	return nil, errDown
}
func (failingStore) ListTraces(ctx context.Context, f domain.TraceFilter) ([]*domain.Trace, error) {
	return nil, errDown
}
func (failingStore) CountTraces(ctx context.Context, f domain.TraceFilter) (int64, error) {
	return 0, errDown
}
func (failingStore) CountVisitors(ctx context.Context, f domain.TraceFilter) (int64, error) {
	return 0, errDown
}
