package analytics

import (
	"errors"
	"testing"
	"time"

	"tracking-analytics/backend/internal/tracking/domain"
)

func TestQuery_Validate(t *testing.T) {
	ws := ScopeForWorkspace("ws-1")
	tests := []struct {
		name    string
		q       Query
		wantErr error
	}{
		{"zero interval", Query{Scope: ws}, nil},
		{"admin", Query{Scope: AdminScope()}, nil},
		{"missing scope", Query{}, ErrMissingScope},
		{"ambiguous scope", Query{Scope: Scope{WorkspaceID: "ws", AdminWide: true}}, ErrInvalidQuery},
		{"explicit", Query{Scope: ws, Interval: DateInterval{From: base, To: base.Add(time.Hour)}}, nil},
		{"empty range", Query{Scope: ws, Interval: DateInterval{From: base, To: base}}, ErrInvalidQuery},
		{"inverted", Query{Scope: ws, Interval: DateInterval{From: base.Add(time.Hour), To: base}}, ErrInvalidQuery},
		{"from only", Query{Scope: ws, Interval: DateInterval{From: base}}, ErrInvalidQuery},
		{"date and range", Query{Scope: ws, Interval: DateInterval{From: base, To: base.Add(time.Hour), Date: base}}, ErrInvalidQuery},
		{"empty id", Query{Scope: ws, TrackingIDs: []string{""}}, ErrInvalidQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidQuery) {
				t.Errorf("Validate() = %v does not wrap ErrInvalidQuery", err)
			}
		})
	}
}

func TestQuery_ResolveReferenceDate(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 4, 5, 0, time.UTC)
	w := Query{}.resolve(now, time.UTC)
	if want := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC); !w.ref.Equal(want) {
		t.Errorf("ref = %v, want %v", w.ref, want)
	}
	if want := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC); !w.to.Equal(want) {
		t.Errorf("to = %v, want %v", w.to, want)
	}
	if want := time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC); !w.from.Equal(want) {
		t.Errorf("from = %v, want %v", w.from, want)
	}

	d := Query{Interval: DateInterval{Date: time.Date(2024, 12, 31, 8, 0, 0, 0, time.UTC)}}.resolve(now, time.UTC)
	if want := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC); !d.ref.Equal(want) {
		t.Errorf("date ref = %v, want %v", d.ref, want)
	}
}

func TestQuery_ResolveExplicit(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	w := Query{Interval: DateInterval{From: from, To: to}}.resolve(time.Now(), time.UTC)
	if !w.from.Equal(from) || !w.to.Equal(to) {
		t.Errorf("window = %v..%v", w.from, w.to)
	}
	// to is exclusive, so the reference day is the last day inside the range
	if want := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC); !w.ref.Equal(want) {
		t.Errorf("ref = %v, want %v", w.ref, want)
	}
}

func TestQuery_FilterScope(t *testing.T) {
	bot := false
	q := Query{Scope: ScopeForWorkspace("ws-1"), TrackingIDs: []string{"a"}, IsBot: &bot}
	w := window{from: base, to: base.Add(time.Hour)}
	f := q.filter(w, false)
	want := domain.TraceFilter{TrackingIDs: []string{"a"}, Scoped: true, WorkspaceID: "ws-1", From: base, To: base.Add(time.Hour), IsBot: &bot}
	if !f.Scoped || f.WorkspaceID != want.WorkspaceID || !f.From.Equal(want.From) || !f.To.Equal(want.To) || f.IsBot != &bot {
		t.Errorf("filter = %+v", f)
	}
	ever := q.filter(w, true)
	if !ever.From.IsZero() || !ever.To.IsZero() || !ever.Scoped || ever.IsBot != &bot {
		t.Errorf("ever filter = %+v", ever)
	}
	admin := Query{Scope: AdminScope()}.filter(w, false)
	if admin.Scoped {
		t.Errorf("admin filter scoped: %+v", admin)
	}
}
