// Package trackingv1 is the wire contract of tracking.v1.TrackingService. Messages travel as JSON
// (content-subtype "json"); the service descriptor is maintained by hand in service.go.
package trackingv1

// RecordHitRequest is one page interaction reported by a site.
type RecordHitRequest struct {
	TrackingID  string `json:"tracking_id"`
	SessionID   string `json:"session_id,omitempty"`
	TraceID     string `json:"trace_id,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	IsAnonymous bool   `json:"is_anonymous,omitempty"`
	// UserAgent falls back to the call's user-agent metadata when empty.
	UserAgent string `json:"user_agent,omitempty"`
}

type RecordHitResponse struct {
	TraceID   string `json:"trace_id"`
	SessionID string `json:"session_id"`
	Continued bool   `json:"continued"`
}

// StatsFilter is shared by the stats RPCs. Dates are YYYY-MM-DD (midnight in Timezone) or RFC3339.
type StatsFilter struct {
	TrackingIDs []string `json:"tracking_ids,omitempty"`
	WorkspaceID string   `json:"workspace_id,omitempty"`
	AdminWide   bool     `json:"admin_wide,omitempty"`
	From        string   `json:"from,omitempty"`
	To          string   `json:"to,omitempty"`
	Date        string   `json:"date,omitempty"`
	Timezone    string   `json:"timezone,omitempty"`
	IsBot       *bool    `json:"is_bot,omitempty"`
	Unique      bool     `json:"unique,omitempty"`
	CacheBypass bool     `json:"cache_bypass,omitempty"`
}

type Stats struct {
	Today          int64 `json:"today"`
	Last7Days      int64 `json:"last7_days"`
	LastMonth      int64 `json:"last_month"`
	Ever           int64 `json:"ever"`
	ApproxVisitors int64 `json:"approx_visitors"`
}

type GetStatsRequest struct {
	StatsFilter
}

type GetStatsResponse struct {
	Stats *Stats `json:"stats"`
}

type Tracking struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id,omitempty"`
	Name        string `json:"name"`
	CreatedAt   string `json:"created_at"`
}

type GetTrackingStatsRequest struct {
	TrackingID string `json:"tracking_id"`
	StatsFilter
}

type GetTrackingStatsResponse struct {
	Tracking *Tracking `json:"tracking"`
	Stats    *Stats    `json:"stats"`
}

type GetBreakdownRequest struct {
	Dimension string `json:"dimension"`
	StatsFilter
}

type Bucket struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

type GetBreakdownResponse struct {
	Dimension string    `json:"dimension"`
	Buckets   []*Bucket `json:"buckets"`
	Total     int64     `json:"total"`
}

type SeedRequest struct {
	TrackingID  string  `json:"tracking_id"`
	WorkspaceID string  `json:"workspace_id,omitempty"`
	StartDate   string  `json:"start_date"`
	Days        int32   `json:"days"`
	Min         int32   `json:"min"`
	Max         int32   `json:"max"`
	BotRatio    float64 `json:"bot_ratio,omitempty"`
}

type SeedResponse struct {
	Created int64 `json:"created"`
}
