package domain

import (
	"encoding/json"
	"time"
)

// Event types emitted by the service.
const (
	EventTraceRecorded  = "trace_recorded"
	EventTraceContinued = "trace_continued"
	EventGRPCRequest    = "grpc_request"
	EventTracesSeeded   = "traces_seeded"
)

// Event is a workspace-scoped operational event shipped to Kafka or OTel logs.
type Event struct {
	WorkspaceID string          `json:"workspaceId,omitempty"`
	TrackingID  string          `json:"trackingId,omitempty"`
	TraceID     string          `json:"traceId,omitempty"`
	SessionID   string          `json:"sessionId,omitempty"`
	UserID      string          `json:"userId,omitempty"`
	EventType   string          `json:"eventType"`
	Source      string          `json:"source,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}
