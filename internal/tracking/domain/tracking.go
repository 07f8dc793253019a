package domain

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a referenced tracking or trace does not exist.
var ErrNotFound = errors.New("not found")

// UnknownValue is the category used for missing or unrecognized browser/device/os values.
const UnknownValue = "unknown"

// Tracking is a named collector of traces. WorkspaceID is empty for an admin-wide collector.
type Tracking struct {
	ID          string
	WorkspaceID string
	Name        string
	CreatedAt   time.Time
}

// AdminWide reports whether the tracking belongs to no workspace.
func (t *Tracking) AdminWide() bool {
	return t.WorkspaceID == ""
}

// Trace is one recorded visitor interaction against a tracking.
type Trace struct {
	ID         string
	TrackingID string
	SessionID  string
	UserID     *string // nil for anonymous visits
	IsBot      bool
	Browser    string
	Device     string
	OS         string
	Hits       int32
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// VisitorKey returns the identity used for deduplication: the user id when set, otherwise the session id.
func (t *Trace) VisitorKey() string {
	if t.UserID != nil && *t.UserID != "" {
		return "u:" + *t.UserID
	}
	return "s:" + t.SessionID
}
