package sync

import (
	"time"
)

// Status of a per-account synchronization.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// ControlRecord tracks one account's bulk synchronization. At most one
// record exists per account; the running sync mutates it in place and
// finalizes it to completed or error — never leaves it running.
type ControlRecord struct {
	AccountID       string     `json:"account_id"`
	Status          Status     `json:"status"`
	ProgressCurrent int        `json:"progress_current"`
	ProgressTotal   int        `json:"progress_total"`
	LastSyncDate    *time.Time `json:"last_sync_date,omitempty"`
	TotalClaims     int        `json:"total_claims"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Stale reports whether a running record has outlived the maximum sync
// duration. Readers must treat a stale running record as failed rather than
// trusting it indefinitely, so a crashed sync never blocks future ones.
func (r *ControlRecord) Stale(now time.Time, maxAge time.Duration) bool {
	if r.Status != StatusRunning {
		return false
	}
	return now.Sub(r.UpdatedAt) > maxAge
}
