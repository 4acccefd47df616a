package client

import (
	"time"

	"github.com/upreis/reistooq-core-sub019/internal/domain/claim"
)

// ClaimList is the server's answer to a claims listing.
type ClaimList struct {
	Claims    []claim.Enriched `json:"claims"`
	Source    string           `json:"source"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// SyncStatus mirrors the server's sync control view.
type SyncStatus struct {
	AccountID       string     `json:"account_id"`
	Status          string     `json:"status"`
	ProgressCurrent int        `json:"progress_current"`
	ProgressTotal   int        `json:"progress_total"`
	LastSyncDate    *time.Time `json:"last_sync_date,omitempty"`
	TotalClaims     int        `json:"total_claims"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// InvalidateResult reports which accounts had cache entries dropped.
type InvalidateResult struct {
	Status   string   `json:"status"`
	Accounts []string `json:"accounts"`
}

// ListFilter narrows a claims listing.
type ListFilter struct {
	Accounts []string
	DateFrom string
	DateTo   string
}
