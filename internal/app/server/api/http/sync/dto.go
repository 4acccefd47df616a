package sync

import (
	"time"
)

type startInput struct {
	AccountID string `path:"account_id" example:"acc-1" doc:"Marketplace account ID"`
}

type startOutput struct {
	Body statusResponse
}

type statusInput struct {
	AccountID string `path:"account_id" example:"acc-1" doc:"Marketplace account ID"`
}

type statusOutput struct {
	Body statusResponse
}

type cancelInput struct {
	AccountID string `path:"account_id" example:"acc-1" doc:"Marketplace account ID"`
}

type cancelOutput struct {
	Body statusResponse
}

type invalidateInput struct {
	AccountIDs string `query:"account_ids" example:"acc-1,acc-2" doc:"Comma-separated account IDs whose cache entries to drop" required:"true"`
}

type invalidateOutput struct {
	Body invalidateResponse
}

type statusResponse struct {
	AccountID       string     `json:"account_id"`
	Status          string     `json:"status" doc:"One of idle, running, completed, error"`
	ProgressCurrent int        `json:"progress_current"`
	ProgressTotal   int        `json:"progress_total"`
	LastSyncDate    *time.Time `json:"last_sync_date,omitempty"`
	TotalClaims     int        `json:"total_claims"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type invalidateResponse struct {
	Status   string   `json:"status"`
	Accounts []string `json:"accounts"`
}
