package sync

import (
	"context"
)

// Repository persists control records keyed by account. Any process
// instance may read or write them; writes are last-writer-wins.
type Repository interface {
	// Get returns the account's control record or ErrNotFound.
	Get(ctx context.Context, accountID string) (*ControlRecord, error)

	// Upsert creates or wholesale-replaces the account's control record.
	Upsert(ctx context.Context, record *ControlRecord) error
}
