package cache

import (
	"context"
	"time"
)

// DurableCache is the storage-agnostic contract of the durable tiers. The
// local sqlite file and the server-side postgres table both implement it,
// so the Store (and everything above it) never sees which one is wired in.
type DurableCache interface {
	// Get returns the entry for the key or ErrMiss. A row whose payload
	// fails shape validation must be dropped and reported as
	// ErrCorruptEntry; the store treats that as a miss.
	Get(ctx context.Context, key string) (*Entry, error)

	// Set writes the entry, replacing any previous row for the key.
	Set(ctx context.Context, entry *Entry) error

	// Delete removes the row for the key if present.
	Delete(ctx context.Context, key string) error

	// DeleteByAccounts removes every row whose account set intersects the
	// given accounts, regardless of freshness.
	DeleteByAccounts(ctx context.Context, accountIDs []string) error

	// PruneExpired removes rows whose expiry has passed.
	PruneExpired(ctx context.Context, now time.Time) error

	Close() error
}
