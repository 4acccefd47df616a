package sync

import "errors"

var (
	// ErrSyncRunning rejects a bulk sync requested while a non-stale one
	// is already running for the account.
	ErrSyncRunning = errors.New("sync already running for account")

	// ErrNotRunning is returned when cancelling an account with no active
	// sync in this process.
	ErrNotRunning = errors.New("no sync running for account")

	// ErrNotFound means no control record exists for the account yet.
	ErrNotFound = errors.New("sync control record not found")
)
