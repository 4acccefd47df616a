package cache

import "errors"

var (
	// ErrMiss is returned when a key is absent or its entry has expired.
	ErrMiss = errors.New("cache miss")

	// ErrCorruptEntry marks a durable row that failed shape validation.
	// The store absorbs it: the row is dropped and the read degrades to a
	// miss, never to a caller-visible failure.
	ErrCorruptEntry = errors.New("corrupt cache entry")
)
