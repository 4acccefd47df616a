package cache

import (
	"time"

	"github.com/upreis/reistooq-core-sub019/internal/domain/claim"
)

// Entry is one cached result set. Entries are immutable once written: a
// refresh replaces the entry wholesale, it never patches the payload.
type Entry struct {
	Key      string         `json:"key"`
	Accounts []string       `json:"accounts"`
	Payload  []claim.Record `json:"payload"`

	CachedAt  time.Time `json:"cached_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Fresh reports whether the entry is still within its TTL. An expired entry
// is physically present but logically a miss.
func (e *Entry) Fresh(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// Intersects reports whether the entry belongs to any of the given accounts.
func (e *Entry) Intersects(accountIDs []string) bool {
	return Key{Accounts: e.Accounts}.Intersects(accountIDs)
}
