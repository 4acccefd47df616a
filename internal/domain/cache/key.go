package cache

import (
	"sort"
	"strings"
	"time"
)

// Key is the canonical identity of a cached result set: the sorted account
// set plus the optional date-range bounds. Two logically equal requests
// canonicalize to the same key regardless of input order.
type Key struct {
	Accounts []string
	From     *time.Time
	To       *time.Time
}

// NewKey sorts and deduplicates the account set. The input slice is not
// modified.
func NewKey(accountIDs []string, from, to *time.Time) Key {
	accounts := make([]string, 0, len(accountIDs))
	seen := make(map[string]struct{}, len(accountIDs))
	for _, id := range accountIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		accounts = append(accounts, id)
	}
	sort.Strings(accounts)

	return Key{Accounts: accounts, From: from, To: to}
}

// Canonical serializes the key for storage. The format is stable; it is the
// primary key of the durable tiers.
func (k Key) Canonical() string {
	var b strings.Builder
	b.WriteString(strings.Join(k.Accounts, ","))
	b.WriteByte('|')
	b.WriteString(formatBound(k.From))
	b.WriteByte('|')
	b.WriteString(formatBound(k.To))
	return b.String()
}

// Intersects reports whether the key's account set shares any account with
// the given set. Used by invalidation.
func (k Key) Intersects(accountIDs []string) bool {
	for _, id := range accountIDs {
		for _, own := range k.Accounts {
			if id == own {
				return true
			}
		}
	}
	return false
}

func formatBound(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
