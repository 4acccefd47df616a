package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"github.com/upreis/reistooq-core-sub019/internal/domain/claim"
)

// Config carries the store's tuning; both values come from the service
// configuration, not from call sites.
type Config struct {
	TTL        time.Duration
	MaxEntries int
}

// DefaultConfig keeps entries for ten minutes and caps the memory tier at
// 128 result sets.
func DefaultConfig() Config {
	return Config{
		TTL:        10 * time.Minute,
		MaxEntries: 128,
	}
}

// Store is the two-tier claims cache: an in-process memory map in front of
// one DurableCache. It is constructed once per process and injected; there
// is no package-level instance.
type Store struct {
	mu      sync.Mutex
	entries map[string]*Entry
	order   []string // insertion order, for FIFO eviction

	durable DurableCache
	cfg     Config
	log     *slog.Logger

	now func() time.Time
}

func NewStore(durable DurableCache, cfg Config, log *slog.Logger) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultConfig().MaxEntries
	}

	return &Store{
		entries: make(map[string]*Entry),
		durable: durable,
		cfg:     cfg,
		log:     log.With("component", "cache_store"),
		now:     time.Now,
	}
}

// Get returns the fresh entry for the key or ErrMiss. The memory tier is
// checked first; a fresh durable hit is promoted into memory on the way out.
// Expired entries are never returned.
func (s *Store) Get(ctx context.Context, key Key) (*Entry, error) {
	canonical := key.Canonical()
	now := s.now()

	s.mu.Lock()
	if entry, ok := s.entries[canonical]; ok {
		if entry.Fresh(now) {
			s.mu.Unlock()
			return entry, nil
		}
		s.removeLocked(canonical)
	}
	s.mu.Unlock()

	entry, err := s.durable.Get(ctx, canonical)
	if err != nil {
		if errors.Is(err, ErrCorruptEntry) {
			// Fail-safe: a corrupt row degrades to a fresh fetch.
			s.log.Warn("discarding corrupt cache entry", "key", canonical)
			return nil, ErrMiss
		}
		if errors.Is(err, ErrMiss) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("durable get: %w", err)
	}

	if !entry.Fresh(now) {
		return nil, ErrMiss
	}

	s.mu.Lock()
	s.insertLocked(canonical, entry)
	s.mu.Unlock()

	return entry, nil
}

// Set replaces the entry for the key in both tiers with freshly computed
// timestamps, then prunes already-expired durable rows as a side effect —
// incremental garbage collection instead of a separate sweep.
func (s *Store) Set(ctx context.Context, key Key, payload []claim.Record) (*Entry, error) {
	now := s.now()
	entry := &Entry{
		Key:       key.Canonical(),
		Accounts:  key.Accounts,
		Payload:   payload,
		CachedAt:  now,
		ExpiresAt: now.Add(s.cfg.TTL),
	}

	s.mu.Lock()
	s.insertLocked(entry.Key, entry)
	s.mu.Unlock()

	if err := s.durable.Set(ctx, entry); err != nil {
		return nil, fmt.Errorf("durable set: %w", err)
	}

	if err := s.durable.PruneExpired(ctx, now); err != nil {
		s.log.Warn("pruning expired entries failed", "error", err)
	}

	return entry, nil
}

// Invalidate removes every entry whose account set intersects the given
// accounts from both tiers, regardless of freshness.
func (s *Store) Invalidate(ctx context.Context, accountIDs []string) error {
	s.mu.Lock()
	for key, entry := range s.entries {
		if entry.Intersects(accountIDs) {
			s.removeLocked(key)
		}
	}
	s.mu.Unlock()

	if err := s.durable.DeleteByAccounts(ctx, accountIDs); err != nil {
		return fmt.Errorf("durable invalidate: %w", err)
	}

	s.log.Debug("cache invalidated", "accounts", accountIDs)
	return nil
}

// TTL exposes the configured freshness window.
func (s *Store) TTL() time.Duration {
	return s.cfg.TTL
}

// insertLocked writes the entry into the memory tier, evicting the oldest
// inserted key on overflow. Freshness already bounds staleness, so FIFO is
// enough here.
func (s *Store) insertLocked(key string, entry *Entry) {
	if _, ok := s.entries[key]; !ok {
		s.order = append(s.order, key)
	}
	s.entries[key] = entry

	for len(s.entries) > s.cfg.MaxEntries && len(s.order) > 0 {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.entries, oldest)
	}
}

func (s *Store) removeLocked(key string) {
	delete(s.entries, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
