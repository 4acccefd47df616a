package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"github.com/upreis/reistooq-core-sub019/internal/domain/cache"
	"github.com/upreis/reistooq-core-sub019/internal/domain/claim"
)

// CacheRepository is the server-side durable cache tier: one row per
// canonical key in the claims_cache table, expiry kept in an explicit
// column so pruning is a single indexed delete.
type CacheRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewCacheRepository(pool *pgxpool.Pool, log *slog.Logger) *CacheRepository {
	return &CacheRepository{
		pool: pool,
		log:  log.With("component", "pg_cache_repository"),
	}
}

func (r *CacheRepository) Get(ctx context.Context, key string) (*cache.Entry, error) {
	const query = `
		SELECT cache_key, account_ids, payload, cached_at, expires_at
		FROM claims_cache
		WHERE cache_key = $1`

	var entry cache.Entry
	var payload []byte

	err := r.pool.QueryRow(ctx, query, key).Scan(
		&entry.Key, &entry.Accounts, &payload, &entry.CachedAt, &entry.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cache.ErrMiss
		}
		return nil, fmt.Errorf("get cache entry: %w", err)
	}

	if err := json.Unmarshal(payload, &entry.Payload); err != nil {
		// Fail-safe: drop the unreadable row and report it as corrupt so
		// the store degrades to a fresh fetch.
		r.log.Warn("dropping unreadable cache row", "key", key, "error", err)
		if delErr := r.Delete(ctx, key); delErr != nil {
			r.log.Error("failed to drop corrupt cache row", "key", key, "error", delErr)
		}
		return nil, cache.ErrCorruptEntry
	}

	return &entry, nil
}

func (r *CacheRepository) Set(ctx context.Context, entry *cache.Entry) error {
	const query = `
		INSERT INTO claims_cache (cache_key, account_ids, payload, cached_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (cache_key) DO UPDATE SET
			account_ids = EXCLUDED.account_ids,
			payload = EXCLUDED.payload,
			cached_at = EXCLUDED.cached_at,
			expires_at = EXCLUDED.expires_at`

	payload, err := json.Marshal(payloadOrEmpty(entry.Payload))
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	_, err = r.pool.Exec(ctx, query,
		entry.Key, entry.Accounts, payload, entry.CachedAt, entry.ExpiresAt)
	if err != nil {
		return fmt.Errorf("set cache entry: %w", err)
	}
	return nil
}

func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM claims_cache WHERE cache_key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

func (r *CacheRepository) DeleteByAccounts(ctx context.Context, accountIDs []string) error {
	// && is array overlap: any shared account invalidates the row.
	_, err := r.pool.Exec(ctx,
		`DELETE FROM claims_cache WHERE account_ids && $1`, accountIDs)
	if err != nil {
		return fmt.Errorf("delete cache entries by accounts: %w", err)
	}
	return nil
}

func (r *CacheRepository) PruneExpired(ctx context.Context, now time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM claims_cache WHERE expires_at <= $1`, now)
	if err != nil {
		return fmt.Errorf("prune expired cache entries: %w", err)
	}
	if tag.RowsAffected() > 0 {
		r.log.Debug("pruned expired cache rows", "count", tag.RowsAffected())
	}
	return nil
}

func (r *CacheRepository) Close() error { return nil }

func payloadOrEmpty(records []claim.Record) []claim.Record {
	if records == nil {
		return []claim.Record{}
	}
	return records
}
