package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/exp/slog"

	"github.com/upreis/reistooq-core-sub019/internal/domain/cache"
)

// CacheRepository is the local durable cache tier backed by a sqlite file.
// It creates its own schema on open so a fresh deployment needs no setup.
type CacheRepository struct {
	db  *sql.DB
	log *slog.Logger
}

func NewCacheRepository(path string, log *slog.Logger) (*CacheRepository, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache: %w", err)
	}

	repo := &CacheRepository{
		db:  db,
		log: log.With("component", "sqlite_cache_repository"),
	}

	if err := repo.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}

	return repo, nil
}

func (r *CacheRepository) initSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS claims_cache (
			cache_key TEXT PRIMARY KEY,
			account_ids TEXT NOT NULL,
			payload BLOB NOT NULL,
			cached_at DATETIME NOT NULL,
			expires_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_claims_cache_expires ON claims_cache(expires_at);
	`)
	return err
}

func (r *CacheRepository) Get(ctx context.Context, key string) (*cache.Entry, error) {
	const query = `
		SELECT cache_key, account_ids, payload, cached_at, expires_at
		FROM claims_cache
		WHERE cache_key = ?`

	var entry cache.Entry
	var accounts string
	var payload []byte
	var cachedAt, expiresAt string

	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&entry.Key, &accounts, &payload, &cachedAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cache.ErrMiss
		}
		return nil, fmt.Errorf("get cache entry: %w", err)
	}

	entry.Accounts = splitAccounts(accounts)
	entry.CachedAt, err = time.Parse(time.RFC3339Nano, cachedAt)
	if err == nil {
		entry.ExpiresAt, err = time.Parse(time.RFC3339Nano, expiresAt)
	}
	if err == nil {
		err = json.Unmarshal(payload, &entry.Payload)
	}
	if err != nil {
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
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			account_ids = excluded.account_ids,
			payload = excluded.payload,
			cached_at = excluded.cached_at,
			expires_at = excluded.expires_at`

	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		entry.Key,
		joinAccounts(entry.Accounts),
		payload,
		entry.CachedAt.UTC().Format(time.RFC3339Nano),
		entry.ExpiresAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("set cache entry: %w", err)
	}
	return nil
}

func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM claims_cache WHERE cache_key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// DeleteByAccounts loads the key/account pairs and matches in Go; sqlite has
// no array type and entries are few enough for the scan not to matter.
func (r *CacheRepository) DeleteByAccounts(ctx context.Context, accountIDs []string) error {
	rows, err := r.db.QueryContext(ctx, `SELECT cache_key, account_ids FROM claims_cache`)
	if err != nil {
		return fmt.Errorf("scan cache keys: %w", err)
	}
	defer rows.Close()

	var doomed []string
	for rows.Next() {
		var key, accounts string
		if err := rows.Scan(&key, &accounts); err != nil {
			return fmt.Errorf("scan cache row: %w", err)
		}
		k := cache.Key{Accounts: splitAccounts(accounts)}
		if k.Intersects(accountIDs) {
			doomed = append(doomed, key)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate cache rows: %w", err)
	}

	for _, key := range doomed {
		if err := r.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (r *CacheRepository) PruneExpired(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM claims_cache WHERE expires_at <= ?`,
		now.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("prune expired cache entries: %w", err)
	}
	return nil
}

func (r *CacheRepository) Close() error {
	return r.db.Close()
}

func joinAccounts(accounts []string) string {
	return strings.Join(accounts, ",")
}

func splitAccounts(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}
