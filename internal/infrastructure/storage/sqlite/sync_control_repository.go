package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/exp/slog"

	syncdomain "github.com/upreis/reistooq-core-sub019/internal/domain/sync"
)

// SyncControlRepository keeps per-account sync control records in a sqlite
// file, creating its schema on open like the cache repository.
type SyncControlRepository struct {
	db  *sql.DB
	log *slog.Logger
}

func NewSyncControlRepository(path string, log *slog.Logger) (*SyncControlRepository, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite sync control: %w", err)
	}

	repo := &SyncControlRepository{
		db:  db,
		log: log.With("component", "sqlite_sync_control_repository"),
	}

	if err := repo.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}

	return repo, nil
}

func (r *SyncControlRepository) initSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS sync_control (
			account_id TEXT PRIMARY KEY,
			status TEXT NOT NULL DEFAULT 'idle',
			progress_current INTEGER NOT NULL DEFAULT 0,
			progress_total INTEGER NOT NULL DEFAULT 0,
			last_sync_date DATETIME,
			total_claims INTEGER NOT NULL DEFAULT 0,
			error_message TEXT,
			updated_at DATETIME NOT NULL
		);
	`)
	return err
}

func (r *SyncControlRepository) Get(ctx context.Context, accountID string) (*syncdomain.ControlRecord, error) {
	const query = `
		SELECT account_id, status, progress_current, progress_total,
		       last_sync_date, total_claims, error_message, updated_at
		FROM sync_control
		WHERE account_id = ?`

	var record syncdomain.ControlRecord
	var lastSync, updatedAt sql.NullString
	var errorMessage sql.NullString

	err := r.db.QueryRowContext(ctx, query, accountID).Scan(
		&record.AccountID,
		&record.Status,
		&record.ProgressCurrent,
		&record.ProgressTotal,
		&lastSync,
		&record.TotalClaims,
		&errorMessage,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, syncdomain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get sync control record: %w", err)
	}

	if lastSync.Valid {
		t, err := time.Parse(time.RFC3339Nano, lastSync.String)
		if err != nil {
			return nil, fmt.Errorf("parse last_sync_date: %w", err)
		}
		record.LastSyncDate = &t
	}
	if updatedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, updatedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}
		record.UpdatedAt = t
	}
	record.ErrorMessage = errorMessage.String

	return &record, nil
}

func (r *SyncControlRepository) Upsert(ctx context.Context, record *syncdomain.ControlRecord) error {
	const query = `
		INSERT INTO sync_control
			(account_id, status, progress_current, progress_total,
			 last_sync_date, total_claims, error_message, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (account_id) DO UPDATE SET
			status = excluded.status,
			progress_current = excluded.progress_current,
			progress_total = excluded.progress_total,
			last_sync_date = excluded.last_sync_date,
			total_claims = excluded.total_claims,
			error_message = excluded.error_message,
			updated_at = excluded.updated_at`

	var lastSync any
	if record.LastSyncDate != nil {
		lastSync = record.LastSyncDate.UTC().Format(time.RFC3339Nano)
	}
	var errorMessage any
	if record.ErrorMessage != "" {
		errorMessage = record.ErrorMessage
	}

	_, err := r.db.ExecContext(ctx, query,
		record.AccountID,
		record.Status,
		record.ProgressCurrent,
		record.ProgressTotal,
		lastSync,
		record.TotalClaims,
		errorMessage,
		record.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert sync control record: %w", err)
	}

	return nil
}

func (r *SyncControlRepository) Close() error {
	return r.db.Close()
}
