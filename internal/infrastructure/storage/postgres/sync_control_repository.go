package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"github.com/upreis/reistooq-core-sub019/internal/domain/sync"
)

// SyncControlRepository persists per-account sync control records in the
// sync_control table, keyed by account id.
type SyncControlRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewSyncControlRepository(pool *pgxpool.Pool, log *slog.Logger) *SyncControlRepository {
	return &SyncControlRepository{
		pool: pool,
		log:  log.With("component", "sync_control_repository"),
	}
}

func (r *SyncControlRepository) Get(ctx context.Context, accountID string) (*sync.ControlRecord, error) {
	const query = `
		SELECT account_id, status, progress_current, progress_total,
		       last_sync_date, total_claims, error_message, updated_at
		FROM sync_control
		WHERE account_id = $1`

	var record sync.ControlRecord
	var lastSync sql.NullTime
	var errorMessage sql.NullString

	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&record.AccountID,
		&record.Status,
		&record.ProgressCurrent,
		&record.ProgressTotal,
		&lastSync,
		&record.TotalClaims,
		&errorMessage,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sync.ErrNotFound
		}
		return nil, fmt.Errorf("get control record: %w", err)
	}

	if lastSync.Valid {
		record.LastSyncDate = &lastSync.Time
	}
	if errorMessage.Valid {
		record.ErrorMessage = errorMessage.String
	}

	return &record, nil
}

func (r *SyncControlRepository) Upsert(ctx context.Context, record *sync.ControlRecord) error {
	const query = `
		INSERT INTO sync_control
			(account_id, status, progress_current, progress_total,
			 last_sync_date, total_claims, error_message, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (account_id) DO UPDATE SET
			status = EXCLUDED.status,
			progress_current = EXCLUDED.progress_current,
			progress_total = EXCLUDED.progress_total,
			last_sync_date = EXCLUDED.last_sync_date,
			total_claims = EXCLUDED.total_claims,
			error_message = EXCLUDED.error_message,
			updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query,
		record.AccountID,
		record.Status,
		record.ProgressCurrent,
		record.ProgressTotal,
		record.LastSyncDate,
		record.TotalClaims,
		nullableString(record.ErrorMessage),
		record.UpdatedAt,
	)
	if err != nil {
		r.log.Error("failed to upsert control record",
			"account_id", record.AccountID, "error", err)
		return fmt.Errorf("upsert control record: %w", err)
	}

	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
