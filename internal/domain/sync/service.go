package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"golang.org/x/exp/slog"
	"golang.org/x/sync/singleflight"

	"github.com/upreis/reistooq-core-sub019/internal/domain/cache"
	"github.com/upreis/reistooq-core-sub019/internal/domain/claim"
	"github.com/upreis/reistooq-core-sub019/internal/marketplace"
)

// Source tags where a point read was served from.
type Source string

const (
	SourceCache Source = "cache"
	SourceAPI   Source = "api"
)

// Result of a point read.
type Result struct {
	Claims    []claim.Record
	Source    Source
	FetchedAt time.Time
}

// Config tunes the controller. Values come from service configuration.
type Config struct {
	// MaxSyncAge is the staleness threshold for running control records.
	MaxSyncAge time.Duration
	// PageSize caps one remote fetch.
	PageSize int
	// MaxRetries bounds retry attempts for transient errors.
	MaxRetries int
	// RetryDelay is the linear backoff unit between attempts.
	RetryDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxSyncAge: 15 * time.Minute,
		PageSize:   50,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
	}
}

// Controller decides cache-versus-fetch for point reads and drives bulk
// background synchronizations with observable, resumable progress.
type Controller struct {
	store   *cache.Store
	api     marketplace.ClaimsAPI
	tokens  marketplace.TokenProvider
	control Repository

	group singleflight.Group
	cfg   Config
	log   *slog.Logger

	mu      gosync.Mutex
	running map[string]context.CancelFunc
	wg      gosync.WaitGroup

	now func() time.Time
}

func NewController(store *cache.Store, api marketplace.ClaimsAPI, tokens marketplace.TokenProvider, control Repository, cfg Config, log *slog.Logger) *Controller {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultConfig().PageSize
	}
	if cfg.MaxSyncAge <= 0 {
		cfg.MaxSyncAge = DefaultConfig().MaxSyncAge
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultConfig().RetryDelay
	}

	return &Controller{
		store:   store,
		api:     api,
		tokens:  tokens,
		control: control,
		cfg:     cfg,
		log:     log.With("component", "sync_controller"),
		running: make(map[string]context.CancelFunc),
		now:     time.Now,
	}
}

// GetClaims serves the account set from the cache when fresh, otherwise
// fetches from the marketplace and caches the result. Concurrent callers for
// the same key are coalesced into a single remote fetch.
func (c *Controller) GetClaims(ctx context.Context, accountIDs []string, from, to *time.Time) (*Result, error) {
	key := cache.NewKey(accountIDs, from, to)

	if entry, err := c.store.Get(ctx, key); err == nil {
		return &Result{Claims: entry.Payload, Source: SourceCache, FetchedAt: entry.CachedAt}, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		return nil, err
	}

	v, err, _ := c.group.Do(key.Canonical(), func() (interface{}, error) {
		records, err := c.fetchAccounts(ctx, key.Accounts, marketplace.Query{From: from, To: to})
		if err != nil {
			return nil, err
		}
		return c.store.Set(ctx, key, records)
	})
	if err != nil {
		return nil, err
	}

	entry := v.(*cache.Entry)
	return &Result{Claims: entry.Payload, Source: SourceAPI, FetchedAt: entry.CachedAt}, nil
}

// StartSync launches a background bulk synchronization for the account.
// It rejects with ErrSyncRunning while a non-stale running record exists;
// a stale one (crashed sync) is overwritten instead of trusted.
func (c *Controller) StartSync(ctx context.Context, accountID string) error {
	now := c.now()

	record, err := c.control.Get(ctx, accountID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("read control record: %w", err)
	}
	if record != nil && record.Status == StatusRunning && !record.Stale(now, c.cfg.MaxSyncAge) {
		return ErrSyncRunning
	}

	seed := &ControlRecord{
		AccountID: accountID,
		Status:    StatusRunning,
		UpdatedAt: now,
	}
	if record != nil {
		seed.LastSyncDate = record.LastSyncDate
	}
	if err := c.control.Upsert(ctx, seed); err != nil {
		return fmt.Errorf("seed control record: %w", err)
	}

	// The sync outlives the caller's request; only an explicit cancel or
	// process shutdown aborts it.
	syncCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	c.mu.Lock()
	if prev, ok := c.running[accountID]; ok {
		prev()
	}
	c.running[accountID] = cancel
	c.mu.Unlock()

	c.wg.Add(1)
	go c.runSync(syncCtx, accountID, seed)

	c.log.Info("bulk sync started", "account_id", accountID)
	return nil
}

// Status returns the account's control record. A running record past the
// staleness threshold is presented as an error so no reader trusts a
// crashed sync indefinitely.
func (c *Controller) Status(ctx context.Context, accountID string) (*ControlRecord, error) {
	record, err := c.control.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if record.Stale(c.now(), c.cfg.MaxSyncAge) {
		healed := *record
		healed.Status = StatusError
		healed.ErrorMessage = "sync timed out"
		c.log.Warn("stale running sync reported as failed",
			"account_id", accountID, "updated_at", record.UpdatedAt)
		return &healed, nil
	}

	return record, nil
}

// CancelSync aborts the account's in-process sync. The control record is
// finalized by the sync goroutine, never left running.
func (c *Controller) CancelSync(accountID string) error {
	c.mu.Lock()
	cancel, ok := c.running[accountID]
	c.mu.Unlock()

	if !ok {
		return ErrNotRunning
	}
	cancel()
	return nil
}

// Shutdown cancels every in-process sync and waits for their control
// records to be finalized.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	for _, cancel := range c.running {
		cancel()
	}
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Controller) runSync(ctx context.Context, accountID string, record *ControlRecord) {
	defer c.wg.Done()
	defer func() {
		c.mu.Lock()
		delete(c.running, accountID)
		c.mu.Unlock()
	}()

	key := cache.NewKey([]string{accountID}, nil, nil)
	var fetched []claim.Record
	offset := 0

	for {
		if ctx.Err() != nil {
			c.finalize(record, StatusError, "sync canceled")
			return
		}

		page, err := c.fetchPage(ctx, accountID, marketplace.Query{}, offset)
		if err != nil {
			if ctx.Err() != nil {
				c.finalize(record, StatusError, "sync canceled")
				return
			}
			c.finalize(record, StatusError, err.Error())
			return
		}

		fetched = append(fetched, page.Records...)
		offset += len(page.Records)

		// Partial results are written through immediately so a mid-sync
		// failure still leaves usable data behind.
		if _, err := c.store.Set(ctx, key, fetched); err != nil {
			c.log.Warn("incremental cache write failed",
				"account_id", accountID, "error", err)
		}

		record.ProgressCurrent = len(fetched)
		record.ProgressTotal = page.Total
		record.UpdatedAt = c.now()
		if err := c.control.Upsert(ctx, record); err != nil {
			c.log.Warn("progress update failed",
				"account_id", accountID, "error", err)
		}

		if len(page.Records) == 0 || offset >= page.Total {
			break
		}
	}

	record.TotalClaims = len(fetched)
	now := c.now()
	record.LastSyncDate = &now
	c.finalize(record, StatusCompleted, "")

	c.log.Info("bulk sync completed",
		"account_id", accountID, "total_claims", len(fetched))
}

func (c *Controller) finalize(record *ControlRecord, status Status, message string) {
	record.Status = status
	record.ErrorMessage = message
	record.UpdatedAt = c.now()

	// Finalization must not depend on a caller context that may be gone.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.control.Upsert(ctx, record); err != nil {
		c.log.Error("failed to finalize control record",
			"account_id", record.AccountID, "status", status, "error", err)
	}
}

func (c *Controller) fetchAccounts(ctx context.Context, accountIDs []string, q marketplace.Query) ([]claim.Record, error) {
	var merged []claim.Record
	for _, accountID := range accountIDs {
		records, err := c.fetchAccount(ctx, accountID, q)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", accountID, err)
		}
		merged = append(merged, records...)
	}
	return merged, nil
}

func (c *Controller) fetchAccount(ctx context.Context, accountID string, q marketplace.Query) ([]claim.Record, error) {
	var records []claim.Record
	offset := 0

	for {
		page, err := c.fetchPage(ctx, accountID, q, offset)
		if err != nil {
			return nil, err
		}

		records = append(records, page.Records...)
		offset += len(page.Records)

		if len(page.Records) == 0 || offset >= page.Total {
			return records, nil
		}
	}
}

// fetchPage resolves a credential and fetches one page. An expired
// credential triggers exactly one refresh-and-retry; transient errors are
// retried with linear backoff up to the configured attempt budget.
func (c *Controller) fetchPage(ctx context.Context, accountID string, q marketplace.Query, offset int) (marketplace.Page, error) {
	cred, err := c.tokens.Resolve(ctx, accountID)
	refreshed := false
	if errors.Is(err, marketplace.ErrTokenExpired) {
		cred, err = c.tokens.Refresh(ctx, accountID)
		refreshed = true
	}
	if err != nil {
		return marketplace.Page{}, fmt.Errorf("resolve credential: %w", err)
	}

	attempt := 0
	for {
		page, err := c.api.FetchPage(ctx, cred, accountID, q, offset, c.cfg.PageSize)
		if err == nil {
			return page, nil
		}

		expired := errors.Is(err, marketplace.ErrTokenExpired) ||
			errors.Is(err, marketplace.ErrUnauthorized)
		if expired && !refreshed {
			refreshed = true
			cred, err = c.tokens.Refresh(ctx, accountID)
			if err != nil {
				return marketplace.Page{}, fmt.Errorf("refresh credential: %w", err)
			}
			continue
		}

		if marketplace.Transient(err) && attempt < c.cfg.MaxRetries {
			attempt++
			c.log.Debug("transient fetch error, retrying",
				"account_id", accountID, "attempt", attempt, "error", err)
			select {
			case <-ctx.Done():
				return marketplace.Page{}, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.cfg.RetryDelay):
			}
			continue
		}

		return marketplace.Page{}, err
	}
}
