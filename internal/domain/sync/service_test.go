package sync

import (
	"context"
	gosync "sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"github.com/upreis/reistooq-core-sub019/internal/domain/cache"
	"github.com/upreis/reistooq-core-sub019/internal/domain/claim"
	"github.com/upreis/reistooq-core-sub019/internal/marketplace"
)

// memDurable is a minimal in-memory DurableCache for wiring a real Store
// into controller tests.
type memDurable struct {
	mu   gosync.Mutex
	rows map[string]*cache.Entry
}

func newMemDurable() *memDurable {
	return &memDurable{rows: make(map[string]*cache.Entry)}
}

func (m *memDurable) Get(_ context.Context, key string) (*cache.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.rows[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return entry, nil
}

func (m *memDurable) Set(_ context.Context, entry *cache.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[entry.Key] = entry
	return nil
}

func (m *memDurable) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, key)
	return nil
}

func (m *memDurable) DeleteByAccounts(_ context.Context, accountIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, entry := range m.rows {
		if entry.Intersects(accountIDs) {
			delete(m.rows, key)
		}
	}
	return nil
}

func (m *memDurable) PruneExpired(_ context.Context, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, entry := range m.rows {
		if !entry.Fresh(now) {
			delete(m.rows, key)
		}
	}
	return nil
}

func (m *memDurable) Close() error { return nil }

// memRepository is an in-memory control record store.
type memRepository struct {
	mu      gosync.Mutex
	records map[string]*ControlRecord
}

func newMemRepository() *memRepository {
	return &memRepository{records: make(map[string]*ControlRecord)}
}

func (r *memRepository) Get(_ context.Context, accountID string) (*ControlRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[accountID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (r *memRepository) Upsert(_ context.Context, record *ControlRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *record
	r.records[record.AccountID] = &copied
	return nil
}

// fakeTokens counts resolves and refreshes and can fail the first N
// resolves with an expiry signal.
type fakeTokens struct {
	mu            gosync.Mutex
	resolves      int
	refreshes     int
	resolveErr    error
	expiredOnce   bool
	refreshFailed error
}

func (f *fakeTokens) Resolve(_ context.Context, accountID string) (marketplace.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolves++
	if f.resolveErr != nil {
		return marketplace.Credential{}, f.resolveErr
	}
	if f.expiredOnce {
		f.expiredOnce = false
		return marketplace.Credential{}, marketplace.ErrTokenExpired
	}
	return marketplace.Credential{AccountID: accountID, AccessToken: "tok"}, nil
}

func (f *fakeTokens) Refresh(_ context.Context, accountID string) (marketplace.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	if f.refreshFailed != nil {
		return marketplace.Credential{}, f.refreshFailed
	}
	return marketplace.Credential{AccountID: accountID, AccessToken: "tok-fresh"}, nil
}

// fakeAPI serves canned pages and records call counts; errs are consumed
// before the canned pages start succeeding.
type fakeAPI struct {
	mu    gosync.Mutex
	calls int64
	errs  []error
	pages map[int]marketplace.Page
	total int
	delay time.Duration
	block chan struct{}
}

func (f *fakeAPI) FetchPage(ctx context.Context, _ marketplace.Credential, accountID string, _ marketplace.Query, offset, _ int) (marketplace.Page, error) {
	atomic.AddInt64(&f.calls, 1)

	if f.block != nil {
		select {
		case <-ctx.Done():
			return marketplace.Page{}, ctx.Err()
		case <-f.block:
		}
	}
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return marketplace.Page{}, ctx.Err()
		case <-time.After(f.delay):
		}
	}

	f.mu.Lock()
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		f.mu.Unlock()
		return marketplace.Page{}, err
	}
	page, ok := f.pages[offset]
	f.mu.Unlock()

	if !ok {
		return marketplace.Page{Total: f.total}, nil
	}
	page.Total = f.total
	return page, nil
}

func records(ids ...string) []claim.Record {
	out := make([]claim.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, claim.Record{ClaimID: id, AccountID: "acc-1"})
	}
	return out
}

func testController(api marketplace.ClaimsAPI, tokens marketplace.TokenProvider, repo Repository) *Controller {
	store := cache.NewStore(newMemDurable(), cache.Config{TTL: time.Minute, MaxEntries: 16}, slog.Default())
	cfg := Config{
		MaxSyncAge: time.Minute,
		PageSize:   2,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	}
	return NewController(store, api, tokens, repo, cfg, slog.Default())
}

func TestController_GetClaims_CacheHit(t *testing.T) {
	api := &fakeAPI{total: 1, pages: map[int]marketplace.Page{0: {Records: records("c1")}}}
	ctrl := testController(api, &fakeTokens{}, newMemRepository())
	ctx := context.Background()

	first, err := ctrl.GetClaims(ctx, []string{"acc-1"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceAPI, first.Source)

	second, err := ctrl.GetClaims(ctx, []string{"acc-1"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceCache, second.Source)
	assert.Equal(t, first.Claims, second.Claims)

	assert.EqualValues(t, 1, atomic.LoadInt64(&api.calls),
		"the second read must be served from cache")
}

func TestController_GetClaims_CoalescesConcurrentMisses(t *testing.T) {
	api := &fakeAPI{
		total: 1,
		pages: map[int]marketplace.Page{0: {Records: records("c1")}},
		delay: 50 * time.Millisecond,
	}
	ctrl := testController(api, &fakeTokens{}, newMemRepository())
	ctx := context.Background()

	var wg gosync.WaitGroup
	results := make([]*Result, 2)
	errs := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = ctrl.GetClaims(ctx, []string{"acc-1"}, nil, nil)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.EqualValues(t, 1, atomic.LoadInt64(&api.calls),
		"concurrent identical misses must coalesce into one fetch")
	assert.Equal(t, results[0].Claims, results[1].Claims)
}

func TestController_GetClaims_RefreshesExpiredCredentialOnce(t *testing.T) {
	tokens := &fakeTokens{expiredOnce: true}
	api := &fakeAPI{total: 1, pages: map[int]marketplace.Page{0: {Records: records("c1")}}}
	ctrl := testController(api, tokens, newMemRepository())

	result, err := ctrl.GetClaims(context.Background(), []string{"acc-1"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceAPI, result.Source)
	assert.Equal(t, 1, tokens.refreshes)
}

func TestController_GetClaims_UnauthorizedAfterRefreshIsTerminal(t *testing.T) {
	tokens := &fakeTokens{}
	api := &fakeAPI{
		total: 1,
		errs:  []error{marketplace.ErrUnauthorized, marketplace.ErrUnauthorized},
	}
	ctrl := testController(api, tokens, newMemRepository())

	_, err := ctrl.GetClaims(context.Background(), []string{"acc-1"}, nil, nil)
	assert.ErrorIs(t, err, marketplace.ErrUnauthorized)
	assert.Equal(t, 1, tokens.refreshes, "exactly one refresh before surfacing")
}

func TestController_GetClaims_RetriesTransientErrors(t *testing.T) {
	api := &fakeAPI{
		total: 1,
		errs:  []error{marketplace.ErrUnavailable, marketplace.ErrRateLimited},
		pages: map[int]marketplace.Page{0: {Records: records("c1")}},
	}
	ctrl := testController(api, &fakeTokens{}, newMemRepository())

	result, err := ctrl.GetClaims(context.Background(), []string{"acc-1"}, nil, nil)
	require.NoError(t, err)
	require.Len(t, result.Claims, 1)
}

func TestController_GetClaims_TransientBudgetExhausted(t *testing.T) {
	api := &fakeAPI{
		total: 1,
		errs: []error{
			marketplace.ErrUnavailable,
			marketplace.ErrUnavailable,
			marketplace.ErrUnavailable,
			marketplace.ErrUnavailable,
		},
	}
	ctrl := testController(api, &fakeTokens{}, newMemRepository())

	_, err := ctrl.GetClaims(context.Background(), []string{"acc-1"}, nil, nil)
	assert.ErrorIs(t, err, marketplace.ErrUnavailable)
}

func TestController_StartSync_CompletesWithProgress(t *testing.T) {
	repo := newMemRepository()
	api := &fakeAPI{
		total: 3,
		pages: map[int]marketplace.Page{
			0: {Records: records("c1", "c2")},
			2: {Records: records("c3")},
		},
	}
	ctrl := testController(api, &fakeTokens{}, repo)

	require.NoError(t, ctrl.StartSync(context.Background(), "acc-1"))

	require.Eventually(t, func() bool {
		record, err := repo.Get(context.Background(), "acc-1")
		return err == nil && record.Status == StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	record, err := repo.Get(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, 3, record.TotalClaims)
	assert.Equal(t, 3, record.ProgressCurrent)
	assert.Equal(t, 3, record.ProgressTotal)
	assert.NotNil(t, record.LastSyncDate)
	assert.Empty(t, record.ErrorMessage)

	// Incrementally cached results are readable afterwards.
	result, err := ctrl.GetClaims(context.Background(), []string{"acc-1"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceCache, result.Source)
	assert.Len(t, result.Claims, 3)
}

func TestController_StartSync_RejectsRunningNonStale(t *testing.T) {
	repo := newMemRepository()
	require.NoError(t, repo.Upsert(context.Background(), &ControlRecord{
		AccountID: "acc-1",
		Status:    StatusRunning,
		UpdatedAt: time.Now(),
	}))

	api := &fakeAPI{}
	ctrl := testController(api, &fakeTokens{}, repo)

	err := ctrl.StartSync(context.Background(), "acc-1")
	assert.ErrorIs(t, err, ErrSyncRunning)
	assert.Zero(t, atomic.LoadInt64(&api.calls),
		"a rejected sync must not contact the marketplace")
}

func TestController_StartSync_StaleRunningProceeds(t *testing.T) {
	repo := newMemRepository()
	require.NoError(t, repo.Upsert(context.Background(), &ControlRecord{
		AccountID: "acc-1",
		Status:    StatusRunning,
		UpdatedAt: time.Now().Add(-time.Hour),
	}))

	api := &fakeAPI{total: 1, pages: map[int]marketplace.Page{0: {Records: records("c1")}}}
	ctrl := testController(api, &fakeTokens{}, repo)

	require.NoError(t, ctrl.StartSync(context.Background(), "acc-1"))

	require.Eventually(t, func() bool {
		record, err := repo.Get(context.Background(), "acc-1")
		return err == nil && record.Status == StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestController_StartSync_TerminalErrorFinalizesRecord(t *testing.T) {
	repo := newMemRepository()
	tokens := &fakeTokens{resolveErr: marketplace.ErrNoCredential}
	ctrl := testController(&fakeAPI{}, tokens, repo)

	require.NoError(t, ctrl.StartSync(context.Background(), "acc-1"))

	require.Eventually(t, func() bool {
		record, err := repo.Get(context.Background(), "acc-1")
		return err == nil && record.Status == StatusError
	}, 2*time.Second, 10*time.Millisecond)

	record, err := repo.Get(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Contains(t, record.ErrorMessage, "no credential")
}

func TestController_CancelSync(t *testing.T) {
	repo := newMemRepository()
	api := &fakeAPI{block: make(chan struct{})}
	ctrl := testController(api, &fakeTokens{}, repo)

	require.NoError(t, ctrl.StartSync(context.Background(), "acc-1"))
	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&api.calls) > 0
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, ctrl.CancelSync("acc-1"))

	require.Eventually(t, func() bool {
		record, err := repo.Get(context.Background(), "acc-1")
		return err == nil && record.Status == StatusError
	}, 2*time.Second, 10*time.Millisecond)

	record, err := repo.Get(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "sync canceled", record.ErrorMessage)

	assert.ErrorIs(t, ctrl.CancelSync("acc-1"), ErrNotRunning)
}

func TestController_Status_SelfHealsStaleRunning(t *testing.T) {
	repo := newMemRepository()
	require.NoError(t, repo.Upsert(context.Background(), &ControlRecord{
		AccountID: "acc-1",
		Status:    StatusRunning,
		UpdatedAt: time.Now().Add(-time.Hour),
	}))

	ctrl := testController(&fakeAPI{}, &fakeTokens{}, repo)

	record, err := ctrl.Status(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, StatusError, record.Status)
	assert.Equal(t, "sync timed out", record.ErrorMessage)

	// The persisted record is untouched; only the reader's view heals.
	stored, err := repo.Get(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, stored.Status)
}

func TestControlRecord_Stale(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		record ControlRecord
		stale  bool
	}{
		{
			name:   "recent running record is not stale",
			record: ControlRecord{Status: StatusRunning, UpdatedAt: now.Add(-time.Minute)},
			stale:  false,
		},
		{
			name:   "old running record is stale",
			record: ControlRecord{Status: StatusRunning, UpdatedAt: now.Add(-time.Hour)},
			stale:  true,
		},
		{
			name:   "old completed record is never stale",
			record: ControlRecord{Status: StatusCompleted, UpdatedAt: now.Add(-time.Hour)},
			stale:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.stale, tt.record.Stale(now, 15*time.Minute))
		})
	}
}
