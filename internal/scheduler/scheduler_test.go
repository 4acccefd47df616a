package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"

	syncdomain "github.com/upreis/reistooq-core-sub019/internal/domain/sync"
)

type fakeStarter struct {
	calls atomic.Int64
	err   error
}

func (f *fakeStarter) StartSync(_ context.Context, _ string) error {
	f.calls.Add(1)
	return f.err
}

func TestScheduler_TriggersEveryAccount(t *testing.T) {
	starter := &fakeStarter{}
	s := New(starter, Config{
		Enabled:  true,
		Interval: 10 * time.Millisecond,
		Accounts: []string{"acc-1", "acc-2"},
	}, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return starter.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestScheduler_ToleratesRunningSync(t *testing.T) {
	starter := &fakeStarter{err: syncdomain.ErrSyncRunning}
	s := New(starter, Config{
		Enabled:  true,
		Interval: 10 * time.Millisecond,
		Accounts: []string{"acc-1"},
	}, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	// A round already in flight must not crash or stop the loop.
	assert.Eventually(t, func() bool {
		return starter.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestScheduler_DisabledReturnsImmediately(t *testing.T) {
	starter := &fakeStarter{}
	s := New(starter, Config{Enabled: false, Interval: time.Millisecond, Accounts: []string{"acc-1"}}, slog.Default())

	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return for disabled scheduler")
	}
	assert.Zero(t, starter.calls.Load())
}
