package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/exp/slog"

	"github.com/upreis/reistooq-core-sub019/internal/app/server/api"
	"github.com/upreis/reistooq-core-sub019/internal/app/server/config"
	"github.com/upreis/reistooq-core-sub019/internal/domain/cache"
	syncdomain "github.com/upreis/reistooq-core-sub019/internal/domain/sync"
	"github.com/upreis/reistooq-core-sub019/internal/infrastructure/storage/postgres"
	"github.com/upreis/reistooq-core-sub019/internal/infrastructure/storage/sqlite"
	"github.com/upreis/reistooq-core-sub019/internal/marketplace"
	"github.com/upreis/reistooq-core-sub019/internal/scheduler"
	"github.com/upreis/reistooq-core-sub019/internal/utils/logger"
)

func main() {
	conf := config.MustLoad()
	log := logger.New(conf.Env)

	if err := run(conf, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(conf *config.Config, log *slog.Logger) error {
	durable, control, cleanup, err := buildStorage(conf, log)
	if err != nil {
		return err
	}
	defer cleanup()

	store := cache.NewStore(durable, cache.Config{
		TTL:        conf.Cache.TTL,
		MaxEntries: conf.Cache.MaxEntries,
	}, log)

	client := marketplace.NewClient(conf.Marketplace.BaseURL, conf.Marketplace.Timeout, log)
	tokens := marketplace.NewEnvTokenProvider()

	controller := syncdomain.NewController(store, client, tokens, control, syncdomain.Config{
		MaxSyncAge: conf.Sync.MaxSyncAge,
		PageSize:   conf.Sync.PageSize,
		MaxRetries: conf.Sync.MaxRetries,
		RetryDelay: conf.Sync.RetryDelay,
	}, log)
	defer controller.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(controller, scheduler.Config{
		Enabled:  conf.Scheduler.Enabled,
		Interval: conf.Scheduler.Interval,
		Accounts: conf.Scheduler.Accounts,
	}, log)
	go sched.Run(ctx)

	mux := api.New(api.Deps{Controller: controller, Store: store}, log)

	server := &http.Server{
		Addr:    conf.Server.RunAddress,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", "address", conf.Server.RunAddress, "env", conf.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

// buildStorage selects the durable tier: postgres for shared deployments,
// a local sqlite file for single-node ones.
func buildStorage(conf *config.Config, log *slog.Logger) (cache.DurableCache, syncdomain.Repository, func(), error) {
	switch conf.Cache.Backend {
	case config.BackendSQLite:
		cacheRepo, err := sqlite.NewCacheRepository(conf.Cache.SQLitePath, log)
		if err != nil {
			return nil, nil, nil, err
		}
		controlRepo, err := sqlite.NewSyncControlRepository(conf.Cache.SQLitePath, log)
		if err != nil {
			cacheRepo.Close()
			return nil, nil, nil, err
		}
		cleanup := func() {
			controlRepo.Close()
			cacheRepo.Close()
		}
		return cacheRepo, controlRepo, cleanup, nil

	default:
		storage, err := postgres.New(conf)
		if err != nil {
			return nil, nil, nil, err
		}
		cacheRepo := postgres.NewCacheRepository(storage.Pool(), log)
		controlRepo := postgres.NewSyncControlRepository(storage.Pool(), log)
		return cacheRepo, controlRepo, func() { _ = storage.Close() }, nil
	}
}
