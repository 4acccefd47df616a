// GET    /api/v1/health                      # Liveness probe
// GET    /api/v1/claims                      # Enriched claims for a set of accounts
// POST   /api/v1/sync/{account_id}/start     # Launch a background bulk sync
// GET    /api/v1/sync/{account_id}           # Sync progress and status
// POST   /api/v1/sync/{account_id}/cancel    # Cancel a running sync
// DELETE /api/v1/cache                       # Invalidate cached claims by account

package api

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	claimsAPI "github.com/upreis/reistooq-core-sub019/internal/app/server/api/http/claims"
	healthAPI "github.com/upreis/reistooq-core-sub019/internal/app/server/api/http/health"
	"github.com/upreis/reistooq-core-sub019/internal/app/server/api/http/middleware"
	"github.com/upreis/reistooq-core-sub019/internal/app/server/api/http/middleware/logger"
	syncAPI "github.com/upreis/reistooq-core-sub019/internal/app/server/api/http/sync"
	"github.com/upreis/reistooq-core-sub019/internal/domain/cache"
	"github.com/upreis/reistooq-core-sub019/internal/domain/claim"
	"github.com/upreis/reistooq-core-sub019/internal/domain/sync"
)

type Handlers struct {
	Health *healthAPI.Handler
	Claims *claimsAPI.Handler
	Sync   *syncAPI.Handler
}

// Deps are the domain collaborators the API exposes.
type Deps struct {
	Controller *sync.Controller
	Store      *cache.Store
}

// New builds a *chi.Mux with every operation registered through huma.
func New(deps Deps, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	config := huma.DefaultConfig("ReisTooq Claims API", "1.0.0")
	API := humachi.New(mux, config)

	h := handlers(deps, log)
	h.Health.SetupRoutes(API)
	h.Claims.SetupRoutes(API)
	h.Sync.SetupRoutes(API)

	return mux
}

func handlers(deps Deps, log *slog.Logger) *Handlers {
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(log, middlewares.GetAllAndClear())

	claimService := claim.NewService(
		&controllerReader{controller: deps.Controller},
		claim.NewDeadlineCalculator(claim.DefaultDeadlineConfig()),
		claim.NewFinancialImpactCalculator(),
		log,
	)
	middlewares.Add(loggerMW.Middleware())
	claimsHandler := claimsAPI.NewHandler(claimService, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	syncHandler := syncAPI.NewHandler(deps.Controller, deps.Store, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health: healthHandler,
		Claims: claimsHandler,
		Sync:   syncHandler,
	}
}

// controllerReader adapts the sync controller's point read to the claim
// service without coupling the claim package to sync types.
type controllerReader struct {
	controller *sync.Controller
}

func (r *controllerReader) GetClaims(ctx context.Context, accountIDs []string, from, to *time.Time) (*claim.ReadResult, error) {
	result, err := r.controller.GetClaims(ctx, accountIDs, from, to)
	if err != nil {
		return nil, err
	}

	return &claim.ReadResult{
		Claims:    result.Claims,
		Source:    string(result.Source),
		FetchedAt: result.FetchedAt,
	}, nil
}
