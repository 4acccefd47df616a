// Package client implements the CLI-facing application talking to the
// claims server.
package client

import (
	"context"

	"golang.org/x/exp/slog"

	"github.com/upreis/reistooq-core-sub019/internal/app/client/config"
)

type App struct {
	config     *config.Config
	log        *slog.Logger
	httpClient *httpClient
}

func New(cfg *config.Config, log *slog.Logger) *App {
	return &App{
		config:     cfg,
		log:        log,
		httpClient: newHTTPClient(cfg, log),
	}
}

// DefaultAccounts are the accounts used when a command omits --accounts.
func (a *App) DefaultAccounts() []string {
	return a.config.Accounts
}

func (a *App) CheckConnection(ctx context.Context) error {
	return a.httpClient.HealthCheck(ctx)
}

func (a *App) ListClaims(ctx context.Context, filter ListFilter) (*ClaimList, error) {
	if len(filter.Accounts) == 0 {
		filter.Accounts = a.config.Accounts
	}
	return a.httpClient.ListClaims(ctx, filter)
}

func (a *App) StartSync(ctx context.Context, accountID string) (*SyncStatus, error) {
	return a.httpClient.StartSync(ctx, accountID)
}

func (a *App) SyncStatus(ctx context.Context, accountID string) (*SyncStatus, error) {
	return a.httpClient.SyncStatus(ctx, accountID)
}

func (a *App) CancelSync(ctx context.Context, accountID string) (*SyncStatus, error) {
	return a.httpClient.CancelSync(ctx, accountID)
}

func (a *App) InvalidateCache(ctx context.Context, accountIDs []string) (*InvalidateResult, error) {
	return a.httpClient.InvalidateCache(ctx, accountIDs)
}

type ctxKey struct{}

// WithApp stores the app in a context for cobra subcommands.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, ctxKey{}, app)
}

// FromContext retrieves the app placed by WithApp, or nil.
func FromContext(ctx context.Context) *App {
	app, _ := ctx.Value(ctxKey{}).(*App)
	return app
}
