// Package sync exposes sync control and cache invalidation over HTTP.
package sync

import (
	"context"
	"errors"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	syncdomain "github.com/upreis/reistooq-core-sub019/internal/domain/sync"
)

// Controller is the slice of the sync controller the handler drives.
type Controller interface {
	StartSync(ctx context.Context, accountID string) error
	Status(ctx context.Context, accountID string) (*syncdomain.ControlRecord, error)
	CancelSync(accountID string) error
}

// Invalidator drops cache entries touching a set of accounts.
type Invalidator interface {
	Invalidate(ctx context.Context, accountIDs []string) error
}

type Handler struct {
	controller Controller
	cache      Invalidator
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(controller Controller, cache Invalidator, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		controller: controller,
		cache:      cache,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.startOp(), h.start)
	huma.Register(api, h.statusOp(), h.status)
	huma.Register(api, h.cancelOp(), h.cancel)
	huma.Register(api, h.invalidateOp(), h.invalidate)
}

func (h *Handler) start(ctx context.Context, input *startInput) (*startOutput, error) {
	if input.AccountID == "" {
		return nil, huma.Error400BadRequest("account_id is required")
	}

	if err := h.controller.StartSync(ctx, input.AccountID); err != nil {
		if errors.Is(err, syncdomain.ErrSyncRunning) {
			return nil, huma.Error409Conflict("sync already running for this account")
		}
		h.log.Error("failed to start sync", "account_id", input.AccountID, "error", err)
		return nil, huma.Error500InternalServerError("failed to start sync")
	}

	record, err := h.controller.Status(ctx, input.AccountID)
	if err != nil {
		h.log.Error("failed to read sync status after start", "account_id", input.AccountID, "error", err)
		return nil, huma.Error500InternalServerError("failed to read sync status")
	}

	return &startOutput{Body: toStatusResponse(record)}, nil
}

func (h *Handler) status(ctx context.Context, input *statusInput) (*statusOutput, error) {
	record, err := h.controller.Status(ctx, input.AccountID)
	if err != nil {
		if errors.Is(err, syncdomain.ErrNotFound) {
			return nil, huma.Error404NotFound("no sync record for this account")
		}
		h.log.Error("failed to read sync status", "account_id", input.AccountID, "error", err)
		return nil, huma.Error500InternalServerError("failed to read sync status")
	}

	return &statusOutput{Body: toStatusResponse(record)}, nil
}

func (h *Handler) cancel(ctx context.Context, input *cancelInput) (*cancelOutput, error) {
	if err := h.controller.CancelSync(input.AccountID); err != nil {
		if errors.Is(err, syncdomain.ErrNotRunning) {
			return nil, huma.Error409Conflict("no sync running for this account")
		}
		h.log.Error("failed to cancel sync", "account_id", input.AccountID, "error", err)
		return nil, huma.Error500InternalServerError("failed to cancel sync")
	}

	record, err := h.controller.Status(ctx, input.AccountID)
	if err != nil {
		h.log.Error("failed to read sync status after cancel", "account_id", input.AccountID, "error", err)
		return nil, huma.Error500InternalServerError("failed to read sync status")
	}

	return &cancelOutput{Body: toStatusResponse(record)}, nil
}

func (h *Handler) invalidate(ctx context.Context, input *invalidateInput) (*invalidateOutput, error) {
	accounts := splitAccountIDs(input.AccountIDs)
	if len(accounts) == 0 {
		return nil, huma.Error400BadRequest("account_ids is required")
	}

	if err := h.cache.Invalidate(ctx, accounts); err != nil {
		h.log.Error("failed to invalidate cache", "accounts", accounts, "error", err)
		return nil, huma.Error500InternalServerError("failed to invalidate cache")
	}

	return &invalidateOutput{
		Body: invalidateResponse{
			Status:   "Ok",
			Accounts: accounts,
		},
	}, nil
}

func toStatusResponse(record *syncdomain.ControlRecord) statusResponse {
	return statusResponse{
		AccountID:       record.AccountID,
		Status:          string(record.Status),
		ProgressCurrent: record.ProgressCurrent,
		ProgressTotal:   record.ProgressTotal,
		LastSyncDate:    record.LastSyncDate,
		TotalClaims:     record.TotalClaims,
		ErrorMessage:    record.ErrorMessage,
		UpdatedAt:       record.UpdatedAt,
	}
}

func splitAccountIDs(raw string) []string {
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
