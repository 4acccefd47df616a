// Package claims exposes the enriched claims listing over HTTP.
package claims

import (
	"context"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"github.com/upreis/reistooq-core-sub019/internal/domain/claim"
)

type Handler struct {
	service    claim.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service claim.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
}

func (h *Handler) list(ctx context.Context, input *listInput) (*listOutput, error) {
	accountIDs := splitAccountIDs(input.AccountIDs)
	if len(accountIDs) == 0 {
		return nil, huma.Error400BadRequest("account_ids is required")
	}

	from, err := parseDate(input.DateFrom)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid date_from", err)
	}
	to, err := parseDate(input.DateTo)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid date_to", err)
	}

	result, err := h.service.List(ctx, accountIDs, from, to)
	if err != nil {
		h.log.Error("failed to list claims", "accounts", accountIDs, "error", err)
		return nil, huma.Error502BadGateway("failed to load claims")
	}

	return &listOutput{Body: *result}, nil
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

// parseDate accepts RFC3339 timestamps and bare dates; bare dates are taken
// as UTC midnight.
func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}

	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
