package sync

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) startOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-start",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/{account_id}/start",
		Summary:     "Start a background bulk synchronization",
		Description: "Launches a background sync for the account. Returns 409 while another sync for the same account is still running.",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) statusOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/{account_id}",
		Summary:     "Get synchronization status",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) cancelOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-cancel",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/{account_id}/cancel",
		Summary:     "Cancel a running synchronization",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) invalidateOp() huma.Operation {
	return huma.Operation{
		OperationID: "cache-invalidate",
		Method:      http.MethodDelete,
		Path:        "/api/v1/cache",
		Summary:     "Invalidate cached claims for accounts",
		Description: "Drops every cache entry whose account set intersects the given accounts, in memory and in durable storage.",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}
