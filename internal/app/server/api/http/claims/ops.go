package claims

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "claims-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/claims",
		Summary:     "List claims with deadlines and financial impact",
		Description: "Returns claims for a set of accounts, served from cache or the marketplace API, enriched with deadline and financial impact calculations.",
		Tags:        []string{"claims"},
		Middlewares: h.middleware,
	}
}
