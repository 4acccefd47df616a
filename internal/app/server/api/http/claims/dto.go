package claims

import (
	"github.com/upreis/reistooq-core-sub019/internal/domain/claim"
)

type listInput struct {
	AccountIDs string `query:"account_ids" example:"acc-1,acc-2" doc:"Comma-separated marketplace account IDs" required:"true"`
	DateFrom   string `query:"date_from" example:"2026-01-01" doc:"Lower bound for claim date, RFC3339 or YYYY-MM-DD"`
	DateTo     string `query:"date_to" example:"2026-01-31" doc:"Upper bound for claim date, RFC3339 or YYYY-MM-DD"`
}

type listOutput struct {
	Body claim.ListResult
}
