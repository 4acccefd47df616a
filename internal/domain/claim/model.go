package claim

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Record is a snapshot of a marketplace claim/return/order as fetched from
// the remote API. Once cached it is treated as read-only; refreshes replace
// the whole record.
type Record struct {
	ClaimID    string `json:"claim_id"`
	OrderID    string `json:"order_id"`
	ReturnID   string `json:"return_id,omitempty"`
	ShipmentID string `json:"shipment_id,omitempty"`
	AccountID  string `json:"account_id"`

	Status     string `json:"status"`
	Stage      string `json:"stage"`
	ReasonCode string `json:"reason_code"`

	TotalAmount  decimal.Decimal `json:"total_amount"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	Currency     string          `json:"currency"`

	Buyer string `json:"buyer"`

	// Detail carries marketplace-specific fields that are not normalized
	// into the typed columns above.
	Detail json.RawMessage `json:"detail,omitempty"`

	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// LeadTime is the marketplace shipping estimate attached to a claim's
// shipment. Any field may be absent.
type LeadTime struct {
	EstimatedLimit *time.Time `json:"estimated_limit,omitempty"`
	ShippingDays   *int       `json:"shipping_days,omitempty"`
	HandlingDays   *int       `json:"handling_days,omitempty"`
}

// PlayerAction is a pending action assigned to one of the claim's parties,
// carrying the marketplace's due date for it.
type PlayerAction struct {
	Role    string     `json:"role"` // complainant, respondent
	Type    string     `json:"type"` // review, send_evidence, ...
	DueDate *time.Time `json:"due_date,omitempty"`
}

// Payment is the nested payment sub-record used by the financial
// impact calculation. Absent amounts default to zero.
type Payment struct {
	ProductPrice  *decimal.Decimal `json:"product_price,omitempty"`
	TotalRefunded *decimal.Decimal `json:"total_refunded,omitempty"`
	SaleFee       *decimal.Decimal `json:"sale_fee,omitempty"`
}

// Shipment holds the logistics costs tied to a claim: the original outbound
// shipment and, when the buyer sent the item back, the return leg.
type Shipment struct {
	OriginalCost *decimal.Decimal `json:"original_cost,omitempty"`
	ReturnCost   *decimal.Decimal `json:"return_cost,omitempty"`
}

const (
	RoleRespondent  = "respondent"
	RoleComplainant = "complainant"

	ActionReview = "review"
)
