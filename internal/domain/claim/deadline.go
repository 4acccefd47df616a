package claim

import (
	"math"
	"time"
)

// Deadlines are derived per claim for display; they are never persisted as
// the authoritative record.
type Deadlines struct {
	ShipmentDeadline      *time.Time `json:"shipment_deadline,omitempty"`
	SellerReceiveDeadline *time.Time `json:"seller_receive_deadline,omitempty"`
	SellerReviewDeadline  *time.Time `json:"seller_review_deadline,omitempty"`
	ExpirationDate        *time.Time `json:"expiration_date,omitempty"`

	ShipmentHoursLeft *int `json:"shipment_hours_left,omitempty"`
	ReviewHoursLeft   *int `json:"review_hours_left,omitempty"`

	ShipmentCritical bool `json:"shipment_critical"`
	ReviewCritical   bool `json:"review_critical"`
}

// DeadlineConfig carries the fallback rules applied when the marketplace
// does not provide explicit dates. The defaults mirror the marketplace's
// published return flow but have no confirmed source of truth, so they stay
// configurable.
type DeadlineConfig struct {
	ShipmentBusinessDays int           `json:"shipment_business_days"`
	ReceiveCalendarDays  int           `json:"receive_calendar_days"`
	ReviewCalendarDays   int           `json:"review_calendar_days"`
	CriticalWindow       time.Duration `json:"critical_window"`
}

// DefaultDeadlineConfig returns the fallback constants observed in the
// marketplace flow: 10 business days to ship, +5 calendar days to receive,
// +3 calendar days to review, 48h criticality window.
func DefaultDeadlineConfig() DeadlineConfig {
	return DeadlineConfig{
		ShipmentBusinessDays: 10,
		ReceiveCalendarDays:  5,
		ReviewCalendarDays:   3,
		CriticalWindow:       48 * time.Hour,
	}
}

// DeadlineCalculator derives process deadlines and urgency flags from a
// claim's raw timestamps plus the shipment lead-time estimate.
type DeadlineCalculator struct {
	cfg DeadlineConfig
}

func NewDeadlineCalculator(cfg DeadlineConfig) *DeadlineCalculator {
	if cfg.ShipmentBusinessDays <= 0 {
		cfg = DefaultDeadlineConfig()
	}
	return &DeadlineCalculator{cfg: cfg}
}

// Calculate applies the deadline rules in order, each with its fallback.
// requiresReview marks flows with an intermediate seller check; it only
// matters when no review action with a due date exists.
func (c *DeadlineCalculator) Calculate(rec *Record, lead *LeadTime, actions []PlayerAction, requiresReview bool, now time.Time) Deadlines {
	var d Deadlines

	// Shipment deadline: the lead-time scheduled limit wins; otherwise
	// creation date plus the business-day fallback.
	var shipment time.Time
	if lead != nil && lead.EstimatedLimit != nil {
		shipment = *lead.EstimatedLimit
	} else {
		shipment = addBusinessDays(rec.CreatedAt, c.cfg.ShipmentBusinessDays)
	}
	d.ShipmentDeadline = &shipment

	// Seller receive deadline: shipment deadline plus the shipping-day
	// count when the estimate carries one, else the calendar fallback.
	var receive time.Time
	if lead != nil && lead.ShippingDays != nil {
		receive = shipment.AddDate(0, 0, *lead.ShippingDays)
	} else {
		receive = shipment.AddDate(0, 0, c.cfg.ReceiveCalendarDays)
	}
	d.SellerReceiveDeadline = &receive

	// Seller review deadline: the respondent's review action due date if
	// the marketplace set one; otherwise only flows with an intermediate
	// check get the calendar fallback.
	if due := reviewDueDate(actions); due != nil {
		d.SellerReviewDeadline = due
	} else if requiresReview {
		review := receive.AddDate(0, 0, c.cfg.ReviewCalendarDays)
		d.SellerReviewDeadline = &review
	}

	d.ShipmentHoursLeft = hoursLeft(d.ShipmentDeadline, now)
	d.ReviewHoursLeft = hoursLeft(d.SellerReviewDeadline, now)

	d.ShipmentCritical = c.critical(d.ShipmentHoursLeft)
	d.ReviewCritical = c.critical(d.ReviewHoursLeft)

	return d
}

// critical is true only for a strictly positive remainder inside the window.
// Zero or negative hours mean "already due", which the UI colors differently
// from "urgent".
func (c *DeadlineCalculator) critical(hours *int) bool {
	if hours == nil {
		return false
	}
	window := int(c.cfg.CriticalWindow.Hours())
	return *hours > 0 && *hours <= window
}

func reviewDueDate(actions []PlayerAction) *time.Time {
	for _, a := range actions {
		if a.Role == RoleRespondent && a.Type == ActionReview && a.DueDate != nil {
			return a.DueDate
		}
	}
	return nil
}

func hoursLeft(deadline *time.Time, now time.Time) *int {
	if deadline == nil {
		return nil
	}
	h := int(math.Floor(deadline.Sub(now).Hours()))
	return &h
}

// addBusinessDays walks forward one calendar day at a time, counting only
// weekdays. The display layer depends on this exact weekend-skipping walk,
// so no closed-form shortcut here.
func addBusinessDays(from time.Time, days int) time.Time {
	t := from
	for counted := 0; counted < days; {
		t = t.AddDate(0, 0, 1)
		if t.Weekday() != time.Saturday && t.Weekday() != time.Sunday {
			counted++
		}
	}
	return t
}
