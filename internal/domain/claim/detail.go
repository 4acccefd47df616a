package claim

import (
	"encoding/json"
)

// Detail is the typed view of the opaque marketplace payload carried on
// each record. Only the fields the calculators consume are lifted out;
// everything else stays raw.
type Detail struct {
	LeadTime       *LeadTime      `json:"lead_time,omitempty"`
	PlayerActions  []PlayerAction `json:"player_actions,omitempty"`
	Payment        *Payment       `json:"payment,omitempty"`
	Shipment       *Shipment      `json:"shipment,omitempty"`
	RequiresReview bool           `json:"requires_review,omitempty"`
}

// ParseDetail decodes the record's opaque payload. A missing or malformed
// payload yields an empty detail — the calculators are null-safe, so a bad
// payload degrades the derived values to their fallbacks instead of failing
// the read.
func ParseDetail(raw json.RawMessage) Detail {
	var d Detail
	if len(raw) == 0 {
		return d
	}
	if err := json.Unmarshal(raw, &d); err != nil {
		return Detail{}
	}
	return d
}
