package claim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestAddBusinessDays(t *testing.T) {
	tests := []struct {
		name     string
		from     time.Time
		days     int
		expected time.Time
	}{
		{
			name:     "friday plus one skips the weekend",
			from:     date(2024, time.March, 1), // Friday
			days:     1,
			expected: date(2024, time.March, 4), // Monday
		},
		{
			name:     "monday plus one is tuesday",
			from:     date(2024, time.March, 4),
			days:     1,
			expected: date(2024, time.March, 5),
		},
		{
			name:     "ten business days across two weekends",
			from:     date(2024, time.March, 1), // Friday
			days:     10,
			expected: date(2024, time.March, 15),
		},
		{
			name:     "start on saturday counts from monday",
			from:     date(2024, time.March, 2), // Saturday
			days:     1,
			expected: date(2024, time.March, 4),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := addBusinessDays(tt.from, tt.days)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDeadlineCalculator_Criticality(t *testing.T) {
	calc := NewDeadlineCalculator(DefaultDeadlineConfig())

	tests := []struct {
		name     string
		hours    int
		critical bool
	}{
		{name: "exactly 48 hours left is critical", hours: 48, critical: true},
		{name: "one hour left is critical", hours: 1, critical: true},
		{name: "zero hours left is already due, not critical", hours: 0, critical: false},
		{name: "negative hours is overdue, not critical", hours: -1, critical: false},
		{name: "49 hours is outside the window", hours: 49, critical: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := tt.hours
			assert.Equal(t, tt.critical, calc.critical(&h))
		})
	}

	assert.False(t, calc.critical(nil), "absent deadline is never critical")
}

func TestDeadlineCalculator_Calculate_LeadTimePreferred(t *testing.T) {
	calc := NewDeadlineCalculator(DefaultDeadlineConfig())
	now := date(2024, time.June, 3)

	limit := date(2024, time.June, 10)
	shippingDays := 4
	lead := &LeadTime{EstimatedLimit: &limit, ShippingDays: &shippingDays}

	rec := &Record{ClaimID: "c1", CreatedAt: now}
	d := calc.Calculate(rec, lead, nil, false, now)

	require.NotNil(t, d.ShipmentDeadline)
	assert.Equal(t, limit, *d.ShipmentDeadline)

	require.NotNil(t, d.SellerReceiveDeadline)
	assert.Equal(t, limit.AddDate(0, 0, 4), *d.SellerReceiveDeadline)

	assert.Nil(t, d.SellerReviewDeadline, "no review action and no intermediate check")
	assert.Nil(t, d.ReviewHoursLeft)
}

func TestDeadlineCalculator_Calculate_Fallbacks(t *testing.T) {
	calc := NewDeadlineCalculator(DefaultDeadlineConfig())
	created := date(2024, time.March, 1) // Friday
	now := created

	rec := &Record{ClaimID: "c1", CreatedAt: created}
	d := calc.Calculate(rec, nil, nil, true, now)

	require.NotNil(t, d.ShipmentDeadline)
	assert.Equal(t, date(2024, time.March, 15), *d.ShipmentDeadline,
		"creation + 10 business days")

	require.NotNil(t, d.SellerReceiveDeadline)
	assert.Equal(t, date(2024, time.March, 20), *d.SellerReceiveDeadline,
		"shipment deadline + 5 calendar days")

	require.NotNil(t, d.SellerReviewDeadline)
	assert.Equal(t, date(2024, time.March, 23), *d.SellerReviewDeadline,
		"receive deadline + 3 calendar days for flows with an intermediate check")
}

func TestDeadlineCalculator_Calculate_ReviewActionWins(t *testing.T) {
	calc := NewDeadlineCalculator(DefaultDeadlineConfig())
	now := date(2024, time.June, 3)

	due := date(2024, time.June, 20)
	actions := []PlayerAction{
		{Role: RoleComplainant, Type: ActionReview, DueDate: &now},
		{Role: RoleRespondent, Type: "send_evidence", DueDate: &now},
		{Role: RoleRespondent, Type: ActionReview, DueDate: &due},
	}

	rec := &Record{ClaimID: "c1", CreatedAt: now}
	d := calc.Calculate(rec, nil, actions, false, now)

	require.NotNil(t, d.SellerReviewDeadline)
	assert.Equal(t, due, *d.SellerReviewDeadline)
}

func TestDeadlineCalculator_HoursLeft(t *testing.T) {
	calc := NewDeadlineCalculator(DefaultDeadlineConfig())
	now := date(2024, time.June, 3)

	limit := now.Add(36 * time.Hour)
	rec := &Record{ClaimID: "c1", CreatedAt: now}
	d := calc.Calculate(rec, &LeadTime{EstimatedLimit: &limit}, nil, false, now)

	require.NotNil(t, d.ShipmentHoursLeft)
	assert.Equal(t, 36, *d.ShipmentHoursLeft)
	assert.True(t, d.ShipmentCritical)

	// Partial hours floor toward the earlier full hour.
	limit2 := now.Add(90 * time.Minute)
	d = calc.Calculate(rec, &LeadTime{EstimatedLimit: &limit2}, nil, false, now)
	require.NotNil(t, d.ShipmentHoursLeft)
	assert.Equal(t, 1, *d.ShipmentHoursLeft)
}
