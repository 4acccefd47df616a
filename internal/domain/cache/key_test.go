package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKey_Canonical_OrderIndependent(t *testing.T) {
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a    Key
		b    Key
	}{
		{
			name: "permuted accounts",
			a:    NewKey([]string{"acc-2", "acc-1", "acc-3"}, nil, nil),
			b:    NewKey([]string{"acc-3", "acc-1", "acc-2"}, nil, nil),
		},
		{
			name: "duplicates collapse",
			a:    NewKey([]string{"acc-1", "acc-1", "acc-2"}, nil, nil),
			b:    NewKey([]string{"acc-2", "acc-1"}, nil, nil),
		},
		{
			name: "permuted accounts with bounds",
			a:    NewKey([]string{"b", "a"}, &from, &to),
			b:    NewKey([]string{"a", "b"}, &from, &to),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.a.Canonical(), tt.b.Canonical())
		})
	}
}

func TestKey_Canonical_DistinguishesRequests(t *testing.T) {
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	base := NewKey([]string{"acc-1"}, nil, nil)

	assert.NotEqual(t, base.Canonical(), NewKey([]string{"acc-2"}, nil, nil).Canonical())
	assert.NotEqual(t, base.Canonical(), NewKey([]string{"acc-1"}, &from, nil).Canonical())
	assert.NotEqual(t, base.Canonical(), NewKey([]string{"acc-1"}, nil, &from).Canonical())
}

func TestKey_Canonical_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	local := time.Date(2024, 5, 1, 9, 0, 0, 0, loc)
	utc := local.UTC()

	a := NewKey([]string{"acc-1"}, &local, nil)
	b := NewKey([]string{"acc-1"}, &utc, nil)

	assert.Equal(t, a.Canonical(), b.Canonical())
}

func TestKey_Intersects(t *testing.T) {
	k := NewKey([]string{"acc-1", "acc-2"}, nil, nil)

	assert.True(t, k.Intersects([]string{"acc-2"}))
	assert.True(t, k.Intersects([]string{"acc-9", "acc-1"}))
	assert.False(t, k.Intersects([]string{"acc-3"}))
	assert.False(t, k.Intersects(nil))
}

func TestNewKey_DropsEmptyIDs(t *testing.T) {
	k := NewKey([]string{"", "acc-1", ""}, nil, nil)
	assert.Equal(t, []string{"acc-1"}, k.Accounts)
}
