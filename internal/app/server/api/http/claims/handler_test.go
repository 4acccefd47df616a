package claims

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"github.com/upreis/reistooq-core-sub019/internal/domain/claim"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, accountIDs []string, from, to *time.Time) (*claim.ListResult, error) {
	args := m.Called(ctx, accountIDs, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*claim.ListResult), args.Error(1)
}

func TestHandler_list(t *testing.T) {
	fetchedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	result := &claim.ListResult{
		Claims: []claim.Enriched{
			{Record: claim.Record{ClaimID: "c1", AccountID: "acc-1"}},
		},
		Source:    "cache",
		FetchedAt: fetchedAt,
	}

	svc := new(MockService)
	svc.On("List", mock.Anything, []string{"acc-1", "acc-2"}, (*time.Time)(nil), (*time.Time)(nil)).
		Return(result, nil)

	h := NewHandler(svc, slog.Default(), huma.Middlewares{})

	out, err := h.list(context.Background(), &listInput{AccountIDs: "acc-1, acc-2"})

	require.NoError(t, err)
	assert.Equal(t, "cache", out.Body.Source)
	require.Len(t, out.Body.Claims, 1)
	assert.Equal(t, "c1", out.Body.Claims[0].Record.ClaimID)
	svc.AssertExpectations(t)
}

func TestHandler_list_EmptyAccounts(t *testing.T) {
	svc := new(MockService)
	h := NewHandler(svc, slog.Default(), huma.Middlewares{})

	_, err := h.list(context.Background(), &listInput{AccountIDs: " , "})

	require.Error(t, err)
	svc.AssertNotCalled(t, "List")
}

func TestHandler_list_InvalidDate(t *testing.T) {
	svc := new(MockService)
	h := NewHandler(svc, slog.Default(), huma.Middlewares{})

	_, err := h.list(context.Background(), &listInput{
		AccountIDs: "acc-1",
		DateFrom:   "not-a-date",
	})

	require.Error(t, err)
	svc.AssertNotCalled(t, "List")
}

func TestHandler_list_ServiceError(t *testing.T) {
	svc := new(MockService)
	svc.On("List", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("upstream down"))

	h := NewHandler(svc, slog.Default(), huma.Middlewares{})

	_, err := h.list(context.Background(), &listInput{AccountIDs: "acc-1"})

	require.Error(t, err)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected *time.Time
		wantErr  bool
	}{
		{
			name:     "empty is nil",
			raw:      "",
			expected: nil,
		},
		{
			name:     "bare date",
			raw:      "2026-01-15",
			expected: timePtr(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:     "rfc3339",
			raw:      "2026-01-15T10:30:00Z",
			expected: timePtr(time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)),
		},
		{
			name:    "garbage",
			raw:     "15/01/2026",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.expected.Equal(*got))
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }
