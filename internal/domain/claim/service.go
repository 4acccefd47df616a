package claim

import (
	"context"
	"time"

	"golang.org/x/exp/slog"
)

// Reader is the slice of the sync controller the claims service consumes:
// cached-or-fetched raw records for an account set.
type Reader interface {
	GetClaims(ctx context.Context, accountIDs []string, from, to *time.Time) (*ReadResult, error)
}

// ReadResult mirrors the controller's point-read result without importing
// the sync package; consumers only ever see records plus provenance.
type ReadResult struct {
	Claims    []Record
	Source    string
	FetchedAt time.Time
}

// Enriched is one claim with its derived, display-ready values attached.
type Enriched struct {
	Record     Record             `json:"record"`
	Deadlines  Deadlines          `json:"deadlines"`
	Financials FinancialBreakdown `json:"financials"`
}

// ListResult is the display-ready answer for an account set.
type ListResult struct {
	Claims    []Enriched `json:"claims"`
	Source    string     `json:"source"`
	FetchedAt time.Time  `json:"fetched_at"`
}

// Servicer lists claims enriched with deadlines and financial breakdowns.
type Servicer interface {
	List(ctx context.Context, accountIDs []string, from, to *time.Time) (*ListResult, error)
}

// Service feeds cached raw records through the two calculators. It holds no
// state beyond its collaborators; derived values are recomputed per read and
// never persisted as authoritative.
type Service struct {
	reader    Reader
	deadlines *DeadlineCalculator
	finance   *FinancialImpactCalculator
	log       *slog.Logger

	now func() time.Time
}

func NewService(reader Reader, deadlines *DeadlineCalculator, finance *FinancialImpactCalculator, log *slog.Logger) *Service {
	return &Service{
		reader:    reader,
		deadlines: deadlines,
		finance:   finance,
		log:       log.With("component", "claim_service"),
		now:       time.Now,
	}
}

func (s *Service) List(ctx context.Context, accountIDs []string, from, to *time.Time) (*ListResult, error) {
	result, err := s.reader.GetClaims(ctx, accountIDs, from, to)
	if err != nil {
		return nil, err
	}

	now := s.now()
	enriched := make([]Enriched, 0, len(result.Claims))
	for _, rec := range result.Claims {
		detail := ParseDetail(rec.Detail)
		enriched = append(enriched, Enriched{
			Record:     rec,
			Deadlines:  s.deadlines.Calculate(&rec, detail.LeadTime, detail.PlayerActions, detail.RequiresReview, now),
			Financials: s.finance.Calculate(detail.Payment, detail.Shipment),
		})
	}

	s.log.Debug("claims listed",
		"accounts", accountIDs, "count", len(enriched), "source", result.Source)

	return &ListResult{
		Claims:    enriched,
		Source:    result.Source,
		FetchedAt: result.FetchedAt,
	}, nil
}
