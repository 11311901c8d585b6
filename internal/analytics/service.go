package analytics

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/spendwise/internal/store"
)

// Service fetches a user's full record set from the store and computes a
// view on demand. There is no caching: each call queries the store
// independently, and store failures propagate to the caller (there is no
// meaningful fallback for a failed read).
type Service struct {
	txStore store.TransactionStore
	log     zerolog.Logger
}

// NewService creates an analytics service over the given store.
func NewService(txStore store.TransactionStore, log zerolog.Logger) *Service {
	return &Service{txStore: txStore, log: log}
}

// Summarize computes the summary view for one user. The returned message
// distinguishes "no data" from "computed"; both are success.
func (s *Service) Summarize(ctx context.Context, userID string) (Summary, string, error) {
	records, err := s.txStore.FindByOwner(ctx, userID)
	if err != nil {
		return Summary{}, "", fmt.Errorf("Summarize: fetching records: %w", err)
	}

	message := "Financial summary calculated successfully"
	if len(records) == 0 {
		message = "No transactions found - showing empty summary"
	}

	return Summarize(records), message, nil
}

// CategoryBreakdown computes the spending-by-category view for one user.
func (s *Service) CategoryBreakdown(ctx context.Context, userID string) ([]CategoryTotal, error) {
	records, err := s.txStore.FindByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("CategoryBreakdown: fetching records: %w", err)
	}

	return CategoryBreakdown(records), nil
}

// Trends computes the date-bucketed trend view for one user. The period
// is echoed in the returned message.
func (s *Service) Trends(ctx context.Context, userID string, period Period) ([]TrendPoint, string, error) {
	records, err := s.txStore.FindByOwner(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("Trends: fetching records: %w", err)
	}

	message := fmt.Sprintf("Trends calculated successfully (grouped by %s)", period)
	return Trends(records, period), message, nil
}
