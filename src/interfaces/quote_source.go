package interfaces

import (
	"context"

	"stockpulse/src/models"
)

// -----------------------------------------------------------------------------
// IQuoteSource interface for fetching quotes from an external provider.
// Implementations perform no retries; callers decide retry policy.
// -----------------------------------------------------------------------------

type IQuoteSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// GetQuote fetches the current quote for one symbol.
	GetQuote(ctx context.Context, symbol string) (*models.MQuoteSnapshot, error)

	// -----------------------------------------------------------------------------

	// GetDailySeries fetches the most recent daily bars in chronological order,
	// capped at limit.
	GetDailySeries(ctx context.Context, symbol string, limit int) ([]models.MDailyBar, error)

	// -----------------------------------------------------------------------------

	// GetIntradaySeries fetches the most recent intraday bars for the given
	// interval ("1min", "5min", ...) in chronological order, capped at limit.
	GetIntradaySeries(ctx context.Context, symbol string, interval string, limit int) ([]models.MIntradayBar, error)
}
