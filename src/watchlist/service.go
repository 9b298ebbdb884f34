package watchlist

import (
	"context"
	"strings"
	"sync"
	"time"

	"stockpulse/src/helpers"
	"stockpulse/src/interfaces"
	"stockpulse/src/logger"
	"stockpulse/src/models"
)

// -----------------------------------------------------------------------------
// Service composes the storage backend and the quote source into the
// watchlist operations the API exposes.
// -----------------------------------------------------------------------------

type Service struct {
	Store       interfaces.IWatchlistStore
	Quotes      interfaces.IQuoteSource
	Logger      *logger.Logger
	Concurrency int
}

// -----------------------------------------------------------------------------

func NewService(cfg *models.MConfig, store interfaces.IWatchlistStore, quotes interfaces.IQuoteSource) *Service {
	concurrency := cfg.Network.ConcurrentRequests
	if concurrency <= 0 {
		concurrency = 1
	}

	return &Service{
		Store:       store,
		Quotes:      quotes,
		Logger:      logger.NewLogger(cfg.LogLevel, "WatchlistService"),
		Concurrency: concurrency,
	}
}

// -----------------------------------------------------------------------------

// List runs a full reconciliation pass: every entry is evaluated against a
// fresh quote, false-to-true latch transitions are persisted, and the
// enriched view is returned in store order (newest first). A failed quote
// fetch degrades only its own entry.
func (s *Service) List(ctx context.Context) ([]models.MEnrichedEntry, error) {
	entries, err := s.Store.ListAll()
	if err != nil {
		return nil, err
	}

	enriched := make([]models.MEnrichedEntry, len(entries))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.Concurrency)

	for i, entry := range entries {
		wg.Add(1)
		go func(idx int, e models.MWatchlistEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			enriched[idx] = s.reconcileOne(ctx, e)
		}(i, entry)
	}

	wg.Wait()
	return enriched, nil
}

// -----------------------------------------------------------------------------

func (s *Service) reconcileOne(ctx context.Context, entry models.MWatchlistEntry) models.MEnrichedEntry {
	quote, err := s.Quotes.GetQuote(ctx, entry.Symbol)
	if err != nil {
		s.Logger.Warning("Error fetching price for %s: %v", entry.Symbol, err)
		quote = nil
	}

	result := Reconcile(entry, quote, time.Now().UTC())

	if result.Transitioned {
		triggered := true
		lastChecked := result.Entry.LastChecked
		if _, err := s.Store.Update(entry.ID, models.MWatchlistUpdate{
			IsAlertTriggered: &triggered,
			LastChecked:      &lastChecked,
		}); err != nil {
			s.Logger.Error("Failed to persist alert transition for %s: %v", entry.Symbol, err)
		} else {
			s.Logger.Info("Alert triggered for %s at %.2f (target %.2f)",
				entry.Symbol, *result.Entry.CurrentPrice, entry.TargetPrice)
		}
	}

	return result.Entry
}

// -----------------------------------------------------------------------------

// Add validates the request, verifies the symbol resolves to a real quote
// upstream, then inserts. The symbol is normalized to uppercase before any
// comparison so duplicates are caught case-insensitively.
func (s *Service) Add(ctx context.Context, symbol string, targetPrice float64) (*models.MWatchlistEntry, error) {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	if normalized == "" {
		return nil, helpers.NewValidationError("symbol and target price are required")
	}
	if targetPrice <= 0 {
		return nil, helpers.NewValidationError("target price must be greater than 0")
	}

	if _, err := s.Quotes.GetQuote(ctx, normalized); err != nil {
		if helpers.IsRateLimit(err) {
			return nil, err
		}
		if helpers.IsValidation(err) || helpers.IsNotFound(err) {
			return nil, helpers.NewValidationError("invalid stock symbol")
		}
		return nil, helpers.NewValidationError("failed to verify stock symbol")
	}

	entry, err := s.Store.Insert(normalized, targetPrice)
	if err != nil {
		return nil, err
	}

	s.Logger.Info("Added %s to watchlist (target %.2f)", normalized, targetPrice)
	return entry, nil
}

// -----------------------------------------------------------------------------

// Edit updates the target price and resets the trigger latch: changing the
// threshold invalidates the prior trigger judgment. The latch becomes true
// again only on the next reconciliation pass.
func (s *Service) Edit(ctx context.Context, id string, targetPrice float64) (*models.MWatchlistEntry, error) {
	if targetPrice <= 0 {
		return nil, helpers.NewValidationError("target price must be greater than 0")
	}

	untriggered := false
	return s.Store.Update(id, models.MWatchlistUpdate{
		TargetPrice:      &targetPrice,
		IsAlertTriggered: &untriggered,
	})
}

// -----------------------------------------------------------------------------

// Remove deletes the entry.
func (s *Service) Remove(ctx context.Context, id string) error {
	return s.Store.Delete(id)
}

// -----------------------------------------------------------------------------

// ResetAlert forces the latch back to untriggered without touching the
// target price. A reset on an already-untriggered entry is a no-op.
func (s *Service) ResetAlert(ctx context.Context, id string) (*models.MWatchlistEntry, error) {
	untriggered := false
	return s.Store.Update(id, models.MWatchlistUpdate{
		IsAlertTriggered: &untriggered,
	})
}
