package watchlist

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"stockpulse/src/helpers"
	"stockpulse/src/interfaces"
	"stockpulse/src/logger"
	"stockpulse/src/models"
	"stockpulse/src/storage"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

// fakeQuoteSource serves canned quotes per symbol and records call counts.
type fakeQuoteSource struct {
	mu     sync.Mutex
	prices map[string]float64
	errs   map[string]error
	calls  map[string]int
}

func newFakeQuoteSource() *fakeQuoteSource {
	return &fakeQuoteSource{
		prices: make(map[string]float64),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (f *fakeQuoteSource) Name() string { return "fake" }

func (f *fakeQuoteSource) GetQuote(ctx context.Context, symbol string) (*models.MQuoteSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[symbol]++
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	price, ok := f.prices[symbol]
	if !ok {
		return nil, helpers.NewNotFoundError("stock not found")
	}
	return &models.MQuoteSnapshot{Symbol: symbol, Price: price}, nil
}

func (f *fakeQuoteSource) GetDailySeries(ctx context.Context, symbol string, limit int) ([]models.MDailyBar, error) {
	return nil, helpers.NewUpstreamError("not implemented", nil)
}

func (f *fakeQuoteSource) GetIntradaySeries(ctx context.Context, symbol string, interval string, limit int) ([]models.MIntradayBar, error) {
	return nil, helpers.NewUpstreamError("not implemented", nil)
}

// -----------------------------------------------------------------------------

func newTestService(t *testing.T) (*Service, *storage.MemoryStore, *fakeQuoteSource) {
	t.Helper()

	cfg := &models.MConfig{
		LogLevel: "ERROR",
		Network:  models.MNetworkConfig{ConcurrentRequests: 4},
	}
	store := storage.NewMemoryStore(logger.NewLogger("ERROR", "test"))
	quotes := newFakeQuoteSource()
	return NewService(cfg, store, quotes), store, quotes
}

// -----------------------------------------------------------------------------
// Add
// -----------------------------------------------------------------------------

func TestAdd_NormalizesAndInserts(t *testing.T) {
	svc, _, quotes := newTestService(t)
	quotes.prices["AAPL"] = 145

	entry, err := svc.Add(t.Context(), "  aapl ", 150)
	require.NoError(t, err)
	require.Equal(t, "AAPL", entry.Symbol)
	require.Equal(t, 150.0, entry.TargetPrice)
	require.False(t, entry.IsAlertTriggered)
}

func TestAdd_RejectsDuplicateCaseInsensitively(t *testing.T) {
	svc, _, quotes := newTestService(t)
	quotes.prices["MSFT"] = 400

	_, err := svc.Add(t.Context(), "MSFT", 410)
	require.NoError(t, err)

	// Different casing and target price must still collide.
	_, err = svc.Add(t.Context(), "msft", 500)
	require.Error(t, err)
	require.True(t, helpers.IsDuplicate(err))
}

func TestAdd_RejectsNonPositiveTarget(t *testing.T) {
	svc, _, quotes := newTestService(t)
	quotes.prices["MSFT"] = 400

	for _, target := range []float64{0, -1} {
		_, err := svc.Add(t.Context(), "MSFT", target)
		require.Error(t, err)
		require.True(t, helpers.IsValidation(err))
	}
}

func TestAdd_RejectsEmptySymbol(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Add(t.Context(), "   ", 10)
	require.Error(t, err)
	require.True(t, helpers.IsValidation(err))
}

func TestAdd_RejectsUnverifiableSymbol(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Add(t.Context(), "NOSUCH", 10)
	require.Error(t, err)
	require.True(t, helpers.IsValidation(err))
}

func TestAdd_SurfacesRateLimit(t *testing.T) {
	svc, _, quotes := newTestService(t)
	quotes.errs["AAPL"] = helpers.NewRateLimitError("API call frequency exceeded")

	_, err := svc.Add(t.Context(), "AAPL", 10)
	require.Error(t, err)
	require.True(t, helpers.IsRateLimit(err))
}

// -----------------------------------------------------------------------------
// List / reconciliation pass
// -----------------------------------------------------------------------------

func TestList_RoundTripTriggersAndLatches(t *testing.T) {
	svc, store, quotes := newTestService(t)
	quotes.prices["AAPL"] = 100

	_, err := svc.Add(t.Context(), "AAPL", 150)
	require.NoError(t, err)

	// Below target: untriggered.
	entries, err := svc.List(t.Context())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.False(t, entries[0].IsAlertTriggered)

	// Crosses target: triggers and persists.
	quotes.prices["AAPL"] = 151
	entries, err = svc.List(t.Context())
	require.NoError(t, err)
	require.True(t, entries[0].IsAlertTriggered)

	stored, err := store.FindBySymbol("AAPL")
	require.NoError(t, err)
	require.True(t, stored.IsAlertTriggered)

	// Price drop afterwards leaves the latch set.
	quotes.prices["AAPL"] = 140
	entries, err = svc.List(t.Context())
	require.NoError(t, err)
	require.True(t, entries[0].IsAlertTriggered)

	stored, err = store.FindBySymbol("AAPL")
	require.NoError(t, err)
	require.True(t, stored.IsAlertTriggered)
}

// The trigger state machine must behave identically regardless of which
// backend holds the watchlist.
func TestList_LatchRoundTripOnEachBackend(t *testing.T) {
	backends := []struct {
		name  string
		build func(t *testing.T) interfaces.IWatchlistStore
	}{
		{
			"memory",
			func(t *testing.T) interfaces.IWatchlistStore {
				return storage.NewMemoryStore(logger.NewLogger("ERROR", "test"))
			},
		},
		{
			"sqlite",
			func(t *testing.T) interfaces.IWatchlistStore {
				cfg := &models.MConfig{
					LogLevel: "ERROR",
					Storage: models.MStorageConfig{
						DBType: "sqlite",
						DBPath: filepath.Join(t.TempDir(), "watchlist.db"),
					},
				}
				store := storage.NewSQLiteStore(cfg, logger.NewLogger("ERROR", "test"))
				require.NoError(t, store.Initialize())
				t.Cleanup(func() { store.Close() })
				return store
			},
		},
	}

	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			cfg := &models.MConfig{
				LogLevel: "ERROR",
				Network:  models.MNetworkConfig{ConcurrentRequests: 4},
			}
			store := backend.build(t)
			quotes := newFakeQuoteSource()
			svc := NewService(cfg, store, quotes)

			quotes.prices["AAPL"] = 100
			_, err := svc.Add(t.Context(), "AAPL", 150)
			require.NoError(t, err)

			// Below target: no transition is written.
			entries, err := svc.List(t.Context())
			require.NoError(t, err)
			require.False(t, entries[0].IsAlertTriggered)
			stored, err := store.FindBySymbol("AAPL")
			require.NoError(t, err)
			require.False(t, stored.IsAlertTriggered)

			// Crossing the target persists the latch.
			quotes.prices["AAPL"] = 151
			entries, err = svc.List(t.Context())
			require.NoError(t, err)
			require.True(t, entries[0].IsAlertTriggered)
			stored, err = store.FindBySymbol("AAPL")
			require.NoError(t, err)
			require.True(t, stored.IsAlertTriggered)

			// A later price drop does not clear it.
			quotes.prices["AAPL"] = 90
			entries, err = svc.List(t.Context())
			require.NoError(t, err)
			require.True(t, entries[0].IsAlertTriggered)
			stored, err = store.FindBySymbol("AAPL")
			require.NoError(t, err)
			require.True(t, stored.IsAlertTriggered)

			// Editing the target is the sanctioned way to clear it.
			updated, err := svc.Edit(t.Context(), stored.ID, 200)
			require.NoError(t, err)
			require.False(t, updated.IsAlertTriggered)
			stored, err = store.FindBySymbol("AAPL")
			require.NoError(t, err)
			require.False(t, stored.IsAlertTriggered)
		})
	}
}

func TestList_FailedQuoteDoesNotAbortOthers(t *testing.T) {
	svc, _, quotes := newTestService(t)
	quotes.prices["AAPL"] = 200
	quotes.prices["MSFT"] = 500

	_, err := svc.Add(t.Context(), "AAPL", 150)
	require.NoError(t, err)
	_, err = svc.Add(t.Context(), "MSFT", 400)
	require.NoError(t, err)

	// AAPL now fails upstream; MSFT must still reconcile.
	quotes.errs["AAPL"] = helpers.NewUpstreamError("connection reset", nil)

	entries, err := svc.List(t.Context())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	bySymbol := make(map[string]models.MEnrichedEntry)
	for _, e := range entries {
		bySymbol[e.Symbol] = e
	}

	require.Nil(t, bySymbol["AAPL"].CurrentPrice)
	require.Nil(t, bySymbol["AAPL"].PriceChangePercent)

	require.NotNil(t, bySymbol["MSFT"].CurrentPrice)
	require.True(t, bySymbol["MSFT"].IsAlertTriggered)
}

func TestList_ReturnsNewestFirst(t *testing.T) {
	svc, _, quotes := newTestService(t)
	quotes.prices["AAPL"] = 100
	quotes.prices["MSFT"] = 100

	_, err := svc.Add(t.Context(), "AAPL", 150)
	require.NoError(t, err)
	_, err = svc.Add(t.Context(), "MSFT", 150)
	require.NoError(t, err)

	entries, err := svc.List(t.Context())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "MSFT", entries[0].Symbol)
	require.Equal(t, "AAPL", entries[1].Symbol)
}

// -----------------------------------------------------------------------------
// Edit / ResetAlert / Remove
// -----------------------------------------------------------------------------

func TestEdit_ResetsLatchEvenWhenNewTargetAlreadyExceeded(t *testing.T) {
	svc, store, quotes := newTestService(t)
	quotes.prices["AAPL"] = 200

	added, err := svc.Add(t.Context(), "AAPL", 150)
	require.NoError(t, err)

	_, err = svc.List(t.Context())
	require.NoError(t, err)
	stored, _ := store.FindBySymbol("AAPL")
	require.True(t, stored.IsAlertTriggered)

	// New target is already below the last known price; the latch still
	// resets and only the next pass may re-trigger it.
	updated, err := svc.Edit(t.Context(), added.ID, 180)
	require.NoError(t, err)
	require.False(t, updated.IsAlertTriggered)
	require.Equal(t, 180.0, updated.TargetPrice)

	entries, err := svc.List(t.Context())
	require.NoError(t, err)
	require.True(t, entries[0].IsAlertTriggered)
}

func TestEdit_RejectsNonPositiveTarget(t *testing.T) {
	svc, _, quotes := newTestService(t)
	quotes.prices["AAPL"] = 200

	added, err := svc.Add(t.Context(), "AAPL", 150)
	require.NoError(t, err)

	_, err = svc.Edit(t.Context(), added.ID, 0)
	require.Error(t, err)
	require.True(t, helpers.IsValidation(err))
}

func TestEdit_UnknownIDIsNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Edit(t.Context(), "missing", 10)
	require.Error(t, err)
	require.True(t, helpers.IsNotFound(err))
}

func TestResetAlert_IsIdempotent(t *testing.T) {
	svc, _, quotes := newTestService(t)
	quotes.prices["AAPL"] = 100

	added, err := svc.Add(t.Context(), "AAPL", 150)
	require.NoError(t, err)

	// Resetting an already-untriggered entry returns the same state.
	updated, err := svc.ResetAlert(t.Context(), added.ID)
	require.NoError(t, err)
	require.False(t, updated.IsAlertTriggered)
	require.Equal(t, added.TargetPrice, updated.TargetPrice)
}

func TestResetAlert_ClearsTriggeredLatch(t *testing.T) {
	svc, store, quotes := newTestService(t)
	quotes.prices["AAPL"] = 200

	added, err := svc.Add(t.Context(), "AAPL", 150)
	require.NoError(t, err)

	_, err = svc.List(t.Context())
	require.NoError(t, err)

	updated, err := svc.ResetAlert(t.Context(), added.ID)
	require.NoError(t, err)
	require.False(t, updated.IsAlertTriggered)

	stored, _ := store.FindBySymbol("AAPL")
	require.False(t, stored.IsAlertTriggered)
}

func TestRemove_UnknownIDIsNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.Remove(t.Context(), "missing")
	require.Error(t, err)
	require.True(t, helpers.IsNotFound(err))
}
