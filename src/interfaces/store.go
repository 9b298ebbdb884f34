package interfaces

import "stockpulse/src/models"

// -----------------------------------------------------------------------------
// IWatchlistStore defines the contract every storage backend satisfies.
// The service layer only ever talks to this interface; it never inspects
// which backend is live.
// -----------------------------------------------------------------------------

type IWatchlistStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the schema or internal state of the backend.
	Initialize() error

	// -----------------------------------------------------------------------------

	// ListAll returns every entry, newest first.
	ListAll() ([]models.MWatchlistEntry, error)

	// -----------------------------------------------------------------------------

	// FindBySymbol returns the entry for a normalized symbol, or nil when absent.
	FindBySymbol(symbol string) (*models.MWatchlistEntry, error)

	// -----------------------------------------------------------------------------

	// Insert creates a new entry. Fails with a DuplicateError when the symbol
	// is already watched.
	Insert(symbol string, targetPrice float64) (*models.MWatchlistEntry, error)

	// -----------------------------------------------------------------------------

	// Update applies the non-nil fields of the partial update to the entry with
	// the given id. Fails with a NotFoundError on an unknown id.
	Update(id string, fields models.MWatchlistUpdate) (*models.MWatchlistEntry, error)

	// -----------------------------------------------------------------------------

	// Delete removes the entry with the given id. Fails with a NotFoundError on
	// an unknown id.
	Delete(id string) error

	// -----------------------------------------------------------------------------

	// Close releases the backend resources
	Close() error
}
