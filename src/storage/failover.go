package storage

import (
	"context"
	"sync/atomic"
	"time"

	"stockpulse/src/interfaces"
	"stockpulse/src/logger"
	"stockpulse/src/models"
)

// -----------------------------------------------------------------------------
// FailoverStore is the single indirection point between the persistent store
// and the in-memory fallback. Callers never inspect connection state; every
// call is delegated to whichever backend is currently live. A connectivity
// watcher demotes to the fallback when the database stops answering pings.
// Once demoted, the store stays on the fallback for the rest of the process
// lifetime: promoting back mid-run would silently drop the entries written to
// memory in the meantime.
// -----------------------------------------------------------------------------

// Pinger is the health probe the watcher uses. Both database-backed stores
// implement it.
type Pinger interface {
	Ping() error
}

// -----------------------------------------------------------------------------

type FailoverStore struct {
	primary  interfaces.IWatchlistStore
	fallback interfaces.IWatchlistStore
	pinger   Pinger
	demoted  atomic.Bool
	Logger   *logger.Logger
}

// -----------------------------------------------------------------------------

func NewFailoverStore(primary interfaces.IWatchlistStore, pinger Pinger, fallback interfaces.IWatchlistStore, log *logger.Logger) *FailoverStore {
	return &FailoverStore{
		primary:  primary,
		fallback: fallback,
		pinger:   pinger,
		Logger:   log,
	}
}

// -----------------------------------------------------------------------------

// StartWatcher runs the connectivity probe loop until the context is
// cancelled. The interval comes from the storage config.
func (f *FailoverStore) StartWatcher(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if f.demoted.Load() {
					continue
				}
				if err := f.pinger.Ping(); err != nil {
					f.Logger.Warning("Database unreachable, switching to in-memory storage: %v", err)
					f.demoted.Store(true)
				}
			}
		}
	}()
}

// -----------------------------------------------------------------------------

// Demoted reports whether the store has fallen back to memory.
func (f *FailoverStore) Demoted() bool {
	return f.demoted.Load()
}

// -----------------------------------------------------------------------------

func (f *FailoverStore) current() interfaces.IWatchlistStore {
	if f.demoted.Load() {
		return f.fallback
	}
	return f.primary
}

// -----------------------------------------------------------------------------

func (f *FailoverStore) Initialize() error {
	if err := f.primary.Initialize(); err != nil {
		return err
	}
	return f.fallback.Initialize()
}

// -----------------------------------------------------------------------------

func (f *FailoverStore) ListAll() ([]models.MWatchlistEntry, error) {
	return f.current().ListAll()
}

// -----------------------------------------------------------------------------

func (f *FailoverStore) FindBySymbol(symbol string) (*models.MWatchlistEntry, error) {
	return f.current().FindBySymbol(symbol)
}

// -----------------------------------------------------------------------------

func (f *FailoverStore) Insert(symbol string, targetPrice float64) (*models.MWatchlistEntry, error) {
	return f.current().Insert(symbol, targetPrice)
}

// -----------------------------------------------------------------------------

func (f *FailoverStore) Update(id string, fields models.MWatchlistUpdate) (*models.MWatchlistEntry, error) {
	return f.current().Update(id, fields)
}

// -----------------------------------------------------------------------------

func (f *FailoverStore) Delete(id string) error {
	return f.current().Delete(id)
}

// -----------------------------------------------------------------------------

func (f *FailoverStore) Close() error {
	return f.primary.Close()
}
