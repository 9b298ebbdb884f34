package storage

import (
	"strconv"
	"sync"
	"time"

	"stockpulse/src/helpers"
	"stockpulse/src/logger"
	"stockpulse/src/models"
)

// -----------------------------------------------------------------------------
// MemoryStore is the volatile fallback used when no database is reachable.
// Entries live for the process lifetime only and are not visible to other
// processes.
// -----------------------------------------------------------------------------

type MemoryStore struct {
	Logger  *logger.Logger
	mu      sync.RWMutex
	entries []models.MWatchlistEntry
	lastID  int64
}

// -----------------------------------------------------------------------------

func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (m *MemoryStore) Initialize() error {
	return nil
}

// -----------------------------------------------------------------------------

// nextID returns a time-derived token, bumped past the previous one so that
// concurrent inserts within the same nanosecond still get distinct ids.
// Caller must hold the write lock.
func (m *MemoryStore) nextID() string {
	id := time.Now().UnixNano()
	if id <= m.lastID {
		id = m.lastID + 1
	}
	m.lastID = id
	return strconv.FormatInt(id, 10)
}

// -----------------------------------------------------------------------------

func (m *MemoryStore) ListAll() ([]models.MWatchlistEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Newest first: entries are appended in insertion order.
	result := make([]models.MWatchlistEntry, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0; i-- {
		result = append(result, m.entries[i])
	}
	return result, nil
}

// -----------------------------------------------------------------------------

func (m *MemoryStore) FindBySymbol(symbol string) (*models.MWatchlistEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.entries {
		if m.entries[i].Symbol == symbol {
			entry := m.entries[i]
			return &entry, nil
		}
	}
	return nil, nil
}

// -----------------------------------------------------------------------------

func (m *MemoryStore) Insert(symbol string, targetPrice float64) (*models.MWatchlistEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.entries {
		if m.entries[i].Symbol == symbol {
			return nil, helpers.NewDuplicateError("stock already in watchlist")
		}
	}

	now := time.Now().UTC()
	entry := models.MWatchlistEntry{
		ID:               m.nextID(),
		Symbol:           symbol,
		TargetPrice:      targetPrice,
		AddedDate:        now,
		IsAlertTriggered: false,
		LastChecked:      now,
	}
	m.entries = append(m.entries, entry)

	result := entry
	return &result, nil
}

// -----------------------------------------------------------------------------

func (m *MemoryStore) Update(id string, fields models.MWatchlistUpdate) (*models.MWatchlistEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.entries {
		if m.entries[i].ID != id {
			continue
		}

		if fields.TargetPrice != nil {
			m.entries[i].TargetPrice = *fields.TargetPrice
		}
		if fields.IsAlertTriggered != nil {
			m.entries[i].IsAlertTriggered = *fields.IsAlertTriggered
		}
		if fields.LastChecked != nil {
			m.entries[i].LastChecked = *fields.LastChecked
		}

		entry := m.entries[i]
		return &entry, nil
	}

	return nil, helpers.NewNotFoundError("watchlist item not found")
}

// -----------------------------------------------------------------------------

func (m *MemoryStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.entries {
		if m.entries[i].ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return helpers.NewNotFoundError("watchlist item not found")
}

// -----------------------------------------------------------------------------

func (m *MemoryStore) Close() error {
	return nil
}
