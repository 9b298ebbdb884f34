package models

import "time"

// MWatchlistEntry is the canonical persisted watchlist row.
// ID and AddedDate are assigned at creation and never change afterwards.
type MWatchlistEntry struct {
	ID               string    `json:"id"`
	Symbol           string    `json:"symbol"`
	TargetPrice      float64   `json:"targetPrice"`
	AddedDate        time.Time `json:"addedDate"`
	IsAlertTriggered bool      `json:"isAlertTriggered"`
	LastChecked      time.Time `json:"lastChecked"`
}

// MWatchlistUpdate carries a partial update. Nil fields are left untouched
// by the store.
type MWatchlistUpdate struct {
	TargetPrice      *float64
	IsAlertTriggered *bool
	LastChecked      *time.Time
}

// MEnrichedEntry is the list-view shape: the stored entry plus live quote
// derived fields. The pointers stay nil when the quote fetch for this
// symbol failed.
type MEnrichedEntry struct {
	MWatchlistEntry
	CurrentPrice       *float64 `json:"currentPrice"`
	PriceChange        *float64 `json:"priceChange"`
	PriceChangePercent *string  `json:"priceChangePercent"`
}
