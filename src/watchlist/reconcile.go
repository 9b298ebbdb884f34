package watchlist

import (
	"fmt"
	"time"

	"stockpulse/src/models"
)

// -----------------------------------------------------------------------------
// Alert reconciliation. One evaluation of one entry against one quote result.
// The triggered flag is a one-way latch: a reconciliation can only set it,
// never clear it. Clearing happens through an explicit reset or a target
// price edit.
// -----------------------------------------------------------------------------

type ReconcileResult struct {
	Entry models.MEnrichedEntry

	// Transitioned is true only when this pass flipped the latch from
	// untriggered to triggered, i.e. the one case that needs a store write.
	Transitioned bool
}

// -----------------------------------------------------------------------------

// Reconcile computes the enriched view of an entry from a quote snapshot.
// A nil quote means the fetch for this symbol failed: the entry is returned
// with nil price fields and the stored state is left untouched.
func Reconcile(entry models.MWatchlistEntry, quote *models.MQuoteSnapshot, now time.Time) ReconcileResult {
	enriched := models.MEnrichedEntry{MWatchlistEntry: entry}

	if quote == nil {
		return ReconcileResult{Entry: enriched}
	}

	currentPrice := quote.Price
	wasTriggered := entry.IsAlertTriggered
	isNowTriggered := currentPrice >= entry.TargetPrice

	enriched.IsAlertTriggered = wasTriggered || isNowTriggered

	transitioned := isNowTriggered && !wasTriggered
	if transitioned {
		enriched.LastChecked = now
	}

	priceChange := currentPrice - entry.TargetPrice
	// TargetPrice > 0 is enforced at creation, so the division is safe.
	percent := fmt.Sprintf("%.2f", priceChange/entry.TargetPrice*100)

	enriched.CurrentPrice = &currentPrice
	enriched.PriceChange = &priceChange
	enriched.PriceChangePercent = &percent

	return ReconcileResult{Entry: enriched, Transitioned: transitioned}
}
