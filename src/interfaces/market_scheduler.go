package interfaces

// -----------------------------------------------------------------------------
// IMarketScheduler tells the poller whether any tracked market is trading and
// receives the current symbol set after each pass.
// -----------------------------------------------------------------------------

type IMarketScheduler interface {

	// AnyMarketOpen reports whether at least one tracked market is open right
	// now. An empty tracked set counts as open.
	AnyMarketOpen() bool

	// -----------------------------------------------------------------------------

	// UpdateSymbols replaces the tracked symbol set.
	UpdateSymbols(symbols []string)
}
