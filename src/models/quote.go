package models

// MQuoteSnapshot is a point-in-time quote read from the upstream provider.
// It is never persisted.
type MQuoteSnapshot struct {
	Symbol           string  `json:"symbol"`
	Open             float64 `json:"open"`
	High             float64 `json:"high"`
	Low              float64 `json:"low"`
	Price            float64 `json:"price"`
	Volume           int64   `json:"volume"`
	LatestTradingDay string  `json:"latestTradingDay"`
	PreviousClose    float64 `json:"previousClose"`
	Change           float64 `json:"change"`
	ChangePercent    string  `json:"changePercent"`
}

// MDailyBar is one day of OHLCV history.
type MDailyBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// MIntradayBar is one intraday interval of OHLCV data.
type MIntradayBar struct {
	Timestamp string  `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    int64   `json:"volume"`
}
