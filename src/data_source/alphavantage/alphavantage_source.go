package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"stockpulse/src/helpers"
	"stockpulse/src/interfaces"
	"stockpulse/src/logger"
	"stockpulse/src/models"
)

// -----------------------------------------------------------------------------

type AlphaVantageSource struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAlphaVantageSource(cfg *models.MConfig, netMgr interfaces.INetworkManager) *AlphaVantageSource {
	return &AlphaVantageSource{
		Config:  cfg,
		Network: netMgr,
		Logger:  logger.NewLogger(cfg.LogLevel, "AlphaVantageSource"),
	}
}

// -----------------------------------------------------------------------------

func (s *AlphaVantageSource) Name() string {
	return "alphavantage"
}

// -----------------------------------------------------------------------------
// Response Shapes
// -----------------------------------------------------------------------------

// apiStatus carries the provider's out-of-band signals. Alpha Vantage reports
// an unknown symbol through "Error Message" and call-frequency limits through
// "Note" or "Information", always with HTTP 200.
type apiStatus struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

func (a *apiStatus) check() error {
	if a.ErrorMessage != "" {
		return helpers.NewValidationError("invalid symbol")
	}
	if a.Note != "" || a.Information != "" {
		return helpers.NewRateLimitError("API call frequency exceeded")
	}
	return nil
}

// -----------------------------------------------------------------------------

type globalQuoteResponse struct {
	apiStatus
	GlobalQuote *struct {
		Symbol           string `json:"01. symbol"`
		Open             string `json:"02. open"`
		High             string `json:"03. high"`
		Low              string `json:"04. low"`
		Price            string `json:"05. price"`
		Volume           string `json:"06. volume"`
		LatestTradingDay string `json:"07. latest trading day"`
		PreviousClose    string `json:"08. previous close"`
		Change           string `json:"09. change"`
		ChangePercent    string `json:"10. change percent"`
	} `json:"Global Quote"`
}

type seriesBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

type dailyResponse struct {
	apiStatus
	TimeSeries map[string]seriesBar `json:"Time Series (Daily)"`
}

// -----------------------------------------------------------------------------
// GetQuote
// -----------------------------------------------------------------------------

// GetQuote fetches the current GLOBAL_QUOTE for a symbol. The provider keys
// every field with a numbered string and encodes numbers as strings; parsing
// is strict and fails closed rather than returning partial data.
func (s *AlphaVantageSource) GetQuote(ctx context.Context, symbol string) (*models.MQuoteSnapshot, error) {
	body, err := s.query(ctx, map[string]string{
		"function": "GLOBAL_QUOTE",
		"symbol":   strings.ToUpper(symbol),
	})
	if err != nil {
		return nil, err
	}

	var resp globalQuoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, helpers.NewUpstreamError("failed to parse quote response", err)
	}
	if err := resp.check(); err != nil {
		return nil, err
	}

	q := resp.GlobalQuote
	if q == nil || q.Symbol == "" {
		return nil, helpers.NewNotFoundError("stock not found")
	}

	snapshot := &models.MQuoteSnapshot{
		Symbol:           q.Symbol,
		LatestTradingDay: q.LatestTradingDay,
		ChangePercent:    q.ChangePercent,
	}

	fields := []struct {
		raw  string
		dest *float64
	}{
		{q.Open, &snapshot.Open},
		{q.High, &snapshot.High},
		{q.Low, &snapshot.Low},
		{q.Price, &snapshot.Price},
		{q.PreviousClose, &snapshot.PreviousClose},
		{q.Change, &snapshot.Change},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return nil, helpers.NewUpstreamError(fmt.Sprintf("malformed quote field for %s", symbol), err)
		}
		*f.dest = v
	}

	volume, err := strconv.ParseInt(q.Volume, 10, 64)
	if err != nil {
		return nil, helpers.NewUpstreamError(fmt.Sprintf("malformed volume for %s", symbol), err)
	}
	snapshot.Volume = volume

	s.Logger.Debug("Fetched quote %s: price=%.2f", snapshot.Symbol, snapshot.Price)
	return snapshot, nil
}

// -----------------------------------------------------------------------------
// GetDailySeries
// -----------------------------------------------------------------------------

// GetDailySeries fetches TIME_SERIES_DAILY and returns the most recent bars
// in chronological order, capped at limit.
func (s *AlphaVantageSource) GetDailySeries(ctx context.Context, symbol string, limit int) ([]models.MDailyBar, error) {
	body, err := s.query(ctx, map[string]string{
		"function": "TIME_SERIES_DAILY",
		"symbol":   strings.ToUpper(symbol),
	})
	if err != nil {
		return nil, err
	}

	var resp dailyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, helpers.NewUpstreamError("failed to parse daily response", err)
	}
	if err := resp.check(); err != nil {
		return nil, err
	}
	if len(resp.TimeSeries) == 0 {
		return nil, helpers.NewNotFoundError("no daily data found")
	}

	dates := sortedKeysDesc(resp.TimeSeries)
	if len(dates) > limit {
		dates = dates[:limit]
	}

	// Reverse into chronological order while parsing.
	bars := make([]models.MDailyBar, 0, len(dates))
	for i := len(dates) - 1; i >= 0; i-- {
		date := dates[i]
		raw := resp.TimeSeries[date]

		bar := models.MDailyBar{Date: date}
		if err := parseBar(raw, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, helpers.NewUpstreamError(fmt.Sprintf("malformed daily bar for %s at %s", symbol, date), err)
		}
		bars = append(bars, bar)
	}

	return bars, nil
}

// -----------------------------------------------------------------------------
// GetIntradaySeries
// -----------------------------------------------------------------------------

// GetIntradaySeries fetches TIME_SERIES_INTRADAY for the given interval and
// returns the most recent points in chronological order, capped at limit.
func (s *AlphaVantageSource) GetIntradaySeries(ctx context.Context, symbol string, interval string, limit int) ([]models.MIntradayBar, error) {
	body, err := s.query(ctx, map[string]string{
		"function": "TIME_SERIES_INTRADAY",
		"symbol":   strings.ToUpper(symbol),
		"interval": interval,
	})
	if err != nil {
		return nil, err
	}

	// The series key embeds the interval, so decode in two steps: status
	// first, then the keyed series.
	var status apiStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, helpers.NewUpstreamError("failed to parse intraday response", err)
	}
	if err := status.check(); err != nil {
		return nil, err
	}

	var keyed map[string]json.RawMessage
	if err := json.Unmarshal(body, &keyed); err != nil {
		return nil, helpers.NewUpstreamError("failed to parse intraday response", err)
	}

	seriesKey := fmt.Sprintf("Time Series (%s)", interval)
	rawSeries, ok := keyed[seriesKey]
	if !ok {
		return nil, helpers.NewNotFoundError("no intraday data found")
	}

	var series map[string]seriesBar
	if err := json.Unmarshal(rawSeries, &series); err != nil {
		return nil, helpers.NewUpstreamError("failed to parse intraday series", err)
	}
	if len(series) == 0 {
		return nil, helpers.NewNotFoundError("no intraday data found")
	}

	timestamps := sortedKeysDesc(series)
	if len(timestamps) > limit {
		timestamps = timestamps[:limit]
	}

	bars := make([]models.MIntradayBar, 0, len(timestamps))
	for i := len(timestamps) - 1; i >= 0; i-- {
		ts := timestamps[i]
		raw := series[ts]

		bar := models.MIntradayBar{Timestamp: ts}
		if err := parseBar(raw, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, helpers.NewUpstreamError(fmt.Sprintf("malformed intraday bar for %s at %s", symbol, ts), err)
		}
		bars = append(bars, bar)
	}

	return bars, nil
}

// -----------------------------------------------------------------------------
// Internals
// -----------------------------------------------------------------------------

func (s *AlphaVantageSource) query(ctx context.Context, params map[string]string) ([]byte, error) {
	params["apikey"] = s.Config.Provider.APIKey

	body, err := s.Network.Get(ctx, s.Config.Provider.BaseURL, params)
	if err != nil {
		return nil, helpers.NewUpstreamError("failed to fetch stock data", err)
	}
	return body, nil
}

// -----------------------------------------------------------------------------

func parseBar(raw seriesBar, open, high, low, closePrice *float64, volume *int64) error {
	fields := []struct {
		raw  string
		dest *float64
	}{
		{raw.Open, open},
		{raw.High, high},
		{raw.Low, low},
		{raw.Close, closePrice},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return err
		}
		*f.dest = v
	}

	v, err := strconv.ParseInt(raw.Volume, 10, 64)
	if err != nil {
		return err
	}
	*volume = v
	return nil
}

// -----------------------------------------------------------------------------

func sortedKeysDesc[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Provider keys are "2024-01-02" / "2024-01-02 15:55:00" strings, so
	// lexical order matches time order.
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys
}
