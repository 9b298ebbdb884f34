package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Stock data handlers
// -----------------------------------------------------------------------------

func (s *APIServer) getQuote(c *gin.Context) {
	symbol := c.Param("symbol")
	s.Logger.Debug("Stock quote request for: %s", symbol)

	snapshot, err := s.Quotes.GetQuote(c.Request.Context(), symbol)
	if err != nil {
		s.respondError(c, err, "Failed to fetch stock data")
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getDaily(c *gin.Context) {
	symbol := c.Param("symbol")

	bars, err := s.Quotes.GetDailySeries(c.Request.Context(), symbol, dailyBarsLimit)
	if err != nil {
		s.respondError(c, err, "Failed to fetch daily data")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol": normalizeSymbol(symbol),
		"data":   bars,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getIntraday(c *gin.Context) {
	symbol := c.Param("symbol")
	interval := c.DefaultQuery("interval", "5min")

	bars, err := s.Quotes.GetIntradaySeries(c.Request.Context(), symbol, interval, intradayBarsLimit)
	if err != nil {
		s.respondError(c, err, "Failed to fetch intraday data")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":   normalizeSymbol(symbol),
		"interval": interval,
		"data":     bars,
	})
}
