package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Watchlist handlers
// -----------------------------------------------------------------------------

type addRequest struct {
	Symbol      string   `json:"symbol"`
	TargetPrice *float64 `json:"targetPrice"`
}

type editRequest struct {
	TargetPrice *float64 `json:"targetPrice"`
}

// -----------------------------------------------------------------------------

func (s *APIServer) listWatchlist(c *gin.Context) {
	entries, err := s.Watchlist.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err, "Failed to fetch watchlist")
		return
	}

	c.JSON(http.StatusOK, entries)
}

// -----------------------------------------------------------------------------

func (s *APIServer) addToWatchlist(c *gin.Context) {
	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Symbol == "" || req.TargetPrice == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Symbol and target price are required"})
		return
	}

	entry, err := s.Watchlist.Add(c.Request.Context(), req.Symbol, *req.TargetPrice)
	if err != nil {
		s.respondError(c, err, "Failed to add stock to watchlist")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// -----------------------------------------------------------------------------

func (s *APIServer) updateWatchlistItem(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TargetPrice == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Target price is required"})
		return
	}

	entry, err := s.Watchlist.Edit(c.Request.Context(), c.Param("id"), *req.TargetPrice)
	if err != nil {
		s.respondError(c, err, "Failed to update watchlist item")
		return
	}

	c.JSON(http.StatusOK, entry)
}

// -----------------------------------------------------------------------------

func (s *APIServer) deleteWatchlistItem(c *gin.Context) {
	if err := s.Watchlist.Remove(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err, "Failed to remove stock from watchlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Stock removed from watchlist"})
}

// -----------------------------------------------------------------------------

func (s *APIServer) resetAlert(c *gin.Context) {
	entry, err := s.Watchlist.ResetAlert(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err, "Failed to reset alert")
		return
	}

	c.JSON(http.StatusOK, entry)
}

// -----------------------------------------------------------------------------

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
