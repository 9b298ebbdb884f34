package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"stockpulse/src/helpers"
	"stockpulse/src/interfaces"
	"stockpulse/src/logger"
	"stockpulse/src/models"
	"stockpulse/src/watchlist"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// APIServer
// -----------------------------------------------------------------------------

type APIServer struct {
	Config    *models.MConfig
	Logger    *logger.Logger
	Watchlist *watchlist.Service
	Quotes    interfaces.IQuoteSource
	engine    *gin.Engine
}

// History caps carried over from the chart views these endpoints feed.
const (
	dailyBarsLimit    = 30
	intradayBarsLimit = 100
)

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAPIServer(cfg *models.MConfig, log *logger.Logger, svc *watchlist.Service, quotes interfaces.IQuoteSource) *APIServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &APIServer{
		Config:    cfg,
		Logger:    log,
		Watchlist: svc,
		Quotes:    quotes,
		engine:    gin.Default(),
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes() {
	stocks := s.engine.Group("/api/stocks")
	stocks.GET("/quote/:symbol", s.getQuote)
	stocks.GET("/daily/:symbol", s.getDaily)
	stocks.GET("/intraday/:symbol", s.getIntraday)

	wl := s.engine.Group("/api/watchlist")
	wl.GET("", s.listWatchlist)
	wl.POST("", s.addToWatchlist)
	wl.PUT("/:id", s.updateWatchlistItem)
	wl.DELETE("/:id", s.deleteWatchlistItem)
	wl.PATCH("/:id/reset-alert", s.resetAlert)

	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/test", s.getTest)

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *APIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)
	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

// Handler exposes the underlying http.Handler for tests.
func (s *APIServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Health and diagnostics
// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"message": "StockPulse API is running",
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getTest(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"message":   "API routes are working",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"routes":    []string{"/api/stocks", "/api/watchlist", "/api/health"},
	})
}

// -----------------------------------------------------------------------------
// Error mapping
// -----------------------------------------------------------------------------

// respondError maps a service error to a JSON response. Unclassified errors
// surface the fallback message so internals never reach the client.
func (s *APIServer) respondError(c *gin.Context, err error, fallback string) {
	status := helpers.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.Logger.Error("%s: %v", fallback, err)
		message = fallback
	}
	c.JSON(status, gin.H{"error": message})
}
