package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockpulse/src/config"
	"stockpulse/src/data_source/alphavantage"
	"stockpulse/src/interfaces"
	"stockpulse/src/logger"
	"stockpulse/src/network"
	"stockpulse/src/server"
	"stockpulse/src/storage"
	"stockpulse/src/watchlist"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config.LogLevel, config.Name)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Storage backend with in-memory fallback
	store := buildStore(ctx, config, appLogger)
	defer store.Close()

	// 2. Quote source
	netMgr := network.NewNetworkManager(config.MConfig, logger.NewLogger(config.LogLevel, "NetworkManager"))
	quotes := alphavantage.NewAlphaVantageSource(config.MConfig, netMgr)

	// 3. Watchlist service
	svc := watchlist.NewService(config.MConfig, store, quotes)

	// 4. Background alert poller (off unless enabled in config)
	if config.Poller.Enabled {
		poller := watchlist.NewPoller(config.MConfig, svc)
		poller.Start(ctx)
	}

	// 5. HTTP API
	srv := server.NewAPIServer(config.MConfig, appLogger, svc, quotes)
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel()
}

// -----------------------------------------------------------------------------

// buildStore assembles the dual-mode storage backend. When the database is
// unavailable at startup, or storage is configured as "memory", the process
// runs on the volatile in-memory store.
func buildStore(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) interfaces.IWatchlistStore {
	storeLogger := logger.NewLogger(cfg.LogLevel, "Storage")
	fallback := storage.NewMemoryStore(storeLogger)

	if cfg.Storage.DBType == "memory" {
		appLogger.Info("Using in-memory storage (watchlist won't persist)")
		return fallback
	}

	var primary interfaces.IWatchlistStore
	var pinger storage.Pinger

	switch cfg.Storage.DBType {
	case "postgres":
		db := storage.NewPostgresStore(cfg.MConfig, storeLogger)
		primary, pinger = db, db
	default:
		db := storage.NewSQLiteStore(cfg.MConfig, storeLogger)
		primary, pinger = db, db
	}

	if err := primary.Initialize(); err != nil {
		appLogger.Error("Database connection error: %v", err)
		appLogger.Warning("Continuing with in-memory storage (watchlist won't persist)")
		return fallback
	}

	failover := storage.NewFailoverStore(primary, pinger, fallback, storeLogger)
	failover.StartWatcher(ctx, time.Duration(cfg.Storage.PingIntervalSeconds)*time.Second)
	return failover
}
