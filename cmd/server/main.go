package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/placementcell/portal/internal/config"
	"github.com/placementcell/portal/internal/logger"
	"github.com/placementcell/portal/internal/portal"
	"github.com/placementcell/portal/internal/session"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	// Sessions live in Redis so the server can restart without logging everyone out
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Address})
	defer rdb.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = rdb.Ping(pingCtx).Err()
	cancel()
	if err != nil {
		log.Fatal().Err(err).Str("address", cfg.Redis.Address).Msg("Failed to connect to Redis")
	}

	// Create server
	srv, err := portal.New(cfg, log, session.NewRedisPersister(rdb, cfg.Server.SessionTTL), version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	log.Info().Str("version", version).Str("api", cfg.API.BaseURL).Msg("Starting placement portal server...")

	// Start HTTP server (this blocks)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}
