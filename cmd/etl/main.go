package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/climate-grid-etl/internal/adapter/gridfile"
	"github.com/couchcryptid/climate-grid-etl/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/climate-grid-etl/internal/adapter/kafka"
	"github.com/couchcryptid/climate-grid-etl/internal/config"
	"github.com/couchcryptid/climate-grid-etl/internal/domain"
	"github.com/couchcryptid/climate-grid-etl/internal/observability"
	"github.com/couchcryptid/climate-grid-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	if _, err := gridfile.LookupEncoding(cfg.GridEncoding); err != nil {
		logger.Error("invalid grid encoding", "error", err)
		os.Exit(1)
	}

	// Grids are read from CLIMATE_DATA_DIR and kept in an LRU keyed by file and encoding.
	dirSource := gridfile.NewDirSource(cfg.DataDir, cfg.GridEncoding, logger)
	source, err := gridfile.NewCachedSource(dirSource, cfg.GridCacheSize, metrics.ObserveGridCache)
	if err != nil {
		logger.Error("failed to create grid cache", "error", err)
		os.Exit(1)
	}
	logger.Info("grid source ready", "dir", cfg.DataDir, "encoding", cfg.GridEncoding, "cache_size", cfg.GridCacheSize)

	tokens := domain.DefaultTokens().WithStation(cfg.StationCode)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(source, tokens, metrics, logger)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, tokens, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
