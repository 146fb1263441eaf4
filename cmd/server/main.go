// Audioshelf - Hybrid Audiobook Recommendation Service
// Copyright 2026 J. Halloran (jdhalloran)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jdhalloran/audioshelf

// Command server runs the Audioshelf recommendation service: it loads
// the catalog and listening history, builds the scoring model, and
// serves the HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jdhalloran/audioshelf/internal/api"
	"github.com/jdhalloran/audioshelf/internal/config"
	"github.com/jdhalloran/audioshelf/internal/logging"
	"github.com/jdhalloran/audioshelf/internal/metrics"
	"github.com/jdhalloran/audioshelf/internal/recommend"
	"github.com/jdhalloran/audioshelf/internal/store"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("books_path", cfg.Data.BooksPath).
		Str("interactions_path", cfg.Data.InteractionsPath).
		Msg("Starting Audioshelf")

	engine, err := recommend.NewEngine(cfg.Recommend, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	dataStore := store.New(cfg.Data.BooksPath, cfg.Data.InteractionsPath)
	if err := loadModel(engine, dataStore); err != nil {
		logging.Fatal().Err(err).Msg("Failed to build initial model")
	}

	handler := api.NewHandler(engine, dataStore)
	router := api.NewRouter(handler, api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
		CORSAllowedMethods: []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		CORSMaxAge:         86400,
		RateLimitRequests:  cfg.Server.RateLimitReqs,
		RateLimitWindow:    cfg.Server.RateLimitWindow,
	}))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server error")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}
	logging.Info().Msg("Server stopped")
}

// loadModel reads both tables and builds the first model snapshot.
func loadModel(engine *recommend.Engine, dataStore *store.Store) error {
	start := time.Now()

	books, err := dataStore.Books()
	if err != nil {
		return fmt.Errorf("loading books: %w", err)
	}
	interactions, err := dataStore.Interactions()
	if err != nil {
		return fmt.Errorf("loading interactions: %w", err)
	}

	if err := engine.Load(books, interactions); err != nil {
		metrics.RecordModelBuild(time.Since(start), 0, 0, 0, err)
		return err
	}

	snapshot, err := engine.Snapshot()
	if err != nil {
		return err
	}
	users, bookCount, features := snapshot.Stats()
	metrics.RecordModelBuild(time.Since(start), users, bookCount, features, nil)
	return nil
}
