// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

// Package main is the entry point for the Gridwatch server.
//
// Gridwatch is a store for TV channel and program metadata and the
// watch activity log built on top of it. Broadcast apps publish
// channels, electronic program guide data, recorded programs, and
// preview content; tuner apps report raw watch events, which a
// background engine consolidates into per-program watch history.
//
// The server initializes components in order:
//
//  1. Configuration: koanf v2 layering defaults, config.yaml, and
//     GRIDWATCH_* environment variables
//  2. Store: DuckDB database with the entity schema
//  3. Access gate: casbin capability grants from configuration
//  4. Provider: request routing, scoping, and change notification
//  5. Consolidator and scheduler: the watch log engine
//  6. HTTP server: REST API plus Prometheus metrics
//
// The scheduler and HTTP server run under a suture supervisor tree and
// shut down gracefully on SIGINT and SIGTERM.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gridwatch/gridwatch/internal/api"
	"github.com/gridwatch/gridwatch/internal/config"
	"github.com/gridwatch/gridwatch/internal/consolidator"
	"github.com/gridwatch/gridwatch/internal/logging"
	"github.com/gridwatch/gridwatch/internal/notify"
	"github.com/gridwatch/gridwatch/internal/provider"
	"github.com/gridwatch/gridwatch/internal/scheduler"
	"github.com/gridwatch/gridwatch/internal/store"
	"github.com/gridwatch/gridwatch/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	logging.Info().Str("database", cfg.Database.Path).Msg("Gridwatch starting")

	ctx := context.Background()

	st, err := store.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close store")
		}
	}()

	// Raw watch rows from a previous run never consolidate: their
	// sessions died with the process.
	if purged, err := st.PurgeUnconsolidated(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to purge stale watch rows")
	} else if purged > 0 {
		logging.Info().Int64("rows", purged).Msg("Purged stale unconsolidated watch rows")
	}

	gate, err := provider.NewGate(cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build access gate")
	}

	notifier := notify.New()
	defer func() {
		if err := notifier.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close notifier")
		}
	}()

	prov, err := provider.New(ctx, st, gate, notifier)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build provider")
	}

	engine := consolidator.New(st, notifier)
	sched := scheduler.New(engine, cfg.Consolidator.Debounce)
	prov.SetTrigger(sched)

	router := api.NewRouter(prov, st, &cfg.Server)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(supervisor.TreeConfig{ShutdownTimeout: cfg.Server.Timeout})
	tree.AddWorker(sched)
	tree.AddAPIService(api.NewService(server, cfg.Server.Timeout))

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("Gridwatch listening")
	if err := tree.Serve(runCtx); err != nil && err != context.Canceled {
		logging.Error().Err(err).Msg("Supervisor exited with error")
		os.Exit(1)
	}
	logging.Info().Msg("Gridwatch stopped")
}
