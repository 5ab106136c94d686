// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

// Package main is the entry point for the MbekteMi application server.
//
// MbekteMi is the companion app for pilgrims attending the Magal de
// Touba: public prayer schedules, the event program, mapped points of
// interest, announcements with live push, and a role-gated back office
// for volunteers and administrators. All persistent state lives in the
// Laravel backend; this server owns visitor sessions, caching, RBAC,
// and the websocket fan-out.
//
// # Startup order
//
//  1. Environment: optional .env file, then real environment variables
//  2. Configuration: Koanf v2 layered load (defaults, YAML, env)
//  3. Logging: zerolog, JSON or console per config
//  4. Session store: in-memory or BadgerDB per config
//  5. Backend client factory with shared circuit breaker
//  6. Websocket hub, Casbin enforcer, HTTP router
//  7. Suture supervisor tree: workers layer, then the API layer
//
// # Configuration
//
// See .env.example and config.yaml for the full surface. The only
// required setting is API_BASE_URL, the address of the Laravel backend.
//
// # Signal handling
//
// SIGINT and SIGTERM trigger a graceful shutdown: the listener stops
// accepting connections, in-flight requests get the configured drain
// window, then the session store closes.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mbektemi/mbektemi/internal/authz"
	"github.com/mbektemi/mbektemi/internal/backend"
	"github.com/mbektemi/mbektemi/internal/config"
	"github.com/mbektemi/mbektemi/internal/logging"
	"github.com/mbektemi/mbektemi/internal/session"
	"github.com/mbektemi/mbektemi/internal/supervisor"
	"github.com/mbektemi/mbektemi/internal/web"
	ws "github.com/mbektemi/mbektemi/internal/websocket"
)

func main() {
	// A missing .env file is the normal case outside development.
	_ = godotenv.Load()

	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("backend", cfg.Backend.BaseURL).
		Str("sessionStore", cfg.Session.Store).
		Msg("starting mbektemi server")

	store, err := openSessionStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open session store")
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logging.Warn().Err(closeErr).Msg("session store close failed")
		}
	}()

	factory := backend.NewFactory(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	manager := session.NewManager(store, factory, cfg.Session.TTL)

	enforcer, err := authz.NewEnforcer("")
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize authorization")
	}

	hub := ws.NewHub()
	app := web.NewServer(cfg, manager, factory, enforcer, hub)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      app.Router(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	treeConfig := supervisor.DefaultTreeConfig()
	treeConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(treeConfig)
	tree.AddWorker(supervisor.NewHubService(hub))
	tree.AddWorker(supervisor.NewCleanupService(manager, cfg.Session.CleanupEvery))
	tree.AddAPI(supervisor.NewHTTPService(httpServer, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor tree exited with error")
	}

	if report, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("service did not stop within timeout")
		}
	}

	logging.Info().Msg("mbektemi server stopped")
}

// openSessionStore picks the configured session store backend.
func openSessionStore(cfg *config.Config) (session.Store, error) {
	if cfg.Session.Store == "badger" {
		return session.OpenBadger(cfg.Session.StorePath)
	}
	return session.NewMemoryStore(), nil
}
