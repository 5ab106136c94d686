// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package web

import (
	"github.com/mbektemi/mbektemi/internal/authz"
	"github.com/mbektemi/mbektemi/internal/backend"
	"github.com/mbektemi/mbektemi/internal/cache"
	"github.com/mbektemi/mbektemi/internal/config"
	"github.com/mbektemi/mbektemi/internal/models"
	"github.com/mbektemi/mbektemi/internal/session"
	"github.com/mbektemi/mbektemi/internal/websocket"
)

// Server wires sessions, the backend client factory, RBAC, caches, and
// the push hub into one HTTP surface.
type Server struct {
	cfg      *config.Config
	sessions *session.Manager
	enforcer *authz.Enforcer
	hub      *websocket.Hub

	// publicClient serves unauthenticated reads through its own
	// anonymous jar; public content needs no visitor session.
	publicClient *backend.Client

	// Read-through caches over the public lists. Admin mutations
	// invalidate them.
	schedules     *cache.List[models.Schedule]
	notifications *cache.List[models.Notification]
	points        *cache.List[models.PointOfInterest]

	// pilgrims backs the optimistic status mutation for the desk view.
	// The cache is process-wide: the backend serves the same registration
	// list to every staff member, so whichever authorized session misses
	// first warms it for all of them. If the backend ever filters the
	// list per user this must become per-session.
	pilgrims *cache.List[models.Pilgrim]
}

// NewServer builds the web server. The caches use the configured TTL;
// a zero TTL disables caching without changing any handler.
func NewServer(
	cfg *config.Config,
	sessions *session.Manager,
	factory *backend.Factory,
	enforcer *authz.Enforcer,
	hub *websocket.Hub,
) *Server {
	ttl := cfg.Cache.TTL
	return &Server{
		cfg:           cfg,
		sessions:      sessions,
		enforcer:      enforcer,
		hub:           hub,
		publicClient:  factory.ClientFor(backend.NewJar()),
		schedules:     cache.NewList[models.Schedule]("schedules", ttl),
		notifications: cache.NewList[models.Notification]("notifications", ttl),
		points:        cache.NewList[models.PointOfInterest]("points_of_interest", ttl),
		pilgrims:      cache.NewList[models.Pilgrim]("pilgrims", ttl),
	}
}
