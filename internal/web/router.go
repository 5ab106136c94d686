// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package web

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mbektemi/mbektemi/internal/middleware"
)

// Router assembles the full HTTP surface.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORS.Origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", s.cfg.CSRF.HeaderName},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if !s.cfg.Rate.Disabled {
		r.Use(httprate.LimitByIP(s.cfg.Rate.Requests, s.cfg.Rate.Window))
	}

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/health/live", s.handleLive)
		api.Get("/health/ready", s.handleReady)
		api.Get("/ws", s.hub.ServeWS)

		api.Group(func(g chi.Router) {
			g.Use(s.withSession)
			g.Use(s.csrfProtect)

			// Public reads need no account, not even a resolved session.
			g.Get("/schedules", s.handleListSchedules)
			g.Get("/notifications", s.handleListNotifications)
			g.Get("/points-of-interest", s.handleListPoints)

			g.Route("/auth", func(auth chi.Router) {
				auth.Get("/csrf-cookie", s.handleCSRFCookie)
				auth.Get("/me", s.handleMe)
				if s.cfg.Rate.Disabled {
					auth.Post("/login", s.handleLogin)
					auth.Post("/register", s.handleRegister)
				} else {
					// Credential endpoints get a much tighter budget
					// than the rest of the API.
					limit := httprate.LimitByIP(s.cfg.Rate.LoginRequests, s.cfg.Rate.LoginWindow)
					auth.With(limit).Post("/login", s.handleLogin)
					auth.With(limit).Post("/register", s.handleRegister)
				}
				auth.Post("/logout", s.handleLogout)
			})

			g.Group(func(gated chi.Router) {
				gated.Use(s.authorize)

				gated.Post("/pilgrims", s.handleCreatePilgrim)
				gated.Get("/pilgrims", s.handleListPilgrims)
				gated.Patch("/pilgrims/{id}/status", s.handleUpdatePilgrimStatus)
				gated.Delete("/pilgrims/{id}", s.handleDeletePilgrim)

				gated.Patch("/notifications/{id}/read", s.handleMarkNotificationRead)

				gated.Post("/schedules", s.handleCreateSchedule)
				gated.Put("/schedules/{id}", s.handleUpdateSchedule)
				gated.Delete("/schedules/{id}", s.handleDeleteSchedule)

				gated.Post("/notifications", s.handleCreateNotification)
				gated.Put("/notifications/{id}", s.handleUpdateNotification)
				gated.Delete("/notifications/{id}", s.handleDeleteNotification)

				gated.Post("/points-of-interest", s.handleCreatePoint)
				gated.Put("/points-of-interest/{id}", s.handleUpdatePoint)
				gated.Delete("/points-of-interest/{id}", s.handleDeletePoint)

				gated.Get("/users", s.handleListUsers)
				gated.Patch("/users/{id}", s.handleUpdateUser)
				gated.Delete("/users/{id}", s.handleDeleteUser)

				gated.Get("/admin/metrics", s.handleAdminMetrics)
			})
		})
	})

	if s.cfg.Static.Dir != "" {
		r.NotFound(spaHandler(s.cfg.Static.Dir))
	}

	return r
}

// spaHandler serves the built browser UI. Unknown paths fall back to
// index.html so client-side routing survives a hard refresh.
func spaHandler(dir string) http.HandlerFunc {
	fileServer := http.FileServer(http.Dir(dir))
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			respondError(w, http.StatusNotFound, CodeNotFound, "Route not found", nil)
			return
		}

		path := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	}
}
