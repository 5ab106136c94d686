// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package web

import (
	"context"
	"net/http"

	"github.com/mbektemi/mbektemi/internal/models"
)

// The public lists go through the anonymous client and the read-through
// caches, so a page-load burst during the gathering costs the backend at
// most one request per list per TTL window.

func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := s.schedules.Get(r.Context(), func(ctx context.Context) ([]models.Schedule, error) {
		return s.publicClient.ListSchedules(ctx)
	})
	if err != nil {
		respondBackendError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, schedules)
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := s.notifications.Get(r.Context(), func(ctx context.Context) ([]models.Notification, error) {
		return s.publicClient.ListNotifications(ctx)
	})
	if err != nil {
		respondBackendError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, notifications)
}

func (s *Server) handleListPoints(w http.ResponseWriter, r *http.Request) {
	points, err := s.points.Get(r.Context(), func(ctx context.Context) ([]models.PointOfInterest, error) {
		return s.publicClient.ListPointsOfInterest(ctx)
	})
	if err != nil {
		respondBackendError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, points)
}
