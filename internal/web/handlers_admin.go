// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mbektemi/mbektemi/internal/backend"
	"github.com/mbektemi/mbektemi/internal/logging"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.sessionClient(r).ListUsers(r.Context())
	if err != nil {
		respondBackendError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var update backend.UserUpdate
	if !decodeAndValidate(w, r, &update) {
		return
	}

	user, err := s.sessionClient(r).UpdateUser(r.Context(), id, update)
	if err != nil {
		respondBackendError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("userId", id).
		Str("role", string(update.Role)).
		Str("status", update.Status).
		Msg("user account updated")
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessionClient(r).DeleteUser(r.Context(), id); err != nil {
		respondBackendError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Str("userId", id).Msg("user account deleted")
	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}

// handleAdminMetrics proxies the dashboard aggregate. No caching: the
// dashboard polls rarely and admins expect live numbers.
func (s *Server) handleAdminMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := s.sessionClient(r).AdminMetrics(r.Context())
	if err != nil {
		respondBackendError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}
