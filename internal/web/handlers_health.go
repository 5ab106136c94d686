// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package web

import (
	"net/http"
)

// handleLive answers as long as the process serves requests.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady additionally requires the backend to be reachable. A 4xx
// from the backend still counts as reachable; only transport failures
// and 5xx mark us not ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.publicClient.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, CodeBackendUnavailable,
			"Backend is unreachable", nil)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
