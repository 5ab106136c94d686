// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mbektemi/mbektemi/internal/backend"
	"github.com/mbektemi/mbektemi/internal/logging"
	"github.com/mbektemi/mbektemi/internal/models"
)

// sessionClient returns a backend client bound to the request's session
// jar, so the visitor's Sanctum cookies ride along.
func (s *Server) sessionClient(r *http.Request) *backend.Client {
	return s.sessions.Client(sessionFrom(r.Context()))
}

func (s *Server) handleCreatePilgrim(w http.ResponseWriter, r *http.Request) {
	var input backend.PilgrimInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	pilgrim, err := s.sessionClient(r).CreatePilgrim(r.Context(), input)
	if err != nil {
		respondBackendError(w, r, err)
		return
	}

	s.pilgrims.Invalidate()
	respondJSON(w, http.StatusCreated, pilgrim)
}

func (s *Server) handleListPilgrims(w http.ResponseWriter, r *http.Request) {
	client := s.sessionClient(r)
	pilgrims, err := s.pilgrims.Get(r.Context(), func(ctx context.Context) ([]models.Pilgrim, error) {
		return client.ListPilgrims(ctx)
	})
	if err != nil {
		respondBackendError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, pilgrims)
}

// handleUpdatePilgrimStatus applies the status change optimistically so
// the desk view updates immediately, then commits to the backend. A
// failed commit rolls the cached list back.
func (s *Server) handleUpdatePilgrimStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var update backend.PilgrimStatusUpdate
	if !decodeAndValidate(w, r, &update) {
		return
	}

	client := s.sessionClient(r)
	var updated *models.Pilgrim
	err := s.pilgrims.Mutate(r.Context(),
		func(pilgrims []models.Pilgrim) []models.Pilgrim {
			for i := range pilgrims {
				if pilgrims[i].ID == id {
					pilgrims[i].Status = update.Status
				}
			}
			return pilgrims
		},
		func(ctx context.Context) error {
			var commitErr error
			updated, commitErr = client.UpdatePilgrimStatus(ctx, id, update)
			return commitErr
		},
	)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("pilgrimId", id).
			Msg("pilgrim status update rolled back")
		respondBackendError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeletePilgrim(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessionClient(r).DeletePilgrim(r.Context(), id); err != nil {
		respondBackendError(w, r, err)
		return
	}
	s.pilgrims.Invalidate()
	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}
