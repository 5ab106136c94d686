// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mbektemi/mbektemi/internal/backend"
	"github.com/mbektemi/mbektemi/internal/websocket"
)

// Back-office content management. Every successful mutation invalidates
// the public cache for that list; notification changes additionally go
// out on the websocket hub so open pilgrim apps update without a reload.

func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var input backend.ScheduleInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	schedule, err := s.sessionClient(r).CreateSchedule(r.Context(), input)
	if err != nil {
		respondBackendError(w, r, err)
		return
	}
	s.schedules.Invalidate()
	respondJSON(w, http.StatusCreated, schedule)
}

func (s *Server) handleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var input backend.ScheduleInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	schedule, err := s.sessionClient(r).UpdateSchedule(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		respondBackendError(w, r, err)
		return
	}
	s.schedules.Invalidate()
	respondJSON(w, http.StatusOK, schedule)
}

func (s *Server) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessionClient(r).DeleteSchedule(r.Context(), id); err != nil {
		respondBackendError(w, r, err)
		return
	}
	s.schedules.Invalidate()
	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleCreateNotification(w http.ResponseWriter, r *http.Request) {
	var input backend.NotificationInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	notification, err := s.sessionClient(r).CreateNotification(r.Context(), input)
	if err != nil {
		respondBackendError(w, r, err)
		return
	}
	s.notifications.Invalidate()
	s.hub.Broadcast(websocket.Message{Type: websocket.MessageNotificationCreated, Data: notification})
	respondJSON(w, http.StatusCreated, notification)
}

func (s *Server) handleUpdateNotification(w http.ResponseWriter, r *http.Request) {
	var input backend.NotificationInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	notification, err := s.sessionClient(r).UpdateNotification(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		respondBackendError(w, r, err)
		return
	}
	s.notifications.Invalidate()
	s.hub.Broadcast(websocket.Message{Type: websocket.MessageNotificationUpdated, Data: notification})
	respondJSON(w, http.StatusOK, notification)
}

func (s *Server) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessionClient(r).DeleteNotification(r.Context(), id); err != nil {
		respondBackendError(w, r, err)
		return
	}
	s.notifications.Invalidate()
	s.hub.Broadcast(websocket.Message{Type: websocket.MessageNotificationDeleted, Data: map[string]string{"id": id}})
	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}

// handleMarkNotificationRead is per-user state, so it touches neither the
// shared public cache nor the hub.
func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	notification, err := s.sessionClient(r).MarkNotificationRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondBackendError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, notification)
}

func (s *Server) handleCreatePoint(w http.ResponseWriter, r *http.Request) {
	var input backend.POIInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	point, err := s.sessionClient(r).CreatePointOfInterest(r.Context(), input)
	if err != nil {
		respondBackendError(w, r, err)
		return
	}
	s.points.Invalidate()
	respondJSON(w, http.StatusCreated, point)
}

func (s *Server) handleUpdatePoint(w http.ResponseWriter, r *http.Request) {
	var input backend.POIInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	point, err := s.sessionClient(r).UpdatePointOfInterest(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		respondBackendError(w, r, err)
		return
	}
	s.points.Invalidate()
	respondJSON(w, http.StatusOK, point)
}

func (s *Server) handleDeletePoint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessionClient(r).DeletePointOfInterest(r.Context(), id); err != nil {
		respondBackendError(w, r, err)
		return
	}
	s.points.Invalidate()
	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}
