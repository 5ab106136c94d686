// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package web

import (
	"errors"
	"net/http"

	"github.com/mbektemi/mbektemi/internal/backend"
	"github.com/mbektemi/mbektemi/internal/logging"
	"github.com/mbektemi/mbektemi/internal/models"
	"github.com/mbektemi/mbektemi/internal/session"
)

// authStatus is the payload for /auth/me and the auth mutations. State
// distinguishes "not yet resolved" from "resolved and anonymous" so the
// UI can render a loading shell instead of flashing the login screen.
type authStatus struct {
	State session.State `json:"state"`
	User  *models.User  `json:"user,omitempty"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds backend.Credentials
	if !decodeAndValidate(w, r, &creds) {
		return
	}

	sess := sessionFrom(r.Context())
	user, err := s.sessions.Login(r.Context(), sess, creds)
	if err != nil {
		respondBackendError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("userId", user.ID).Msg("user logged in")
	respondJSON(w, http.StatusOK, authStatus{State: session.StateAuthenticated, User: user})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg backend.Registration
	if !decodeAndValidate(w, r, &reg) {
		return
	}

	sess := sessionFrom(r.Context())
	user, err := s.sessions.Register(r.Context(), sess, reg)
	if err != nil {
		if errors.Is(err, backend.ErrPasswordMismatch) {
			respondError(w, http.StatusUnprocessableEntity, CodeValidation,
				"PasswordConfirmation must match Password", nil)
			return
		}
		respondBackendError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("userId", user.ID).Msg("user registered")
	respondJSON(w, http.StatusCreated, authStatus{State: session.StateAuthenticated, User: user})
}

// handleLogout always succeeds from the browser's point of view; backend
// trouble during logout is not the visitor's problem.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	s.sessions.Logout(r.Context(), sess)
	respondJSON(w, http.StatusOK, authStatus{State: session.StateAnonymous})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	user := s.sessions.Resolve(r.Context(), sess)
	respondJSON(w, http.StatusOK, authStatus{State: sess.State(), User: user})
}

// handleCSRFCookie exists for clients that want to prime the CSRF token
// before their first mutation. withSession already issued the cookie.
func (s *Server) handleCSRFCookie(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
