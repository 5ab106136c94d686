// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

// Package web is the HTTP surface consumed by the browser UI: public
// reads, auth, the gated back-office API, health probes, and the
// websocket push endpoint. Every JSON response uses one envelope:
//
//	{"success": true,  "data": ...}
//	{"success": false, "error": {"code": ..., "message": ..., "redirect": ...}}
package web

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/mbektemi/mbektemi/internal/backend"
	"github.com/mbektemi/mbektemi/internal/logging"
)

// Error codes used in response envelopes.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeBackendError       = "BACKEND_ERROR"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	CodeCSRF               = "CSRF_TOKEN_MISMATCH"
	CodeBadRequest         = "BAD_REQUEST"
)

// loginRedirect is where the UI sends the visitor when the backend no
// longer recognizes their session.
const loginRedirect = "/auth/login"

type envelope struct {
	Success bool          `json:"success"`
	Data    interface{}   `json:"data,omitempty"`
	Error   *errorPayload `json:"error,omitempty"`
}

type errorPayload struct {
	Code     string      `json:"code"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
}

// respondJSON writes a success envelope.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}

// respondError writes a failure envelope.
func respondError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	respondErrorRedirect(w, status, code, message, details, "")
}

func respondErrorRedirect(w http.ResponseWriter, status int, code, message string, details interface{}, redirect string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	payload := envelope{
		Success: false,
		Error: &errorPayload{
			Code:     code,
			Message:  message,
			Details:  details,
			Redirect: redirect,
		},
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error().Err(err).Msg("failed to encode error response")
	}
}

// respondBackendError maps a backend client error to our envelope.
// A backend 401/419 becomes our 401 with a login redirect so the UI
// navigates exactly once; other backend statuses pass through; network
// failures, timeouts, and breaker rejections become 502.
func respondBackendError(w http.ResponseWriter, r *http.Request, err error) {
	if backend.IsUnauthorized(err) {
		respondErrorRedirect(w, http.StatusUnauthorized, CodeUnauthenticated,
			"Your session has expired, please log in again", nil, loginRedirect)
		return
	}

	if status := backend.StatusCode(err); status > 0 {
		var apiErr *backend.APIError
		message := "The request could not be completed"
		if errors.As(err, &apiErr) {
			message = apiErr.Message
		}
		respondError(w, status, CodeBackendError, message, nil)
		return
	}

	logging.Ctx(r.Context()).Error().Err(err).Msg("backend call failed")
	respondError(w, http.StatusBadGateway, CodeBackendUnavailable,
		"The service is temporarily unavailable, please try again", nil)
}
