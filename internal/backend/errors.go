// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package backend

import (
	"errors"
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"
)

// ErrPasswordMismatch is returned by Register before any network call when
// the password confirmation does not match the password.
var ErrPasswordMismatch = errors.New("password confirmation does not match")

// APIError is a non-2xx response from the Laravel backend. It carries the
// status code and the raw payload so callers can map backend failures to
// their own error surface without losing information.
type APIError struct {
	StatusCode int
	Message    string
	Payload    []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// newAPIError builds an APIError from a response body. The message is taken
// from the payload's "message" or "error" field when present, falling back
// to the HTTP status text.
func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Message:    http.StatusText(statusCode),
		Payload:    body,
	}

	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Message != "" {
			apiErr.Message = envelope.Message
		} else if envelope.Error != "" {
			apiErr.Message = envelope.Error
		}
	}

	return apiErr
}

// IsUnauthorized reports whether err is a backend 401 or 419 (Sanctum's
// CSRF token mismatch status). Both mean the visitor must authenticate
// again.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == 419
}

// StatusCode extracts the backend status code from err, or 0 when err is
// not an APIError (network failure, timeout, breaker rejection).
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
