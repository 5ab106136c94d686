// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

// Package middleware holds HTTP middleware shared across the router:
// request identification and Prometheus instrumentation. Session and
// authorization middleware live next to the handlers in internal/web.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mbektemi/mbektemi/internal/logging"
)

// RequestIDHeader is the header carrying the request ID in and out.
const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with an ID: an inbound X-Request-ID is
// trusted (load balancers set it), otherwise a fresh UUID is minted. The
// ID is echoed on the response and attached to the request context so
// logging.Ctx picks it up.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := logging.ContextWithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
