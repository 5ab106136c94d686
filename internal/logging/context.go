// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// ContextWithRequestID returns a child context carrying the request ID.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the request ID from the context, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}

// Ctx returns a logger that includes the request ID from the context as a
// field on every event. Falls back to the plain global logger when the
// context carries no request ID. The pointer return keeps the level
// starters (Debug, Info, ...) chainable on the call expression.
func Ctx(ctx context.Context) *zerolog.Logger {
	logger := Logger()
	if id, ok := RequestIDFromContext(ctx); ok {
		logger = logger.With().Str("request_id", id).Logger()
	}
	return &logger
}
