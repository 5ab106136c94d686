// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mbektemi/mbektemi/internal/logging"
	"github.com/mbektemi/mbektemi/internal/session"
	"github.com/mbektemi/mbektemi/internal/websocket"
)

// HTTPServer matches the *http.Server lifecycle methods the service
// needs, so tests can substitute a double.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPService runs an HTTP server under supervision, translating the
// blocking ListenAndServe into suture's context-driven Serve.
type HTTPService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
}

// NewHTTPService wraps an HTTP server. A non-positive shutdownTimeout
// falls back to ten seconds.
func NewHTTPService(server HTTPServer, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{server: server, shutdownTimeout: shutdownTimeout}
}

// Serve implements suture.Service. http.ErrServerClosed is the expected
// outcome of a graceful shutdown and is not an error.
func (s *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		// The request context is already canceled; shutdown gets its
		// own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

func (s *HTTPService) String() string { return "http-server" }

// CleanupService periodically purges expired sessions.
type CleanupService struct {
	manager  *session.Manager
	interval time.Duration
}

// NewCleanupService builds the session cleanup worker. A non-positive
// interval falls back to five minutes.
func NewCleanupService(manager *session.Manager, interval time.Duration) *CleanupService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &CleanupService{manager: manager, interval: interval}
}

// Serve implements suture.Service.
func (c *CleanupService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			removed, err := c.manager.CleanupExpired(ctx)
			if err != nil {
				logging.Warn().Err(err).Msg("session cleanup failed")
				continue
			}
			if removed > 0 {
				logging.Debug().Int("removed", removed).Msg("expired sessions purged")
			}
		}
	}
}

func (c *CleanupService) String() string { return "session-cleanup" }

// HubService runs the websocket hub's event loop under supervision.
type HubService struct {
	hub *websocket.Hub
}

// NewHubService wraps the hub.
func NewHubService(hub *websocket.Hub) *HubService {
	return &HubService{hub: hub}
}

// Serve implements suture.Service. The hub loop exits only on context
// cancellation.
func (h *HubService) Serve(ctx context.Context) error {
	h.hub.Run(ctx)
	return ctx.Err()
}

func (h *HubService) String() string { return "websocket-hub" }
