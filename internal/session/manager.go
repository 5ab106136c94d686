// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mbektemi/mbektemi/internal/backend"
	"github.com/mbektemi/mbektemi/internal/logging"
	"github.com/mbektemi/mbektemi/internal/metrics"
	"github.com/mbektemi/mbektemi/internal/models"
)

// Manager is the single writer for session state. Handlers read sessions
// through it and every mutation (resolve, login, register, logout) flows
// through one of its methods, which persist before returning.
type Manager struct {
	store   Store
	factory *backend.Factory
	ttl     time.Duration
}

// NewManager creates a session manager over the given store and backend
// client factory.
func NewManager(store Store, factory *backend.Factory, ttl time.Duration) *Manager {
	return &Manager{store: store, factory: factory, ttl: ttl}
}

// Ensure returns the session for id, creating a fresh one when id is
// empty, unknown, or expired. The second return value reports whether a
// new session was created (and a new cookie must be issued).
func (m *Manager) Ensure(ctx context.Context, id string) (*Session, bool, error) {
	if id != "" {
		session, err := m.store.Get(ctx, id)
		if err == nil {
			session.LastAccessedAt = time.Now()
			return session, false, nil
		}
		if !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionExpired) {
			return nil, false, fmt.Errorf("failed to load session: %w", err)
		}
	}

	now := time.Now()
	session := &Session{
		ID:             uuid.NewString(),
		Cookies:        backend.NewJar(),
		CreatedAt:      now,
		ExpiresAt:      now.Add(m.ttl),
		LastAccessedAt: now,
	}
	if err := m.store.Create(ctx, session); err != nil {
		return nil, false, fmt.Errorf("failed to create session: %w", err)
	}
	return session, true, nil
}

// Client returns a backend client bound to the session's cookie jar.
func (m *Manager) Client(session *Session) *backend.Client {
	return m.factory.ClientFor(session.Cookies)
}

// Resolve moves a Loading session to Authenticated or Anonymous by asking
// the backend who the visitor is. Resolution failures are indistinguishable
// from anonymity on purpose; the session is marked resolved either way.
// Already-resolved sessions return their cached user without a network
// call.
func (m *Manager) Resolve(ctx context.Context, session *Session) *models.User {
	if session.Resolved {
		return session.User
	}
	session.User = m.Client(session).CurrentUser(ctx)
	session.Resolved = true
	if err := m.save(ctx, session); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("failed to persist resolved session")
	}
	return session.User
}

// Login authenticates the session. On success the session becomes
// Authenticated with the returned user; on failure it is left untouched
// and the backend error propagates.
func (m *Manager) Login(ctx context.Context, session *Session, creds backend.Credentials) (*models.User, error) {
	user, err := m.Client(session).Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	session.User = user
	session.Resolved = true
	if err := m.save(ctx, session); err != nil {
		return nil, fmt.Errorf("login succeeded but session persistence failed: %w", err)
	}
	return user, nil
}

// Register creates an account and authenticates the session, with the
// same persistence contract as Login.
func (m *Manager) Register(ctx context.Context, session *Session, reg backend.Registration) (*models.User, error) {
	user, err := m.Client(session).Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	session.User = user
	session.Resolved = true
	if err := m.save(ctx, session); err != nil {
		return nil, fmt.Errorf("registration succeeded but session persistence failed: %w", err)
	}
	return user, nil
}

// Logout moves the session to Anonymous. It always succeeds locally:
// backend errors are swallowed by the client and persistence failures
// are only logged.
func (m *Manager) Logout(ctx context.Context, session *Session) {
	m.Client(session).Logout(ctx)
	session.User = nil
	session.Resolved = true
	if err := m.save(ctx, session); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("failed to persist logged-out session")
	}
}

// Invalidate discards the session entirely.
func (m *Manager) Invalidate(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

// CleanupExpired removes expired sessions and refreshes the session
// gauge. Called periodically by the cleanup worker.
func (m *Manager) CleanupExpired(ctx context.Context) (int, error) {
	removed, err := m.store.CleanupExpired(ctx)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		metrics.SessionsExpired.Add(float64(removed))
	}
	if count, countErr := m.store.Count(ctx); countErr == nil {
		metrics.ActiveSessions.Set(float64(count))
	}
	return removed, nil
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

func (m *Manager) save(ctx context.Context, session *Session) error {
	session.LastAccessedAt = time.Now()
	return m.store.Update(ctx, session)
}
