// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

// Package session manages per-visitor sessions against the Laravel
// backend. Each session owns a cookie jar holding the backend's session
// material plus a cached snapshot of the authenticated user.
//
// A session's observable auth state walks a small machine:
//
//	Loading -> Authenticated(user) | Anonymous
//
// Loading means the user has not been resolved yet; Anonymous means the
// resolution happened and came back empty. The two are distinct so a
// request never mistakes "not yet asked" for "not logged in".
package session

import (
	"context"
	"errors"
	"time"

	"github.com/mbektemi/mbektemi/internal/backend"
	"github.com/mbektemi/mbektemi/internal/models"
)

var (
	// ErrSessionNotFound is returned when no session exists for an ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when a session exists but its TTL
	// has elapsed.
	ErrSessionExpired = errors.New("session expired")
)

// State is the visitor's observable authentication state.
type State string

const (
	// StateLoading means the user has not been resolved against the
	// backend yet.
	StateLoading State = "loading"

	// StateAuthenticated means the backend confirmed a user.
	StateAuthenticated State = "authenticated"

	// StateAnonymous means resolution completed with no user.
	StateAnonymous State = "anonymous"
)

// Session is one visitor's state. All fields serialize so sessions can
// live in BadgerDB across restarts.
type Session struct {
	ID             string       `json:"id"`
	User           *models.User `json:"user,omitempty"`
	Resolved       bool         `json:"resolved"`
	Cookies        *backend.Jar `json:"cookies"`
	CreatedAt      time.Time    `json:"createdAt"`
	ExpiresAt      time.Time    `json:"expiresAt"`
	LastAccessedAt time.Time    `json:"lastAccessedAt"`
}

// State reports the session's position in the auth state machine.
func (s *Session) State() State {
	if !s.Resolved {
		return StateLoading
	}
	if s.User != nil {
		return StateAuthenticated
	}
	return StateAnonymous
}

// IsExpired reports whether the session's TTL has elapsed.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// clone returns an independent deep copy so store callers can never
// alias each other's state.
func (s *Session) clone() *Session {
	copied := *s
	if s.User != nil {
		user := *s.User
		copied.User = &user
	}
	if s.Cookies != nil {
		copied.Cookies = s.Cookies.Clone()
	}
	return &copied
}

// Store persists sessions. Implementations must be safe for concurrent
// use and must never hand out aliased Session values.
type Store interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error

	// CleanupExpired removes sessions past their TTL and returns how
	// many were removed.
	CleanupExpired(ctx context.Context) (int, error)

	// Count returns the number of stored sessions, expired or not.
	Count(ctx context.Context) (int, error)

	// Close releases store resources.
	Close() error
}
