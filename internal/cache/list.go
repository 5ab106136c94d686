// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

// Package cache provides a read-through TTL cache for backend list
// endpoints. It serves two purposes: shielding the Laravel backend from
// page-load bursts during the gathering, and providing the substrate for
// optimistic mutations with rollback.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/mbektemi/mbektemi/internal/metrics"
)

// List is a TTL cache over one backend list. The zero TTL disables
// caching entirely: every Get fetches.
type List[T any] struct {
	name string
	ttl  time.Duration

	mu        sync.Mutex
	items     []T
	fetchedAt time.Time
	valid     bool
	gen       uint64
}

// NewList creates a named list cache. The name labels cache metrics.
func NewList[T any](name string, ttl time.Duration) *List[T] {
	return &List[T]{name: name, ttl: ttl}
}

// Get returns the cached list when fresh, otherwise calls fetch and
// caches its result. Callers receive a copy of the slice; items are
// plain value structs, so mutating the copy cannot corrupt the cache.
func (l *List[T]) Get(ctx context.Context, fetch func(context.Context) ([]T, error)) ([]T, error) {
	l.mu.Lock()
	if l.fresh() {
		items := copySlice(l.items)
		l.mu.Unlock()
		metrics.CacheHits.WithLabelValues(l.name).Inc()
		return items, nil
	}
	l.mu.Unlock()

	metrics.CacheMisses.WithLabelValues(l.name).Inc()
	items, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.items = copySlice(items)
	l.fetchedAt = time.Now()
	l.valid = true
	l.gen++
	l.mu.Unlock()

	return items, nil
}

// Invalidate drops the cached list. The next Get fetches.
func (l *List[T]) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
	l.valid = false
	l.gen++
}

// Mutate applies an optimistic local change, then runs commit against the
// backend. When commit fails the snapshot is restored, so readers only
// ever observe either the pre-mutation or the committed state.
//
// When the cache holds nothing, apply is skipped and commit runs alone;
// there is no local state to be optimistic about.
func (l *List[T]) Mutate(ctx context.Context, apply func([]T) []T, commit func(context.Context) error) error {
	l.mu.Lock()
	hadState := l.fresh()
	var snapshot []T
	var snapshotGen uint64
	if hadState {
		snapshot = copySlice(l.items)
		snapshotGen = l.gen
		l.items = apply(copySlice(l.items))
	}
	l.mu.Unlock()

	err := commit(ctx)
	if err == nil {
		return nil
	}

	if hadState {
		l.mu.Lock()
		// Only roll back if no fetch or invalidation replaced the
		// optimistic state in the meantime.
		if l.valid && l.gen == snapshotGen {
			l.items = snapshot
		}
		l.mu.Unlock()
		metrics.CacheRollbacks.WithLabelValues(l.name).Inc()
	}
	return err
}

func (l *List[T]) fresh() bool {
	return l.valid && l.ttl > 0 && time.Since(l.fetchedAt) < l.ttl
}

func copySlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
