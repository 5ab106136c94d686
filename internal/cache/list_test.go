// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbektemi/mbektemi/internal/models"
)

func fetchCounter(items []models.Pilgrim) (func(context.Context) ([]models.Pilgrim, error), *int) {
	calls := 0
	return func(context.Context) ([]models.Pilgrim, error) {
		calls++
		return items, nil
	}, &calls
}

func TestGetCachesWithinTTL(t *testing.T) {
	ctx := context.Background()
	l := NewList[models.Pilgrim]("pilgrims", time.Minute)
	fetch, calls := fetchCounter([]models.Pilgrim{{ID: "p1", Status: models.PilgrimPending}})

	first, err := l.Get(ctx, fetch)
	require.NoError(t, err)
	second, err := l.Get(ctx, fetch)
	require.NoError(t, err)

	assert.Equal(t, 1, *calls)
	assert.Equal(t, first, second)
}

func TestGetRefetchesAfterTTL(t *testing.T) {
	ctx := context.Background()
	l := NewList[models.Pilgrim]("pilgrims", 10*time.Millisecond)
	fetch, calls := fetchCounter([]models.Pilgrim{{ID: "p1"}})

	_, err := l.Get(ctx, fetch)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	_, err = l.Get(ctx, fetch)
	require.NoError(t, err)

	assert.Equal(t, 2, *calls)
}

func TestZeroTTLDisablesCaching(t *testing.T) {
	ctx := context.Background()
	l := NewList[models.Pilgrim]("pilgrims", 0)
	fetch, calls := fetchCounter(nil)

	_, _ = l.Get(ctx, fetch)
	_, _ = l.Get(ctx, fetch)
	assert.Equal(t, 2, *calls)
}

func TestGetPropagatesFetchError(t *testing.T) {
	ctx := context.Background()
	l := NewList[models.Pilgrim]("pilgrims", time.Minute)
	boom := errors.New("backend down")

	_, err := l.Get(ctx, func(context.Context) ([]models.Pilgrim, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestInvalidateForcesRefetch(t *testing.T) {
	ctx := context.Background()
	l := NewList[models.Pilgrim]("pilgrims", time.Minute)
	fetch, calls := fetchCounter([]models.Pilgrim{{ID: "p1"}})

	_, _ = l.Get(ctx, fetch)
	l.Invalidate()
	_, _ = l.Get(ctx, fetch)
	assert.Equal(t, 2, *calls)
}

func TestMutateCommitsOptimistically(t *testing.T) {
	ctx := context.Background()
	l := NewList[models.Pilgrim]("pilgrims", time.Minute)
	fetch, _ := fetchCounter([]models.Pilgrim{{ID: "p1", Status: models.PilgrimPending}})
	_, err := l.Get(ctx, fetch)
	require.NoError(t, err)

	err = l.Mutate(ctx,
		func(items []models.Pilgrim) []models.Pilgrim {
			for i := range items {
				if items[i].ID == "p1" {
					items[i].Status = models.PilgrimConfirmed
				}
			}
			return items
		},
		func(context.Context) error { return nil },
	)
	require.NoError(t, err)

	// The cached read reflects the mutation without a refetch.
	items, err := l.Get(ctx, func(context.Context) ([]models.Pilgrim, error) {
		t.Fatal("must serve from cache")
		return nil, nil
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.PilgrimConfirmed, items[0].Status)
}

func TestMutateRollsBackOnCommitFailure(t *testing.T) {
	ctx := context.Background()
	l := NewList[models.Pilgrim]("pilgrims", time.Minute)
	fetch, _ := fetchCounter([]models.Pilgrim{{ID: "p1", Status: models.PilgrimPending}})
	_, err := l.Get(ctx, fetch)
	require.NoError(t, err)

	boom := errors.New("backend rejected the transition")
	err = l.Mutate(ctx,
		func(items []models.Pilgrim) []models.Pilgrim {
			items[0].Status = models.PilgrimConfirmed
			return items
		},
		func(context.Context) error { return boom },
	)
	assert.ErrorIs(t, err, boom)

	// The snapshot was restored: readers never see the failed state.
	items, err := l.Get(ctx, func(context.Context) ([]models.Pilgrim, error) {
		t.Fatal("must serve from cache")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.PilgrimPending, items[0].Status)
}

func TestMutateWithColdCacheJustCommits(t *testing.T) {
	ctx := context.Background()
	l := NewList[models.Pilgrim]("pilgrims", time.Minute)

	committed := false
	err := l.Mutate(ctx,
		func(items []models.Pilgrim) []models.Pilgrim {
			t.Fatal("apply must not run on a cold cache")
			return items
		},
		func(context.Context) error { committed = true; return nil },
	)
	require.NoError(t, err)
	assert.True(t, committed)
}

func TestGetReturnsCopies(t *testing.T) {
	ctx := context.Background()
	l := NewList[models.Pilgrim]("pilgrims", time.Minute)
	fetch, _ := fetchCounter([]models.Pilgrim{{ID: "p1", Status: models.PilgrimPending}})

	first, err := l.Get(ctx, fetch)
	require.NoError(t, err)
	first[0].Status = models.PilgrimCancelled

	second, err := l.Get(ctx, fetch)
	require.NoError(t, err)
	assert.Equal(t, models.PilgrimPending, second[0].Status)
}
