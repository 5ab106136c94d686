// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbektemi/mbektemi/internal/models"
)

// notificationStore is a backend double holding announcements in memory.
type notificationStore struct {
	mu    sync.Mutex
	next  int
	items []models.Notification
}

func (s *notificationStore) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/sanctum/csrf-cookie", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: "tok", Path: "/"})
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/api/notifications", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": s.items})
		case http.MethodPost:
			if r.Header.Get("X-XSRF-TOKEN") == "" {
				w.WriteHeader(419)
				return
			}
			var input NotificationInput
			_ = json.NewDecoder(r.Body).Decode(&input)
			s.next++
			n := models.Notification{
				ID:        fmt.Sprintf("n%d", s.next),
				Title:     input.Title,
				Message:   input.Message,
				Type:      input.Type,
				CreatedAt: time.Now().UTC(),
			}
			s.items = append(s.items, n)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": n})
		}
	})
	return mux
}

func TestNotificationCreateThenListRoundTrip(t *testing.T) {
	store := &notificationStore{}
	server := httptest.NewServer(store.handler())
	t.Cleanup(server.Close)
	client := NewFactory(server.URL, 5*time.Second).ClientFor(NewJar())

	created, err := client.CreateNotification(context.Background(), NotificationInput{
		Title:   "Route closure",
		Message: "Avenue Cheikh Ahmadou Bamba closed from 14:00",
		Type:    models.NotificationWarning,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	list, err := client.ListNotifications(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Route closure", list[0].Title)
	assert.Equal(t, "Avenue Cheikh Ahmadou Bamba closed from 14:00", list[0].Message)
	assert.Equal(t, models.NotificationWarning, list[0].Type)
}

func TestListPilgrimsPropagates401(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Unauthenticated."}`))
	}))

	pilgrims, err := client.ListPilgrims(context.Background())
	assert.Nil(t, pilgrims)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
}

func TestUpdatePilgrimStatus(t *testing.T) {
	var gotPath, gotMethod string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/sanctum/csrf-cookie" {
			http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: "tok", Path: "/"})
			w.WriteHeader(http.StatusNoContent)
			return
		}
		gotPath, gotMethod = r.URL.Path, r.Method
		_, _ = w.Write([]byte(`{"data":{"id":"p7","status":"confirmed"}}`))
	}))

	pilgrim, err := client.UpdatePilgrimStatus(context.Background(), "p7", PilgrimStatusUpdate{
		Status: models.PilgrimConfirmed,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PilgrimConfirmed, pilgrim.Status)
	assert.Equal(t, "/api/pilgrims/p7", gotPath)
	assert.Equal(t, http.MethodPatch, gotMethod)
}

func TestAdminMetricsFetch(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"pilgrims":{"total":120,"confirmed":80,"pending":30,"cancelled":10},"users":{"total":5,"active":4}}}`))
	}))

	m, err := client.AdminMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, m.Pilgrims.Total)
	assert.Equal(t, 80, m.Pilgrims.Confirmed)
	assert.Equal(t, 4, m.Users.Active)
}
