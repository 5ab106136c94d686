// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbektemi/mbektemi/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	factory := NewFactory(server.URL, 5*time.Second)
	return factory.ClientFor(NewJar())
}

func TestDoUnwrapsDataEnvelope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"s1","title":"Fajr","type":"prayer"}}`))
	}))

	var schedule models.Schedule
	err := client.Do(context.Background(), Request{Path: "/api/schedules/s1"}, &schedule)
	require.NoError(t, err)
	assert.Equal(t, "s1", schedule.ID)
	assert.Equal(t, "Fajr", schedule.Title)
	assert.Equal(t, models.SchedulePrayer, schedule.Type)
}

func TestDoDecodesRawPayloadWithoutEnvelope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"s2","title":"Ziar"}`))
	}))

	var schedule models.Schedule
	err := client.Do(context.Background(), Request{Path: "/api/schedules/s2"}, &schedule)
	require.NoError(t, err)
	assert.Equal(t, "s2", schedule.ID)
}

func TestDoReadsLargeSuccessBodyInFull(t *testing.T) {
	// Well past the error-body cap; success responses must never be
	// truncated.
	const count = 400
	pilgrims := make([]models.Pilgrim, count)
	for i := range pilgrims {
		pilgrims[i] = models.Pilgrim{
			ID:            uuid.NewString(),
			FirstName:     "Awa",
			LastName:      "Diop",
			Email:         "awa@example.sn",
			City:          "Dakar",
			Country:       "Senegal",
			Accommodation: strings.Repeat("Family house near Darou Khoudoss. ", 10),
			Status:        models.PilgrimPending,
		}
	}
	payload, err := json.Marshal(map[string]interface{}{"data": pilgrims})
	require.NoError(t, err)
	require.Greater(t, len(payload), maxErrorBodySize)

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(payload)
	}))

	got, err := client.ListPilgrims(context.Background())
	require.NoError(t, err)
	require.Len(t, got, count)
	assert.Equal(t, pilgrims[count-1].ID, got[count-1].ID)
}

func TestDoCapsErrorBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", maxErrorBodySize+4096)))
	}))

	err := client.Do(context.Background(), Request{Path: "/api/pilgrims"}, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.LessOrEqual(t, len(apiErr.Payload), maxErrorBodySize)
}

func TestDoSetsStandardHeaders(t *testing.T) {
	var gotAccept, gotContentType string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			gotAccept = r.Header.Get("Accept")
			gotContentType = r.Header.Get("Content-Type")
		}
		_, _ = w.Write([]byte(`{}`))
	}))

	err := client.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/api/echo",
		Body:   map[string]string{"k": "v"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "application/json", gotContentType)
}

func TestDoBuildsAPIErrorFromMessageField(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"The email field is required."}`))
	}))

	err := client.Do(context.Background(), Request{Path: "/api/pilgrims"}, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "The email field is required.", apiErr.Message)
}

func TestDoFallsBackToStatusText(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`not json`))
	}))

	err := client.Do(context.Background(), Request{Path: "/api/schedules"}, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), apiErr.Message)
}

func TestDoTimesOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(server.Close)

	factory := NewFactory(server.URL, 20*time.Millisecond)
	client := factory.ClientFor(NewJar())

	err := client.Do(context.Background(), Request{Path: "/api/slow"}, nil)
	require.Error(t, err)
	// Timeouts surface like any other network error; no APIError, no
	// status code.
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Equal(t, 0, StatusCode(err))
}

func TestDoRespectsCallerContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(server.Close)

	factory := NewFactory(server.URL, 5*time.Second)
	client := factory.ClientFor(NewJar())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := client.Do(ctx, Request{Path: "/api/slow"}, nil)
	require.Error(t, err)
}

func TestIsUnauthorized(t *testing.T) {
	assert.True(t, IsUnauthorized(&APIError{StatusCode: 401}))
	assert.True(t, IsUnauthorized(&APIError{StatusCode: 419}))
	assert.False(t, IsUnauthorized(&APIError{StatusCode: 403}))
	assert.False(t, IsUnauthorized(errors.New("network down")))
	assert.False(t, IsUnauthorized(nil))
}

func TestCircuitBreakerOpensOnRepeated5xx(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	// Enough failures to cross the 60%-of-10 trip threshold.
	for i := 0; i < 12; i++ {
		_ = client.Do(context.Background(), Request{Path: "/api/schedules"}, nil)
	}

	err := client.Do(context.Background(), Request{Path: "/api/schedules"}, nil)
	require.Error(t, err)
	// Once open, calls are rejected without reaching the backend and
	// carry no status code.
	assert.Equal(t, 0, StatusCode(err))
}

func TestCircuitBreakerIgnores4xx(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
	}))

	// 4xx responses never open the circuit, however many there are.
	for i := 0; i < 20; i++ {
		err := client.Do(context.Background(), Request{Path: "/api/schedules/nope"}, nil)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	}
}
