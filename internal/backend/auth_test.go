// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package backend

import (
	"context"
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

// authBackend is a minimal Laravel double covering the auth endpoints.
type authBackend struct {
	mu        sync.Mutex
	loggedIn  bool
	lastLogin Credentials
}

func (b *authBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/sanctum/csrf-cookie", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: "tok", Path: "/"})
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		b.mu.Lock()
		b.lastLogin = creds
		b.mu.Unlock()
		if creds.Email != "admin@mbektemi.sn" || creds.Password != "s3cret-magal" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		b.mu.Lock()
		b.loggedIn = true
		b.mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: "laravel_session", Value: "sess-1", Path: "/"})
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		loggedIn := b.loggedIn
		b.mu.Unlock()
		if !loggedIn {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Unauthenticated."}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"id":"u1","email":"admin@mbektemi.sn","firstName":"Serigne","lastName":"Diop","role":"admin"}}`))
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.loggedIn = false
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func newAuthClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewFactory(server.URL, 5*time.Second).ClientFor(NewJar())
}

func TestLoginSuccessResolvesAdmin(t *testing.T) {
	backend := &authBackend{}
	client := newAuthClient(t, backend.handler())

	user, err := client.Login(context.Background(), Credentials{
		Email:    "  admin@mbektemi.sn  ",
		Password: "s3cret-magal",
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, "admin@mbektemi.sn", user.Email)

	// The email was trimmed before the wire.
	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Equal(t, "admin@mbektemi.sn", backend.lastLogin.Email)
}

func TestLoginFailurePropagatesStatus(t *testing.T) {
	backend := &authBackend{}
	client := newAuthClient(t, backend.handler())

	user, err := client.Login(context.Background(), Credentials{
		Email:    "admin@mbektemi.sn",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Nil(t, user)
	assert.True(t, IsUnauthorized(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
}

func TestRegisterRejectsMismatchBeforeNetwork(t *testing.T) {
	// A handler that fails the test if it is ever reached.
	client := newAuthClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called on local validation failure")
	}))

	user, err := client.Register(context.Background(), Registration{
		FirstName:            "Fatou",
		LastName:             "Ndiaye",
		Email:                "fatou@mbektemi.sn",
		Password:             "s3cret-magal",
		PasswordConfirmation: "different",
	})
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestCurrentUserNeverErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"backend 401", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}},
		{"backend 500", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data": {`))
		}},
		{"timeout", func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			t.Cleanup(server.Close)
			client := NewFactory(server.URL, 50*time.Millisecond).ClientFor(NewJar())

			user := client.CurrentUser(context.Background())
			assert.Nil(t, user)
		})
	}
}

func TestLogoutSwallowsBackendErrors(t *testing.T) {
	client := newAuthClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	jar := client.Jar()
	jar.SetCookies(nil, []*http.Cookie{{Name: "laravel_session", Value: "sess"}})

	// Must not panic and must clear the jar even when everything fails.
	client.Logout(context.Background())
	_, ok := jar.Cookie("laravel_session")
	assert.False(t, ok)
}

func TestLogoutEndsBackendSession(t *testing.T) {
	backend := &authBackend{}
	client := newAuthClient(t, backend.handler())

	_, err := client.Login(context.Background(), Credentials{
		Email:    "admin@mbektemi.sn",
		Password: "s3cret-magal",
	})
	require.NoError(t, err)
	require.NotNil(t, client.CurrentUser(context.Background()))

	client.Logout(context.Background())
	assert.Nil(t, client.CurrentUser(context.Background()))
}
