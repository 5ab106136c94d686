// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package web

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mbektemi/mbektemi/internal/authz"
	"github.com/mbektemi/mbektemi/internal/backend"
	"github.com/mbektemi/mbektemi/internal/config"
	"github.com/mbektemi/mbektemi/internal/models"
	"github.com/mbektemi/mbektemi/internal/session"
	"github.com/mbektemi/mbektemi/internal/websocket"
)

const stubCSRFToken = "stub-token"

type stubAccount struct {
	password string
	user     models.User
}

// laravelStub fakes the Laravel backend: Sanctum CSRF handshake, cookie
// sessions, and the resource endpoints the handlers under test reach.
type laravelStub struct {
	mu       sync.Mutex
	accounts map[string]stubAccount
	sessions map[string]models.User
	pilgrims []models.Pilgrim

	schedules     []models.Schedule
	scheduleCalls int

	failStatusUpdate bool
	failLogout       bool
	meCalls          int
}

func newLaravelStub() *laravelStub {
	return &laravelStub{
		accounts: make(map[string]stubAccount),
		sessions: make(map[string]models.User),
	}
}

func (l *laravelStub) addAccount(email, password string, role models.Role) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[email] = stubAccount{
		password: password,
		user: models.User{
			ID:        uuid.NewString(),
			Email:     email,
			FirstName: "Test",
			LastName:  "User",
			Role:      role,
		},
	}
}

func (l *laravelStub) meCallCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.meCalls
}

func (l *laravelStub) scheduleCallCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.scheduleCalls
}

func (l *laravelStub) currentUser(r *http.Request) (models.User, bool) {
	cookie, err := r.Cookie("laravel_session")
	if err != nil {
		return models.User{}, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	user, ok := l.sessions[cookie.Value]
	return user, ok
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

func (l *laravelStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/sanctum/csrf-cookie":
		http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: stubCSRFToken, Path: "/"})
		w.WriteHeader(http.StatusNoContent)

	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/login":
		if !l.mutationAllowed(w, r) {
			return
		}
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&creds)

		l.mu.Lock()
		account, ok := l.accounts[creds.Email]
		l.mu.Unlock()
		if !ok || account.password != creds.Password {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"These credentials do not match our records."}`))
			return
		}

		sessionID := uuid.NewString()
		l.mu.Lock()
		l.sessions[sessionID] = account.user
		l.mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: "laravel_session", Value: sessionID, Path: "/"})
		writeData(w, http.StatusOK, map[string]string{"message": "ok"})

	case r.Method == http.MethodGet && r.URL.Path == "/api/auth/me":
		l.mu.Lock()
		l.meCalls++
		l.mu.Unlock()
		user, ok := l.currentUser(r)
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeData(w, http.StatusOK, user)

	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/logout":
		if !l.mutationAllowed(w, r) {
			return
		}
		l.mu.Lock()
		failLogout := l.failLogout
		l.mu.Unlock()
		if failLogout {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if cookie, err := r.Cookie("laravel_session"); err == nil {
			l.mu.Lock()
			delete(l.sessions, cookie.Value)
			l.mu.Unlock()
		}
		w.WriteHeader(http.StatusNoContent)

	case r.Method == http.MethodGet && r.URL.Path == "/api/users":
		if _, ok := l.currentUser(r); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		l.mu.Lock()
		users := make([]models.User, 0, len(l.accounts))
		for _, account := range l.accounts {
			users = append(users, account.user)
		}
		l.mu.Unlock()
		writeData(w, http.StatusOK, users)

	case r.Method == http.MethodGet && r.URL.Path == "/api/schedules":
		l.mu.Lock()
		l.scheduleCalls++
		schedules := l.schedules
		l.mu.Unlock()
		writeData(w, http.StatusOK, schedules)

	case r.Method == http.MethodGet && r.URL.Path == "/api/pilgrims":
		if _, ok := l.currentUser(r); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		l.mu.Lock()
		pilgrims := append([]models.Pilgrim(nil), l.pilgrims...)
		l.mu.Unlock()
		writeData(w, http.StatusOK, pilgrims)

	case r.Method == http.MethodPost && r.URL.Path == "/api/pilgrims":
		if !l.mutationAllowed(w, r) {
			return
		}
		var input backend.PilgrimInput
		_ = json.NewDecoder(r.Body).Decode(&input)
		pilgrim := models.Pilgrim{
			ID:        uuid.NewString(),
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Email:     input.Email,
			Status:    models.PilgrimPending,
		}
		l.mu.Lock()
		l.pilgrims = append(l.pilgrims, pilgrim)
		l.mu.Unlock()
		writeData(w, http.StatusCreated, pilgrim)

	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/api/pilgrims/"):
		if !l.mutationAllowed(w, r) {
			return
		}
		l.mu.Lock()
		failStatus := l.failStatusUpdate
		l.mu.Unlock()
		if failStatus {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/api/pilgrims/")
		var update backend.PilgrimStatusUpdate
		_ = json.NewDecoder(r.Body).Decode(&update)

		l.mu.Lock()
		defer l.mu.Unlock()
		for i := range l.pilgrims {
			if l.pilgrims[i].ID == id {
				l.pilgrims[i].Status = update.Status
				writeData(w, http.StatusOK, l.pilgrims[i])
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// mutationAllowed enforces the stub's Sanctum discipline: mutating calls
// need the token obtained from the csrf-cookie endpoint.
func (l *laravelStub) mutationAllowed(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("X-XSRF-TOKEN") != stubCSRFToken {
		w.WriteHeader(419)
		return false
	}
	return true
}

func testConfig(backendURL string) *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Host: "127.0.0.1", Port: 3000, Timeout: 5 * time.Second, ShutdownTimeout: time.Second},
		Backend: config.BackendConfig{BaseURL: backendURL, Timeout: 2 * time.Second},
		Session: config.SessionConfig{TTL: time.Hour, Store: "memory", CookieName: "mbektemi_session", CleanupEvery: time.Minute},
		CSRF:    config.CSRFConfig{CookieName: "XSRF-TOKEN", HeaderName: "X-XSRF-TOKEN"},
		CORS:    config.CORSConfig{Origins: []string{"*"}},
		Rate:    config.RateConfig{Disabled: true},
		Cache:   config.CacheConfig{TTL: 30 * time.Second},
		Logging: config.LoggingConfig{Level: "error", Format: "json"},
	}
}

type webTest struct {
	stub   *laravelStub
	server *httptest.Server
	client *http.Client
}

// newWebTest spins up a stub backend and a full application server in
// front of it. The returned client carries cookies like a browser.
func newWebTest(t *testing.T, configure func(cfg *config.Config)) *webTest {
	t.Helper()

	stub := newLaravelStub()
	backendSrv := httptest.NewServer(stub)
	t.Cleanup(backendSrv.Close)

	cfg := testConfig(backendSrv.URL)
	if configure != nil {
		configure(cfg)
	}

	factory := backend.NewFactory(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	manager := session.NewManager(session.NewMemoryStore(), factory, cfg.Session.TTL)

	enforcer, err := authz.NewEnforcer("")
	require.NoError(t, err)

	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	app := NewServer(cfg, manager, factory, enforcer, hub)
	webSrv := httptest.NewServer(app.Router())
	t.Cleanup(webSrv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &webTest{
		stub:   stub,
		server: webSrv,
		client: &http.Client{Jar: jar},
	}
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code     string `json:"code"`
		Message  string `json:"message"`
		Redirect string `json:"redirect"`
	} `json:"error"`
}

// do issues a JSON request against the application server and decodes
// the envelope.
func (wt *webTest) do(t *testing.T, method, path string, body interface{}, header http.Header) (int, testEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, wt.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := wt.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope testEnvelope
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	}
	return resp.StatusCode, envelope
}

// login authenticates the test client as the given stub account.
func (wt *webTest) login(t *testing.T, email, password string) {
	t.Helper()
	status, envelope := wt.do(t, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusOK, status)
	require.True(t, envelope.Success)
}

// csrfToken pulls the double-submit token the server planted in the jar.
func (wt *webTest) csrfToken(t *testing.T, name string) string {
	t.Helper()
	target, err := url.Parse(wt.server.URL)
	require.NoError(t, err)
	for _, cookie := range wt.client.Jar.Cookies(target) {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}
