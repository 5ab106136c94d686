// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

// Package config loads and validates the application configuration from
// layered sources: built-in defaults, an optional YAML file, then
// environment variables (highest priority).
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config is the complete application configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Backend BackendConfig `koanf:"backend"`
	Session SessionConfig `koanf:"session"`
	CSRF    CSRFConfig    `koanf:"csrf"`
	CORS    CORSConfig    `koanf:"cors"`
	Rate    RateConfig    `koanf:"rate"`
	Cache   CacheConfig   `koanf:"cache"`
	Static  StaticConfig  `koanf:"static"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`          // read/write timeout
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"` // graceful drain window
}

// BackendConfig points at the Laravel API that owns all persistent state.
type BackendConfig struct {
	BaseURL string        `koanf:"base_url"` // e.g. http://localhost:8000
	Timeout time.Duration `koanf:"timeout"`  // per-request budget
}

// SessionConfig controls visitor sessions held against the backend.
type SessionConfig struct {
	TTL          time.Duration `koanf:"ttl"`
	Store        string        `koanf:"store"`      // memory | badger
	StorePath    string        `koanf:"store_path"` // badger only
	CookieName   string        `koanf:"cookie_name"`
	CookieSecure bool          `koanf:"cookie_secure"`
	CleanupEvery time.Duration `koanf:"cleanup_every"`
}

// CSRFConfig controls double-submit cookie protection on our own
// mutating endpoints. The backend's Sanctum CSRF handshake is separate
// and not configurable.
type CSRFConfig struct {
	Enabled      bool   `koanf:"enabled"`
	CookieName   string `koanf:"cookie_name"`
	HeaderName   string `koanf:"header_name"`
	CookieSecure bool   `koanf:"cookie_secure"`
}

// CORSConfig controls cross-origin access for the browser UI.
type CORSConfig struct {
	Origins []string `koanf:"origins"`
}

// RateConfig holds per-IP rate limits.
type RateConfig struct {
	Disabled      bool          `koanf:"disabled"`
	Requests      int           `koanf:"requests"`       // global requests per window
	Window        time.Duration `koanf:"window"`         // global window
	LoginRequests int           `koanf:"login_requests"` // stricter budget on login
	LoginWindow   time.Duration `koanf:"login_window"`
}

// CacheConfig controls the read-through cache over public backend lists.
type CacheConfig struct {
	TTL time.Duration `koanf:"ttl"`
}

// StaticConfig locates the built browser UI assets.
type StaticConfig struct {
	Dir string `koanf:"dir"` // empty disables static serving
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Validate checks the configuration for internal consistency. It is called
// after all layers are merged, so defaults have already been applied.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url %q is not a valid absolute URL", c.Backend.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.base_url scheme must be http or https, got %q", u.Scheme)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive, got %s", c.Backend.Timeout)
	}

	switch c.Session.Store {
	case "memory":
	case "badger":
		if c.Session.StorePath == "" {
			return fmt.Errorf("session.store_path is required when session.store is badger")
		}
	default:
		return fmt.Errorf("session.store must be memory or badger, got %q", c.Session.Store)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive, got %s", c.Session.TTL)
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("session.cookie_name is required")
	}

	if !c.Rate.Disabled {
		if c.Rate.Requests <= 0 || c.Rate.Window <= 0 {
			return fmt.Errorf("rate.requests and rate.window must be positive when rate limiting is enabled")
		}
		if c.Rate.LoginRequests <= 0 || c.Rate.LoginWindow <= 0 {
			return fmt.Errorf("rate.login_requests and rate.login_window must be positive when rate limiting is enabled")
		}
	}

	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	return nil
}

// BackendURL joins the backend base URL with a path. The path is expected
// to begin with a slash.
func (c *Config) BackendURL(path string) string {
	return strings.TrimRight(c.Backend.BaseURL, "/") + path
}
