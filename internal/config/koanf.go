// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/mbektemi/config.yaml",
	"/etc/mbektemi/config.yml",
}

// ConfigPathEnvVar overrides the config file search entirely.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults. They are applied first, then
// overridden by the config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 10 * time.Second,
		},
		Session: SessionConfig{
			TTL:          24 * time.Hour,
			Store:        "memory",
			StorePath:    "/data/sessions",
			CookieName:   "mbektemi_session",
			CookieSecure: false,
			CleanupEvery: 5 * time.Minute,
		},
		CSRF: CSRFConfig{
			Enabled:      true,
			CookieName:   "XSRF-TOKEN",
			HeaderName:   "X-XSRF-TOKEN",
			CookieSecure: false,
		},
		CORS: CORSConfig{
			Origins: []string{"*"},
		},
		Rate: RateConfig{
			Disabled:      false,
			Requests:      100,
			Window:        time.Minute,
			LoginRequests: 10,
			LoginWindow:   time.Minute,
		},
		Cache: CacheConfig{
			TTL: 30 * time.Second,
		},
		Static: StaticConfig{
			Dir: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables (highest priority)
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// API_BASE_URL -> backend.base_url, HTTP_PORT -> server.port, etc.
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or empty string.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when they arrive as
// strings from environment variables.
var sliceConfigPaths = []string{
	"cors.origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped variables return empty string and are skipped, so stray
// environment variables cannot pollute the configuration.
//
// Examples:
//   - API_BASE_URL -> backend.base_url
//   - HTTP_PORT -> server.port
//   - SESSION_STORE -> session.store
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server
		"http_host":             "server.host",
		"http_port":             "server.port",
		"http_timeout":          "server.timeout",
		"http_shutdown_timeout": "server.shutdown_timeout",

		// Backend
		"api_base_url": "backend.base_url",
		"api_timeout":  "backend.timeout",

		// Session
		"session_ttl":           "session.ttl",
		"session_store":         "session.store",
		"session_store_path":    "session.store_path",
		"session_cookie_name":   "session.cookie_name",
		"session_cookie_secure": "session.cookie_secure",
		"session_cleanup_every": "session.cleanup_every",

		// CSRF
		"csrf_enabled":       "csrf.enabled",
		"csrf_cookie_name":   "csrf.cookie_name",
		"csrf_header_name":   "csrf.header_name",
		"csrf_cookie_secure": "csrf.cookie_secure",

		// CORS
		"cors_origins": "cors.origins",

		// Rate limiting
		"disable_rate_limit":      "rate.disabled",
		"rate_limit_requests":     "rate.requests",
		"rate_limit_window":       "rate.window",
		"rate_limit_login":        "rate.login_requests",
		"rate_limit_login_window": "rate.login_window",

		// Cache
		"cache_ttl": "cache.ttl",

		// Static assets
		"static_dir": "static.dir",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
