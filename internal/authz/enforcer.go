// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

// Package authz enforces role-based access to the gated API surface
// using Casbin. The model and policy ship embedded so a deployment works
// with zero extra files; a policy file on disk overrides the embedded
// one for operators who need custom rules.
//
// Roles form a hierarchy: admin inherits volunteer, volunteer inherits
// pilgrim. Objects are route paths, actions are HTTP methods.
package authz

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/mbektemi/mbektemi/internal/models"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Enforcer answers "may this role hit this route with this method".
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer builds an enforcer from the embedded model and policy.
// When policyPath names an existing file it replaces the embedded
// policy.
func NewEnforcer(policyPath string) (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if policyPath != "" && fileExists(policyPath) {
		adapter := fileadapter.NewAdapter(policyPath)
		enforcer, err = casbin.NewSyncedEnforcer(m, adapter)
		if err != nil {
			return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
		}
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err != nil {
			return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
		}
		if err := loadEmbeddedPolicy(enforcer, embeddedPolicy); err != nil {
			return nil, err
		}
	}

	return &Enforcer{enforcer: enforcer}, nil
}

// Authorize reports whether role may perform method on path. Unknown
// roles are denied.
func (e *Enforcer) Authorize(role models.Role, path, method string) (bool, error) {
	if !role.Valid() {
		return false, nil
	}
	allowed, err := e.enforcer.Enforce(string(role), path, method)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	return allowed, nil
}

// loadEmbeddedPolicy parses the embedded policy CSV line by line.
func loadEmbeddedPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) < 2 {
			continue
		}

		switch parts[0] {
		case "p":
			if len(parts) >= 4 {
				if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
					return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
				}
			}
		case "g":
			if len(parts) >= 3 {
				if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
					return fmt.Errorf("failed to add grouping policy %v: %w", parts[1:], err)
				}
			}
		}
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
