// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package backend

import (
	"context"

	"github.com/mbektemi/mbektemi/internal/models"
)

// AdminMetrics fetches the read-only dashboard aggregate. All counts are
// computed by the backend; nothing is derived or cached locally.
func (c *Client) AdminMetrics(ctx context.Context) (*models.AdminMetrics, error) {
	var m models.AdminMetrics
	if err := c.Do(ctx, Request{Path: "/api/admin/metrics"}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Ping verifies backend reachability for the readiness probe. Any HTTP
// response, including 401, proves the backend is up; only transport
// failures and 5xx count as down.
func (c *Client) Ping(ctx context.Context) error {
	err := c.Do(ctx, Request{Path: "/api/health"}, nil)
	if err != nil && StatusCode(err) >= 400 && StatusCode(err) < 500 {
		return nil
	}
	return err
}
