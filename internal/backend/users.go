// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package backend

import (
	"context"
	"net/http"

	"github.com/mbektemi/mbektemi/internal/models"
)

// UserUpdate is the admin payload for changing an account's role or
// status.
type UserUpdate struct {
	Role   models.Role `json:"role,omitempty" validate:"omitempty,oneof=pilgrim volunteer admin"`
	Status string      `json:"status,omitempty" validate:"omitempty,oneof=active inactive suspended"`
}

// ListUsers returns every account. Admin only; the backend enforces it
// and this layer just propagates the 403.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.Do(ctx, Request{Path: "/api/users"}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser changes an account's role or status.
func (c *Client) UpdateUser(ctx context.Context, id string, update UserUpdate) (*models.User, error) {
	var user models.User
	if err := c.Do(ctx, Request{
		Method: http.MethodPatch,
		Path:   "/api/users/" + id,
		Body:   update,
		CSRF:   true,
	}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/api/users/" + id,
		CSRF:   true,
	}, nil)
}
