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

// PilgrimInput is the creation payload for a pilgrim registration.
type PilgrimInput struct {
	FirstName     string `json:"firstName" validate:"required,max=100"`
	LastName      string `json:"lastName" validate:"required,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,max=30"`
	City          string `json:"city" validate:"required,max=100"`
	Country       string `json:"country" validate:"required,max=100"`
	Accommodation string `json:"accommodation" validate:"required,max=200"`
	SpecialNeeds  string `json:"specialNeeds,omitempty" validate:"omitempty,max=500"`
}

// PilgrimStatusUpdate changes a registration's status.
type PilgrimStatusUpdate struct {
	Status models.PilgrimStatus `json:"status" validate:"required,oneof=pending confirmed cancelled"`
}

// ListPilgrims returns every pilgrim registration visible to the session.
func (c *Client) ListPilgrims(ctx context.Context) ([]models.Pilgrim, error) {
	var pilgrims []models.Pilgrim
	if err := c.Do(ctx, Request{Path: "/api/pilgrims"}, &pilgrims); err != nil {
		return nil, err
	}
	return pilgrims, nil
}

// CreatePilgrim registers a new pilgrim and returns the created record.
func (c *Client) CreatePilgrim(ctx context.Context, input PilgrimInput) (*models.Pilgrim, error) {
	var pilgrim models.Pilgrim
	if err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/pilgrims",
		Body:   input,
		CSRF:   true,
	}, &pilgrim); err != nil {
		return nil, err
	}
	return &pilgrim, nil
}

// UpdatePilgrimStatus transitions a registration and returns the updated
// record. The backend takes the status change as a plain PATCH on the
// registration; the body carries the new status.
func (c *Client) UpdatePilgrimStatus(ctx context.Context, id string, update PilgrimStatusUpdate) (*models.Pilgrim, error) {
	var pilgrim models.Pilgrim
	if err := c.Do(ctx, Request{
		Method: http.MethodPatch,
		Path:   "/api/pilgrims/" + id,
		Body:   update,
		CSRF:   true,
	}, &pilgrim); err != nil {
		return nil, err
	}
	return &pilgrim, nil
}

// DeletePilgrim removes a registration.
func (c *Client) DeletePilgrim(ctx context.Context, id string) error {
	return c.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/api/pilgrims/" + id,
		CSRF:   true,
	}, nil)
}
