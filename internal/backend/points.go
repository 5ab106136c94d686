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

// POIInput is the create/update payload for a point of interest.
type POIInput struct {
	Name         string             `json:"name" validate:"required,max=120"`
	Description  string             `json:"description" validate:"omitempty,max=1000"`
	Address      string             `json:"address" validate:"required,max=200"`
	Latitude     float64            `json:"latitude" validate:"latitude"`
	Longitude    float64            `json:"longitude" validate:"longitude"`
	Category     models.POICategory `json:"category" validate:"required,oneof=mosque health food lodging transport info"`
	IsOpen       bool               `json:"isOpen"`
	OpeningHours string             `json:"openingHours,omitempty" validate:"omitempty,max=100"`
	Phone        string             `json:"phone,omitempty" validate:"omitempty,max=30"`
}

// ListPointsOfInterest returns every mapped location.
func (c *Client) ListPointsOfInterest(ctx context.Context) ([]models.PointOfInterest, error) {
	var points []models.PointOfInterest
	if err := c.Do(ctx, Request{Path: "/api/points-of-interest"}, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// CreatePointOfInterest adds a mapped location.
func (c *Client) CreatePointOfInterest(ctx context.Context, input POIInput) (*models.PointOfInterest, error) {
	var point models.PointOfInterest
	if err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/points-of-interest",
		Body:   input,
		CSRF:   true,
	}, &point); err != nil {
		return nil, err
	}
	return &point, nil
}

// UpdatePointOfInterest replaces a mapped location.
func (c *Client) UpdatePointOfInterest(ctx context.Context, id string, input POIInput) (*models.PointOfInterest, error) {
	var point models.PointOfInterest
	if err := c.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   "/api/points-of-interest/" + id,
		Body:   input,
		CSRF:   true,
	}, &point); err != nil {
		return nil, err
	}
	return &point, nil
}

// DeletePointOfInterest removes a mapped location.
func (c *Client) DeletePointOfInterest(ctx context.Context, id string) error {
	return c.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/api/points-of-interest/" + id,
		CSRF:   true,
	}, nil)
}
