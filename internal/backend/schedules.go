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

// ScheduleInput is the create/update payload for a program entry.
type ScheduleInput struct {
	Title       string              `json:"title" validate:"required,max=200"`
	Description string              `json:"description" validate:"omitempty,max=1000"`
	Date        string              `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime   string              `json:"startTime" validate:"required,datetime=15:04"`
	EndTime     string              `json:"endTime" validate:"required,datetime=15:04"`
	Location    string              `json:"location" validate:"required,max=200"`
	Type        models.ScheduleType `json:"type" validate:"required,oneof=prayer ceremony event"`
}

// ListSchedules returns the full Magal program.
func (c *Client) ListSchedules(ctx context.Context) ([]models.Schedule, error) {
	var schedules []models.Schedule
	if err := c.Do(ctx, Request{Path: "/api/schedules"}, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

// CreateSchedule adds a program entry.
func (c *Client) CreateSchedule(ctx context.Context, input ScheduleInput) (*models.Schedule, error) {
	var schedule models.Schedule
	if err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/schedules",
		Body:   input,
		CSRF:   true,
	}, &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// UpdateSchedule replaces a program entry.
func (c *Client) UpdateSchedule(ctx context.Context, id string, input ScheduleInput) (*models.Schedule, error) {
	var schedule models.Schedule
	if err := c.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   "/api/schedules/" + id,
		Body:   input,
		CSRF:   true,
	}, &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// DeleteSchedule removes a program entry.
func (c *Client) DeleteSchedule(ctx context.Context, id string) error {
	return c.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/api/schedules/" + id,
		CSRF:   true,
	}, nil)
}
