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

// NotificationInput is the create/update payload for an announcement.
// One rule set for every entry point: the message cap applies on create
// and update alike.
type NotificationInput struct {
	Title   string                  `json:"title" validate:"required,max=200"`
	Message string                  `json:"message" validate:"required,max=500"`
	Type    models.NotificationType `json:"type" validate:"required,oneof=info warning urgent"`
}

// ListNotifications returns announcements, newest first per the backend's
// ordering.
func (c *Client) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := c.Do(ctx, Request{Path: "/api/notifications"}, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// CreateNotification publishes an announcement.
func (c *Client) CreateNotification(ctx context.Context, input NotificationInput) (*models.Notification, error) {
	var notification models.Notification
	if err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/notifications",
		Body:   input,
		CSRF:   true,
	}, &notification); err != nil {
		return nil, err
	}
	return &notification, nil
}

// UpdateNotification edits an announcement.
func (c *Client) UpdateNotification(ctx context.Context, id string, input NotificationInput) (*models.Notification, error) {
	var notification models.Notification
	if err := c.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   "/api/notifications/" + id,
		Body:   input,
		CSRF:   true,
	}, &notification); err != nil {
		return nil, err
	}
	return &notification, nil
}

// DeleteNotification removes an announcement.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	return c.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/api/notifications/" + id,
		CSRF:   true,
	}, nil)
}

// MarkNotificationRead flags an announcement as read for this session's
// user. The read state stays server-authoritative: the updated record
// comes back from the backend.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) (*models.Notification, error) {
	var notification models.Notification
	if err := c.Do(ctx, Request{
		Method: http.MethodPatch,
		Path:   "/api/notifications/" + id + "/read",
		CSRF:   true,
	}, &notification); err != nil {
		return nil, err
	}
	return &notification, nil
}
