// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package backend

import (
	"context"
	"net/http"
	"strings"

	"github.com/mbektemi/mbektemi/internal/logging"
	"github.com/mbektemi/mbektemi/internal/models"
)

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is the account creation payload. The confirmation equality
// is checked locally before the backend ever sees the request; the
// backend enforces it again.
type Registration struct {
	FirstName            string `json:"firstName" validate:"required,max=100"`
	LastName             string `json:"lastName" validate:"required,max=100"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"passwordConfirmation" validate:"required,eqfield=Password"`
	Phone                string `json:"phone,omitempty" validate:"omitempty,max=30"`
}

// Login authenticates against the backend: CSRF bootstrap, credential
// POST, then a fetch of the authenticated user. The email is trimmed
// before sending. Backend errors propagate unchanged.
func (c *Client) Login(ctx context.Context, creds Credentials) (*models.User, error) {
	payload := Credentials{
		Email:    strings.TrimSpace(creds.Email),
		Password: creds.Password,
	}
	if err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/auth/login",
		Body:   payload,
		CSRF:   true,
	}, nil); err != nil {
		return nil, err
	}
	return c.fetchUser(ctx)
}

// Register creates an account and returns the authenticated user. The
// password confirmation mismatch is rejected before any network call.
func (c *Client) Register(ctx context.Context, reg Registration) (*models.User, error) {
	if reg.Password != reg.PasswordConfirmation {
		return nil, ErrPasswordMismatch
	}
	reg.Email = strings.TrimSpace(reg.Email)
	if err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/auth/register",
		Body:   reg,
		CSRF:   true,
	}, nil); err != nil {
		return nil, err
	}
	return c.fetchUser(ctx)
}

// Logout ends the backend session. Every error is swallowed: logout must
// always appear to succeed locally, and the jar is cleared regardless so
// no session cookie survives. Failures are logged for operators.
func (c *Client) Logout(ctx context.Context) {
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/auth/logout",
		CSRF:   true,
	}, nil)
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Msg("backend logout failed, clearing local session anyway")
	}
	c.jar.Clear()
}

// CurrentUser resolves the authenticated user for this session. It NEVER
// returns an error: any failure (timeout, 401, malformed payload) yields
// a nil user, which callers read as "anonymous".
func (c *Client) CurrentUser(ctx context.Context) *models.User {
	user, err := c.fetchUser(ctx)
	if err != nil {
		if !IsUnauthorized(err) {
			logging.Ctx(ctx).Debug().Err(err).Msg("current user resolution failed")
		}
		return nil
	}
	return user
}

func (c *Client) fetchUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.Do(ctx, Request{Path: "/api/auth/me"}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
