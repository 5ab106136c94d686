// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package web

import (
	"context"
	"net/http"

	"github.com/mbektemi/mbektemi/internal/logging"
	"github.com/mbektemi/mbektemi/internal/models"
	"github.com/mbektemi/mbektemi/internal/session"
)

type contextKey string

const sessionContextKey contextKey = "mbektemi.session"

// withSession attaches the visitor's session to the request context,
// creating one (and issuing the cookie) on first contact. Nothing here
// talks to the backend; resolution is deferred until a handler needs
// the user.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if cookie, err := r.Cookie(s.cfg.Session.CookieName); err == nil {
			id = cookie.Value
		}

		sess, created, err := s.sessions.Ensure(r.Context(), id)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("failed to establish session")
			respondError(w, http.StatusInternalServerError, CodeBackendError,
				"Could not establish a session", nil)
			return
		}

		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     s.cfg.Session.CookieName,
				Value:    sess.ID,
				Path:     "/",
				MaxAge:   int(s.sessions.TTL().Seconds()),
				HttpOnly: true,
				Secure:   s.cfg.Session.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		s.issueCSRFCookie(w, r)

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFrom returns the session placed in the context by withSession.
func sessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionContextKey).(*session.Session)
	return sess
}

// resolveUser returns the session's user, asking the backend once if the
// session is still unresolved.
func (s *Server) resolveUser(r *http.Request) *models.User {
	sess := sessionFrom(r.Context())
	if sess == nil {
		return nil
	}
	return s.sessions.Resolve(r.Context(), sess)
}

// authorize gates a route on the visitor's role. Anonymous visitors get
// 401 with a login redirect; authenticated visitors whose role does not
// cover the route get 403.
func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := s.resolveUser(r)
		if user == nil {
			respondErrorRedirect(w, http.StatusUnauthorized, CodeUnauthenticated,
				"You must be logged in to access this resource", nil, loginRedirect)
			return
		}

		allowed, err := s.enforcer.Authorize(user.Role, r.URL.Path, r.Method)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).
				Str("role", string(user.Role)).
				Str("path", r.URL.Path).
				Msg("authorization check failed")
			respondError(w, http.StatusInternalServerError, CodeForbidden,
				"Authorization check failed", nil)
			return
		}
		if !allowed {
			logging.Ctx(r.Context()).Warn().
				Str("role", string(user.Role)).
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Msg("access denied")
			respondError(w, http.StatusForbidden, CodeForbidden,
				"You do not have permission to perform this action", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
