// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package web

import (
	"crypto/subtle"
	"net/http"

	"github.com/google/uuid"
)

// issueCSRFCookie hands the browser a CSRF token on first contact. The
// cookie is deliberately readable by scripts; the protection comes from
// the attacker's inability to read it cross-origin, not from hiding it.
func (s *Server) issueCSRFCookie(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.CSRF.Enabled {
		return
	}
	if _, err := r.Cookie(s.cfg.CSRF.CookieName); err == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CSRF.CookieName,
		Value:    uuid.NewString(),
		Path:     "/",
		MaxAge:   int(s.sessions.TTL().Seconds()),
		HttpOnly: false,
		Secure:   s.cfg.CSRF.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// csrfProtect applies double-submit cookie verification to mutating
// requests: the token the browser read from the cookie must come back in
// the request header and match.
func (s *Server) csrfProtect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.cfg.CSRF.Enabled || !isMutating(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(s.cfg.CSRF.CookieName)
		if err != nil || cookie.Value == "" {
			respondError(w, http.StatusForbidden, CodeCSRF,
				"CSRF token missing, refresh the page and try again", nil)
			return
		}

		header := r.Header.Get(s.cfg.CSRF.HeaderName)
		if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) != 1 {
			respondError(w, http.StatusForbidden, CodeCSRF,
				"CSRF token mismatch, refresh the page and try again", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
