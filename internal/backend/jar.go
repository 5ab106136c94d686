// MbekteMi - Magal de Touba Pilgrim Companion
// Copyright 2026 MbekteMi contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mbektemi/mbektemi

package backend

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// csrfCookieName is the cookie Laravel Sanctum issues on the CSRF
// bootstrap endpoint. Its value is URL-encoded on the wire.
const csrfCookieName = "XSRF-TOKEN"

// CookieReader exposes read access to named cookies. The CSRF bootstrap
// reads the Sanctum token through this interface so tests can substitute
// a deterministic fake.
type CookieReader interface {
	// Cookie returns the raw (still URL-encoded) value of the named
	// cookie and whether it is present.
	Cookie(name string) (string, bool)
}

// Jar is a serializable cookie jar scoped to the single backend host.
// Every visitor session owns one Jar; it is persisted with the session so
// the Laravel session cookie survives restarts. Host and path matching is
// deliberately not implemented: all requests go to one origin.
type Jar struct {
	mu      sync.RWMutex
	cookies map[string]*storedCookie
}

type storedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Expires time.Time `json:"expires,omitempty"`
}

// NewJar returns an empty jar.
func NewJar() *Jar {
	return &Jar{cookies: make(map[string]*storedCookie)}
}

// SetCookies implements http.CookieJar. Cookies with MaxAge<0 or an
// expiry in the past are removed, matching net/http jar semantics.
func (j *Jar) SetCookies(_ *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	now := time.Now()
	for _, c := range cookies {
		if c.Name == "" {
			continue
		}
		if c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(now)) {
			delete(j.cookies, c.Name)
			continue
		}
		stored := &storedCookie{Name: c.Name, Value: c.Value}
		if c.MaxAge > 0 {
			stored.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		} else if !c.Expires.IsZero() {
			stored.Expires = c.Expires
		}
		j.cookies[c.Name] = stored
	}
}

// Cookies implements http.CookieJar. Expired cookies are skipped but left
// in place; the jar is pruned on the next SetCookies for the same name.
func (j *Jar) Cookies(_ *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	now := time.Now()
	out := make([]*http.Cookie, 0, len(j.cookies))
	for _, c := range j.cookies {
		if !c.Expires.IsZero() && c.Expires.Before(now) {
			continue
		}
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

// Cookie implements CookieReader.
func (j *Jar) Cookie(name string) (string, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	c, ok := j.cookies[name]
	if !ok {
		return "", false
	}
	if !c.Expires.IsZero() && c.Expires.Before(time.Now()) {
		return "", false
	}
	return c.Value, true
}

// Clear removes every cookie. Called on logout so no backend session
// material outlives the visitor's authenticated state.
func (j *Jar) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cookies = make(map[string]*storedCookie)
}

// Clone returns an independent deep copy of the jar.
func (j *Jar) Clone() *Jar {
	j.mu.RLock()
	defer j.mu.RUnlock()
	clone := NewJar()
	for name, c := range j.cookies {
		copied := *c
		clone.cookies[name] = &copied
	}
	return clone
}

// MarshalJSON serializes the jar for session persistence.
func (j *Jar) MarshalJSON() ([]byte, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	list := make([]*storedCookie, 0, len(j.cookies))
	for _, c := range j.cookies {
		list = append(list, c)
	}
	return json.Marshal(list)
}

// UnmarshalJSON restores a jar from its serialized form.
func (j *Jar) UnmarshalJSON(data []byte) error {
	var list []*storedCookie
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cookies = make(map[string]*storedCookie, len(list))
	for _, c := range list {
		if c != nil && c.Name != "" {
			j.cookies[c.Name] = c
		}
	}
	return nil
}

// CSRFToken returns the URL-decoded Sanctum CSRF token from r, or empty
// string when the token cookie is absent.
func CSRFToken(r CookieReader) string {
	raw, ok := r.Cookie(csrfCookieName)
	if !ok {
		return ""
	}
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		// A token that does not decode is unusable; the backend will
		// reject the request with 419 and the caller re-bootstraps.
		return ""
	}
	return decoded
}
