package session

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"
)

// PersistentJar is an http.CookieJar that mirrors cookies for the API host
// into the Store, so the server-issued session_token survives between CLI
// invocations. Cookies for other hosts pass through to the inner jar
// unpersisted.
type PersistentJar struct {
	mu      sync.Mutex
	inner   *cookiejar.Jar
	store   Store
	base    *url.URL
	records map[string]CookieRecord // by cookie name, API host only
	log     *slog.Logger
}

// NewPersistentJar loads any previously persisted cookies for the API host
// and returns a jar ready to hand to the HTTP client.
func NewPersistentJar(ctx context.Context, store Store, base *url.URL, log *slog.Logger) (*PersistentJar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	j := &PersistentJar{
		inner:   inner,
		store:   store,
		base:    base,
		records: make(map[string]CookieRecord),
		log:     log,
	}

	stored, err := store.Cookies(ctx, base.Host)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	restore := make([]*http.Cookie, 0, len(stored))
	for _, rec := range stored {
		if !rec.Expires.IsZero() && rec.Expires.Before(now) {
			continue
		}
		j.records[rec.Name] = rec
		restore = append(restore, &http.Cookie{
			Name:     rec.Name,
			Value:    rec.Value,
			Path:     rec.Path,
			Expires:  rec.Expires,
			Secure:   rec.Secure,
			HttpOnly: rec.HTTPOnly,
		})
	}
	if len(restore) > 0 {
		inner.SetCookies(base, restore)
	}

	return j, nil
}

// SetCookies implements http.CookieJar. Cookies for the API host are also
// written through to the store; persistence failures are logged, not fatal,
// since the in-memory jar still carries the session for this process.
func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.inner.SetCookies(u, cookies)

	if u.Host != j.base.Host {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	for _, c := range cookies {
		if c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(time.Now())) {
			delete(j.records, c.Name)
			continue
		}

		expires := c.Expires
		if c.MaxAge > 0 {
			expires = time.Now().Add(time.Duration(c.MaxAge) * time.Second)
		}

		j.records[c.Name] = CookieRecord{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Expires:  expires,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		}
	}

	snapshot := make([]CookieRecord, 0, len(j.records))
	for _, rec := range j.records {
		snapshot = append(snapshot, rec)
	}

	if err := j.store.ReplaceCookies(context.Background(), j.base.Host, snapshot); err != nil {
		j.log.Warn("failed to persist cookies", "error", err)
	}
}

// Cookies implements http.CookieJar.
func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

// Has reports whether a cookie with the given name is currently present for
// the API host. Only presence is consulted; values stay opaque.
func (j *PersistentJar) Has(name string) bool {
	for _, c := range j.inner.Cookies(j.base) {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Clear drops all cookies for the API host, in memory and in the store.
func (j *PersistentJar) Clear(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	expired := make([]*http.Cookie, 0, len(j.records))
	for name := range j.records {
		expired = append(expired, &http.Cookie{Name: name, MaxAge: -1})
	}
	j.inner.SetCookies(j.base, expired)
	j.records = make(map[string]CookieRecord)

	return j.store.ReplaceCookies(ctx, j.base.Host, nil)
}
