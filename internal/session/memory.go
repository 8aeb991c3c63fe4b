package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. Nothing survives the process; it backs
// tests and the "no persistence" backend for throwaway environments.
type MemoryStore struct {
	mu      sync.Mutex
	sess    *Session
	cookies map[string][]CookieRecord
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cookies: make(map[string][]CookieRecord)}
}

func (m *MemoryStore) Current(ctx context.Context) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil || time.Now().After(m.sess.ExpiresAt) {
		return Session{}, ErrNoSession
	}
	return *m.sess, nil
}

func (m *MemoryStore) Login(ctx context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sess = &s
	return nil
}

func (m *MemoryStore) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sess = nil
	m.cookies = make(map[string][]CookieRecord)
	return nil
}

func (m *MemoryStore) UpdateTwoFactorEnabled(ctx context.Context, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil {
		return ErrNoSession
	}
	m.sess.Principal.SetTwoFactorEnabled(enabled)
	return nil
}

func (m *MemoryStore) Cookies(ctx context.Context, host string) ([]CookieRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := make([]CookieRecord, len(m.cookies[host]))
	copy(records, m.cookies[host])
	return records, nil
}

func (m *MemoryStore) ReplaceCookies(ctx context.Context, host string, cookies []CookieRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := make([]CookieRecord, len(cookies))
	copy(records, cookies)
	m.cookies[host] = records
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
