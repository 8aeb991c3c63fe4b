package session

import (
	"context"
	"errors"
	"time"
)

// ErrNoSession reports that no login is committed.
var ErrNoSession = errors.New("session: not logged in")

// CookieRecord is the persisted form of a server-issued cookie. Values are
// sealed by the codec before they reach a driver.
type CookieRecord struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path"`
	Expires  time.Time `json:"expires"`
	Secure   bool      `json:"secure"`
	HTTPOnly bool      `json:"http_only"`
}

// Store holds the committed session and the cookies that back it. It is the
// only shared mutable state in the client; mutation happens through this
// narrow interface and nowhere else.
//
// Concrete drivers (sqlite, redis) implement it. Drivers store sealed blobs
// and never see plaintext session material.
type Store interface {
	// Current returns the committed session, or ErrNoSession.
	Current(ctx context.Context) (Session, error)

	// Login commits a session, replacing any previous one.
	Login(ctx context.Context, s Session) error

	// Logout discards the committed session and all cookies.
	Logout(ctx context.Context) error

	// UpdateTwoFactorEnabled flips the committed principal's second-factor
	// flag in place. Returns ErrNoSession when nothing is committed.
	UpdateTwoFactorEnabled(ctx context.Context, enabled bool) error

	// Cookies returns the persisted cookies for a host.
	Cookies(ctx context.Context, host string) ([]CookieRecord, error)

	// ReplaceCookies overwrites the persisted cookies for a host.
	ReplaceCookies(ctx context.Context, host string, cookies []CookieRecord) error

	// Ping verifies the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases any underlying resources.
	Close() error
}
