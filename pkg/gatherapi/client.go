package gatherapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client is a client for the GatherHall platform API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// DeviceID is a stable per-install identifier sent as X-Device-ID on
	// every request so the backend can bind sessions to a device.
	DeviceID string

	jar            http.CookieJar
	onUnauthorized func()
	log            *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The redirect guard is
// still installed around its transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// WithCookieJar sets the cookie jar used for the session_token cookie.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) { c.jar = jar }
}

// WithUnauthorizedHook registers the callback invoked when a 401 response
// arrives without the suppression header on a non-login endpoint.
func WithUnauthorizedHook(hook func()) Option {
	return func(c *Client) { c.onUnauthorized = hook }
}

// WithDeviceID sets the device identifier header value.
func WithDeviceID(id string) Option {
	return func(c *Client) { c.DeviceID = id }
}

// WithLogger sets the logger used for request failures.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a platform API client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.jar != nil {
		c.HTTPClient.Jar = c.jar
	}
	c.installGuard()

	return c
}

func (c *Client) url(path string) string {
	return c.BaseURL + path
}
