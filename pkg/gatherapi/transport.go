package gatherapi

import (
	"net/http"
	"strings"
)

// SuppressUnauthorizedHeader marks a request as allowed to receive a 401
// without triggering the unauthorized hook. The two-factor status and setup
// endpoints send it because they run while the session cookie exists but the
// application-level login has not been committed yet.
const SuppressUnauthorizedHeader = "X-Suppress-Unauthorized-Redirect"

// redirectGuard watches responses for 401s and fires the unauthorized hook,
// mirroring the "401 forces you back to /login" behaviour of the platform's
// web client. Login attempts and suppressed requests are exempt.
type redirectGuard struct {
	next http.RoundTripper
	hook func()
}

func (g *redirectGuard) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := g.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized &&
		g.hook != nil &&
		req.Header.Get(SuppressUnauthorizedHeader) == "" &&
		!isLoginPath(req.URL.Path) {
		g.hook()
	}

	return resp, nil
}

// isLoginPath reports whether path is a credential-submission endpoint.
// A 401 there is an ordinary bad-credentials outcome, not a dead session.
func isLoginPath(path string) bool {
	return strings.HasPrefix(path, "/account/login/")
}

// installGuard wraps the HTTP client's transport with the redirect guard.
// Idempotent so repeated construction passes do not stack guards.
func (c *Client) installGuard() {
	next := c.HTTPClient.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	if g, ok := next.(*redirectGuard); ok {
		g.hook = c.onUnauthorized
		return
	}
	c.HTTPClient.Transport = &redirectGuard{next: next, hook: c.onUnauthorized}
}
