package auth

import (
	"net/http"
	"net/url"
)

// SessionCookieName is the cookie the backend sets once a login (or a 2FA
// verification) has fully established a server-side session.
const SessionCookieName = "session_token"

// ArtifactProbe reports whether the session artifact has landed in the local
// cookie jar. Only presence matters; the value is opaque to the client.
type ArtifactProbe interface {
	Present() bool
}

// CookieProbe checks a cookie jar for a named cookie on the API host.
type CookieProbe struct {
	Jar  http.CookieJar
	Base *url.URL
	Name string
}

// NewCookieProbe returns a probe for the session cookie on base's host.
func NewCookieProbe(jar http.CookieJar, base *url.URL) *CookieProbe {
	return &CookieProbe{Jar: jar, Base: base, Name: SessionCookieName}
}

func (p *CookieProbe) Present() bool {
	for _, c := range p.Jar.Cookies(p.Base) {
		if c.Name == p.Name && c.Value != "" {
			return true
		}
	}
	return false
}
