package gatherapi

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTokenExpiry decodes the expiry claim from a session_token cookie
// value without verifying the signature. The token is a server-side artifact
// the client has no key for; this is a display aid only. Nothing in the
// authentication flow depends on the cookie's contents - the two-factor gate
// checks only that the cookie EXISTS.
func SessionTokenExpiry(token string) (time.Time, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to decode session token: %w", err)
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("session token carries no expiry claim")
	}

	return exp.Time, nil
}
