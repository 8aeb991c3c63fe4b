package gatherapi

import (
	"context"
	"strconv"
)

// suppressHeaders marks the request as allowed to 401 without firing the
// unauthorized hook. The status and setup endpoints are called while the
// session cookie is present but the login has not been committed yet, so the
// global "401 means go back to login" rule must not apply to them.
var suppressHeaders = map[string]string{
	SuppressUnauthorizedHeader: "1",
}

// TwoFAStatus fetches the account's second-factor state.
func (c *Client) TwoFAStatus(ctx context.Context) (*TwoFAStatus, error) {
	var status TwoFAStatus
	if err := c.getJSON(ctx, "/2fa/status", suppressHeaders, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// InitiateTwoFASetup requests enrollment material: the otpauth QR payload and
// its secret. The server ties setup to an established session, so the
// session_token cookie must be present before calling this; absent the
// cookie the call fails and the error surfaces to the caller.
func (c *Client) InitiateTwoFASetup(ctx context.Context) (*TwoFASetup, error) {
	var setup TwoFASetup
	if err := c.postForm(ctx, "/2fa/setup", nil, suppressHeaders, &setup); err != nil {
		return nil, err
	}
	return &setup, nil
}

// EnableTwoFA turns on two-factor authentication using a code from the
// authenticator enrolled via InitiateTwoFASetup.
func (c *Client) EnableTwoFA(ctx context.Context, totpToken string) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.postForm(ctx, "/2fa/enable", map[string]string{
		"totp_token": totpToken,
	}, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DisableTwoFA turns off two-factor authentication. The code proves the
// caller still controls the authenticator.
func (c *Client) DisableTwoFA(ctx context.Context, totpToken string) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.postForm(ctx, "/2fa/disable", map[string]string{
		"totp_token": totpToken,
	}, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BypassTwoFactor sets the session's bypass flag so the current login pass is
// not challenged again for a second factor.
func (c *Client) BypassTwoFactor(ctx context.Context, bypass bool) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.postForm(ctx, "/2fa/bypass", map[string]string{
		"bypass_status": strconv.FormatBool(bypass),
	}, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
