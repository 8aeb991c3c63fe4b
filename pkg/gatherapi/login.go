package gatherapi

import (
	"context"
	"fmt"
)

// LoginMember submits member credentials. On success the server sets the
// session_token cookie on the jar and returns the member wrapped login
// response. Whether the login is committed application-side is the caller's
// decision; this call is one round trip and nothing more.
func (c *Client) LoginMember(ctx context.Context, creds MemberCredentials) (*LoginResponse, error) {
	return c.login(ctx, "/account/login/user", map[string]string{
		"email":    creds.Email,
		"password": creds.Password,
	})
}

// LoginOrganization submits organization credentials.
func (c *Client) LoginOrganization(ctx context.Context, creds OrganizationCredentials) (*LoginResponse, error) {
	return c.login(ctx, "/account/login/organization", map[string]string{
		"email":    creds.Email,
		"password": creds.Password,
	})
}

// VerifyTwoFactor completes a second-factor challenge during login and
// returns the member-or-organization login response.
func (c *Client) VerifyTwoFactor(ctx context.Context, req VerifyTwoFactorRequest) (*LoginResponse, error) {
	path := "/account/login/user/verify-2fa"
	if req.Organization {
		path = "/account/login/organization/verify-2fa"
	}

	return c.login(ctx, path, map[string]string{
		"email":      req.Email,
		"totp_token": req.TOTPToken,
	})
}

func (c *Client) login(ctx context.Context, path string, fields map[string]string) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.postForm(ctx, path, fields, nil, &resp); err != nil {
		return nil, err
	}

	if resp.User == nil && resp.Organization == nil {
		return nil, fmt.Errorf("login response carries neither user nor organization")
	}

	return &resp, nil
}
