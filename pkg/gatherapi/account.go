package gatherapi

import (
	"context"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Validate checks the registration fields client-side. It returns a map of
// field name to problem, or nil when the request is valid. Validation
// failures never reach the network.
func (r RegisterMemberRequest) Validate() map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(r.FirstName) == "" {
		errs["first_name"] = "first name is required"
	}
	if strings.TrimSpace(r.LastName) == "" {
		errs["last_name"] = "last name is required"
	}
	validateEmail(errs, r.Email)
	validatePassword(errs, r.Password)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Validate checks the organization registration fields client-side.
func (r RegisterOrganizationRequest) Validate() map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(r.Name) == "" {
		errs["name"] = "organization name is required"
	} else if utf8.RuneCountInString(r.Name) > 100 {
		errs["name"] = "organization name must be at most 100 characters"
	}
	validateEmail(errs, r.Email)
	validatePassword(errs, r.Password)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateEmail(errs map[string]string, email string) {
	if strings.TrimSpace(email) == "" {
		errs["email"] = "email is required"
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		errs["email"] = "email is not a valid address"
	}
}

func validatePassword(errs map[string]string, password string) {
	if n := utf8.RuneCountInString(password); n < 8 || n > 128 {
		errs["password"] = "password must be 8-128 characters"
	}
}

// RegisterMember creates a member account. The account must verify an email
// OTP before it can log in.
func (c *Client) RegisterMember(ctx context.Context, req RegisterMemberRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.postForm(ctx, "/account/user", map[string]string{
		"first_name": req.FirstName,
		"last_name":  req.LastName,
		"email":      req.Email,
		"password":   req.Password,
	}, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RegisterOrganization creates an organization account.
func (c *Client) RegisterOrganization(ctx context.Context, req RegisterOrganizationRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.postForm(ctx, "/account/organization", map[string]string{
		"name":     req.Name,
		"email":    req.Email,
		"password": req.Password,
	}, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyEmailOTP confirms the one-time code sent to the account's email
// during registration.
func (c *Client) VerifyEmailOTP(ctx context.Context, email, code string) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.postForm(ctx, "/account/verify-email-otp", map[string]string{
		"email": email,
		"otp":   code,
	}, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResendEmailOTP requests a fresh email verification code.
func (c *Client) ResendEmailOTP(ctx context.Context, email string) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.postForm(ctx, "/account/resend-email-otp", map[string]string{
		"email": email,
	}, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
