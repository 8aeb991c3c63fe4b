package gatherapi

import "time"

// ============================================================================
// Principals
// ============================================================================

// Member is a person's account as returned by the backend.
type Member struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`

	// TwoFactorEnabled is 0 or 1 as sent by the backend.
	TwoFactorEnabled int `json:"two_factor_enabled"`
}

// Organization is an organization account as returned by the backend.
type Organization struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`

	// TwoFactorEnabled is 0 or 1 as sent by the backend.
	TwoFactorEnabled int `json:"two_factor_enabled"`
}

// LoginResponse is returned after a successful credential check. Exactly one
// of User or Organization is set; the wrapper field discriminates the
// principal's type.
type LoginResponse struct {
	User         *Member       `json:"user,omitempty"`
	Organization *Organization `json:"organization,omitempty"`
	ExpiresAt    time.Time     `json:"expires_at"`
}

// ============================================================================
// Credentials and registration
// ============================================================================

// MemberCredentials are the fields submitted to the member login endpoint.
type MemberCredentials struct {
	Email    string
	Password string
}

// OrganizationCredentials are the fields submitted to the organization login
// endpoint.
type OrganizationCredentials struct {
	Email    string
	Password string
}

// RegisterMemberRequest creates a member account.
type RegisterMemberRequest struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// RegisterOrganizationRequest creates an organization account.
type RegisterOrganizationRequest struct {
	Name     string
	Email    string
	Password string
}

// RegisterResponse acknowledges account creation. The account is not usable
// until the email OTP has been verified.
type RegisterResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// ============================================================================
// Two-factor authentication
// ============================================================================

// TwoFAStatus describes the account's current second-factor state.
type TwoFAStatus struct {
	Enabled          bool `json:"enabled"`
	BackupCodesCount int  `json:"backup_codes_count"`
}

// TwoFASetup is the server-issued enrollment payload. QRCode is an
// otpauth:// URL (or a base64 image on older backends); it is held in memory
// for the duration of one enrollment attempt and never persisted.
type TwoFASetup struct {
	QRCode  string `json:"qr_code"`
	Secret  string `json:"secret,omitempty"`
	Issuer  string `json:"issuer,omitempty"`
	Account string `json:"account,omitempty"`
}

// VerifyTwoFactorRequest completes a second-factor challenge during login.
type VerifyTwoFactorRequest struct {
	Email     string
	TOTPToken string

	// Organization selects the organization login endpoint's verify flow.
	Organization bool
}

// ============================================================================
// Generic envelope
// ============================================================================

// MessageResponse is the plain acknowledgement envelope used by the
// two-factor mutation endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Events
// ============================================================================

// Event is a platform event as returned by the browse endpoint.
type Event struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	StartsAt  time.Time `json:"starts_at"`
	Location  string    `json:"location"`
	Organizer string    `json:"organizer"`
	Attending int       `json:"attending"`
}

// ListEventsResponse is a page of events.
type ListEventsResponse struct {
	Events  []Event `json:"events"`
	Page    int     `json:"page"`
	HasMore bool    `json:"has_more"`
}
