package session

import (
	"fmt"
	"time"

	"github.com/gatherhall/gatherhall-go/pkg/gatherapi"
)

// Kind discriminates the two principal types the platform knows about.
type Kind string

const (
	KindMember       Kind = "member"
	KindOrganization Kind = "organization"
)

// Profile routes the web client navigates to after a committed login.
// The CLI reports them so its behaviour stays observably identical.
const (
	MemberProfileRoute       = "/member-profile"
	OrganizationProfileRoute = "/org-profile"
)

// Principal is the authenticated account: a member or an organization,
// never both. Once committed to the store it is owned exclusively by it.
type Principal struct {
	Kind         Kind                     `json:"kind"`
	Member       *gatherapi.Member       `json:"member,omitempty"`
	Organization *gatherapi.Organization `json:"organization,omitempty"`
}

// Session is the committed login state: one principal plus its expiry.
type Session struct {
	Principal Principal `json:"principal"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FromLogin builds a Session from a login response, discriminating the
// principal by which wrapper field the backend populated.
func FromLogin(resp *gatherapi.LoginResponse) (Session, error) {
	switch {
	case resp.User != nil:
		return Session{
			Principal: Principal{Kind: KindMember, Member: resp.User},
			ExpiresAt: resp.ExpiresAt,
		}, nil
	case resp.Organization != nil:
		return Session{
			Principal: Principal{Kind: KindOrganization, Organization: resp.Organization},
			ExpiresAt: resp.ExpiresAt,
		}, nil
	default:
		return Session{}, fmt.Errorf("login response carries no principal")
	}
}

// ProfileRoute returns the post-login navigation target for this principal.
func (p Principal) ProfileRoute() string {
	if p.Kind == KindOrganization {
		return OrganizationProfileRoute
	}
	return MemberProfileRoute
}

// DisplayName returns a human-readable name for the principal.
func (p Principal) DisplayName() string {
	switch p.Kind {
	case KindOrganization:
		if p.Organization != nil {
			return p.Organization.Name
		}
	default:
		if p.Member != nil {
			return p.Member.FirstName + " " + p.Member.LastName
		}
	}
	return ""
}

// Email returns the principal's account email.
func (p Principal) Email() string {
	switch p.Kind {
	case KindOrganization:
		if p.Organization != nil {
			return p.Organization.Email
		}
	default:
		if p.Member != nil {
			return p.Member.Email
		}
	}
	return ""
}

// TwoFactorEnabled reports whether the account has a second factor enabled.
func (p Principal) TwoFactorEnabled() bool {
	switch p.Kind {
	case KindOrganization:
		return p.Organization != nil && p.Organization.TwoFactorEnabled != 0
	default:
		return p.Member != nil && p.Member.TwoFactorEnabled != 0
	}
}

// SetTwoFactorEnabled flips the account's second-factor flag, keeping the
// backend's 0/1 encoding.
func (p *Principal) SetTwoFactorEnabled(enabled bool) {
	flag := 0
	if enabled {
		flag = 1
	}

	switch p.Kind {
	case KindOrganization:
		if p.Organization != nil {
			p.Organization.TwoFactorEnabled = flag
		}
	default:
		if p.Member != nil {
			p.Member.TwoFactorEnabled = flag
		}
	}
}
