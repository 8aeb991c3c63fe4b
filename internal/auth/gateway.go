package auth

import (
	"context"

	"github.com/gatherhall/gatherhall-go/pkg/gatherapi"
)

// Gateway is the slice of the platform API the authentication flows consume.
// *gatherapi.Client satisfies it; tests substitute fakes.
type Gateway interface {
	LoginMember(ctx context.Context, creds gatherapi.MemberCredentials) (*gatherapi.LoginResponse, error)
	LoginOrganization(ctx context.Context, creds gatherapi.OrganizationCredentials) (*gatherapi.LoginResponse, error)

	TwoFAStatus(ctx context.Context) (*gatherapi.TwoFAStatus, error)
	InitiateTwoFASetup(ctx context.Context) (*gatherapi.TwoFASetup, error)
	EnableTwoFA(ctx context.Context, totpToken string) (*gatherapi.MessageResponse, error)
	DisableTwoFA(ctx context.Context, totpToken string) (*gatherapi.MessageResponse, error)
	BypassTwoFactor(ctx context.Context, bypass bool) (*gatherapi.MessageResponse, error)
}
