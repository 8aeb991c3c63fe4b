package auth

import (
	"context"
	"sync"
	"time"

	"github.com/gatherhall/gatherhall-go/pkg/gatherapi"
)

// fakeGateway counts calls and lets each endpoint be overridden per test.
type fakeGateway struct {
	mu sync.Mutex

	loginMemberFn func(ctx context.Context, creds gatherapi.MemberCredentials) (*gatherapi.LoginResponse, error)
	loginOrgFn    func(ctx context.Context, creds gatherapi.OrganizationCredentials) (*gatherapi.LoginResponse, error)
	statusFn      func(ctx context.Context) (*gatherapi.TwoFAStatus, error)
	setupFn       func(ctx context.Context) (*gatherapi.TwoFASetup, error)
	enableFn      func(ctx context.Context, token string) (*gatherapi.MessageResponse, error)
	disableFn     func(ctx context.Context, token string) (*gatherapi.MessageResponse, error)
	bypassFn      func(ctx context.Context, bypass bool) (*gatherapi.MessageResponse, error)

	setupCalls   int
	enableCalls  int
	disableCalls int
	bypassCalls  []bool
}

func memberLogin(id int64) *gatherapi.LoginResponse {
	return &gatherapi.LoginResponse{
		User:      &gatherapi.Member{ID: id, FirstName: "Sam", LastName: "Lee", Email: "sam@example.com"},
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func orgLogin(id int64) *gatherapi.LoginResponse {
	return &gatherapi.LoginResponse{
		Organization: &gatherapi.Organization{ID: id, Name: "Northside Makers"},
		ExpiresAt:    time.Now().Add(time.Hour),
	}
}

func (f *fakeGateway) LoginMember(ctx context.Context, creds gatherapi.MemberCredentials) (*gatherapi.LoginResponse, error) {
	if f.loginMemberFn != nil {
		return f.loginMemberFn(ctx, creds)
	}
	return memberLogin(1), nil
}

func (f *fakeGateway) LoginOrganization(ctx context.Context, creds gatherapi.OrganizationCredentials) (*gatherapi.LoginResponse, error) {
	if f.loginOrgFn != nil {
		return f.loginOrgFn(ctx, creds)
	}
	return orgLogin(2), nil
}

func (f *fakeGateway) TwoFAStatus(ctx context.Context) (*gatherapi.TwoFAStatus, error) {
	if f.statusFn != nil {
		return f.statusFn(ctx)
	}
	return &gatherapi.TwoFAStatus{}, nil
}

func (f *fakeGateway) InitiateTwoFASetup(ctx context.Context) (*gatherapi.TwoFASetup, error) {
	f.mu.Lock()
	f.setupCalls++
	f.mu.Unlock()

	if f.setupFn != nil {
		return f.setupFn(ctx)
	}
	return &gatherapi.TwoFASetup{Secret: "JBSWY3DPEHPK3PXP", Issuer: "GatherHall", Account: "sam@example.com"}, nil
}

func (f *fakeGateway) EnableTwoFA(ctx context.Context, token string) (*gatherapi.MessageResponse, error) {
	f.mu.Lock()
	f.enableCalls++
	f.mu.Unlock()

	if f.enableFn != nil {
		return f.enableFn(ctx, token)
	}
	return &gatherapi.MessageResponse{Message: "2FA enabled"}, nil
}

func (f *fakeGateway) DisableTwoFA(ctx context.Context, token string) (*gatherapi.MessageResponse, error) {
	f.mu.Lock()
	f.disableCalls++
	f.mu.Unlock()

	if f.disableFn != nil {
		return f.disableFn(ctx, token)
	}
	return &gatherapi.MessageResponse{Message: "2FA disabled"}, nil
}

func (f *fakeGateway) BypassTwoFactor(ctx context.Context, bypass bool) (*gatherapi.MessageResponse, error) {
	f.mu.Lock()
	f.bypassCalls = append(f.bypassCalls, bypass)
	f.mu.Unlock()

	if f.bypassFn != nil {
		return f.bypassFn(ctx, bypass)
	}
	return &gatherapi.MessageResponse{Message: "ok"}, nil
}

func (f *fakeGateway) counts() (setup, enable, disable int, bypass []bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bypass = append([]bool(nil), f.bypassCalls...)
	return f.setupCalls, f.enableCalls, f.disableCalls, bypass
}

// fakeProbe is a switchable artifact probe.
type fakeProbe struct {
	mu      sync.Mutex
	present bool
}

func (p *fakeProbe) Present() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.present
}

func (p *fakeProbe) set(present bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.present = present
}
