package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/gatherhall/gatherhall-go/internal/session"
	"github.com/gatherhall/gatherhall-go/pkg/gatherapi"
)

var (
	// ErrThrottled is returned when login submissions outpace the local limiter.
	ErrThrottled = errors.New("auth: too many login attempts")

	// ErrPendingConsumed is returned when a deferred login is committed twice.
	ErrPendingConsumed = errors.New("auth: pending login already consumed")
)

// SubmitOptions controls what happens to a successful login response. The
// zero value commits the session to the store immediately, which is what
// every caller outside the 2FA flow wants.
type SubmitOptions struct {
	// Deferred withholds the session from the store. The caller receives a
	// PendingLogin and is responsible for committing it exactly once, after
	// two-factor verification resolves.
	Deferred bool
}

// Result is the outcome of a login submission.
type Result struct {
	Response *gatherapi.LoginResponse

	// Session is set when the login was committed.
	Session session.Session

	// Pending is set instead of Session when SubmitOptions.Deferred was set.
	Pending *PendingLogin
}

// Committed reports whether the session was written to the store.
func (r *Result) Committed() bool { return r.Pending == nil }

// PendingLogin holds a verified credential exchange that has not yet been
// written to the session store. It lives only in memory and is consumed at
// most once.
type PendingLogin struct {
	mu    sync.Mutex
	sess  session.Session
	taken bool
}

// Session returns the held session without consuming the pending login.
func (p *PendingLogin) Session() session.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sess
}

func (p *PendingLogin) take() (session.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.taken {
		return session.Session{}, ErrPendingConsumed
	}
	p.taken = true
	return p.sess, nil
}

// Controller runs credential submissions against the gateway and decides
// when the resulting session reaches the store.
type Controller struct {
	gw      Gateway
	store   session.Store
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewController wires a controller over the gateway and session store. The
// built-in limiter allows a burst of 5 submissions, refilling one every 10
// seconds; server-side throttling still applies on top.
func NewController(gw Gateway, store session.Store, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		gw:      gw,
		store:   store,
		limiter: rate.NewLimiter(rate.Every(10*time.Second), 5),
		log:     log,
	}
}

// SubmitMember exchanges member credentials for a session.
func (c *Controller) SubmitMember(ctx context.Context, creds gatherapi.MemberCredentials, opts SubmitOptions) (*Result, error) {
	return c.submit(ctx, opts, func(ctx context.Context) (*gatherapi.LoginResponse, error) {
		return c.gw.LoginMember(ctx, creds)
	})
}

// SubmitOrganization exchanges organization credentials for a session.
func (c *Controller) SubmitOrganization(ctx context.Context, creds gatherapi.OrganizationCredentials, opts SubmitOptions) (*Result, error) {
	return c.submit(ctx, opts, func(ctx context.Context) (*gatherapi.LoginResponse, error) {
		return c.gw.LoginOrganization(ctx, creds)
	})
}

func (c *Controller) submit(ctx context.Context, opts SubmitOptions, call func(context.Context) (*gatherapi.LoginResponse, error)) (*Result, error) {
	if !c.limiter.Allow() {
		return nil, ErrThrottled
	}

	resp, err := call(ctx)
	if err != nil {
		return nil, err
	}

	sess, err := session.FromLogin(resp)
	if err != nil {
		return nil, err
	}

	if opts.Deferred {
		c.log.Debug("login verified, commit deferred", "kind", sess.Principal.Kind)
		return &Result{Response: resp, Pending: &PendingLogin{sess: sess}}, nil
	}

	if err := c.store.Login(ctx, sess); err != nil {
		return nil, err
	}
	c.log.Info("session established", "kind", sess.Principal.Kind, "expires_at", sess.ExpiresAt)
	return &Result{Response: resp, Session: sess}, nil
}

// Commit writes a deferred login to the store. The pending login is consumed
// even when the store write fails; a failed commit means logging in again.
func (c *Controller) Commit(ctx context.Context, p *PendingLogin) (session.Session, error) {
	sess, err := p.take()
	if err != nil {
		return session.Session{}, err
	}
	if err := c.store.Login(ctx, sess); err != nil {
		return session.Session{}, err
	}
	c.log.Info("deferred session committed", "kind", sess.Principal.Kind)
	return sess, nil
}
