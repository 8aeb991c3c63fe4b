package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/gatherhall/gatherhall-go/internal/session"
	"github.com/gatherhall/gatherhall-go/pkg/gatherapi"
	"github.com/gatherhall/gatherhall-go/pkg/idx"
)

// Enrollment drives the two-factor setup flow after a verified login. It
// waits for the backend's session artifact to land, fetches the TOTP setup
// material, and walks the submitted code through enable/disable, bypass and
// session commit. A step that fails leaves the machine where it was so the
// same call can be retried.
//
// Start may be called again at any point; doing so opens a fresh attempt and
// results from the superseded one are discarded.

// State is the current position of an Enrollment.
type State int

const (
	// StateAwaitingArtifact polls the cookie jar for the session artifact.
	StateAwaitingArtifact State = iota
	// StateFetchingSetup has a setup request in flight.
	StateFetchingSetup
	// StateAwaitingChoice holds setup material and waits for a direction.
	StateAwaitingChoice
	// StateAwaitingCode waits for a TOTP code.
	StateAwaitingCode
	// StateResolving has the enable/disable accepted and the bypass flag
	// not yet cleared.
	StateResolving
	// StateCommitting has the bypass cleared and the session not yet written.
	StateCommitting
	// StateDone is terminal; Outcome is set.
	StateDone
	// StateSetupFailed is terminal for the attempt; Start opens a new one.
	StateSetupFailed
)

func (s State) String() string {
	switch s {
	case StateAwaitingArtifact:
		return "awaiting_artifact"
	case StateFetchingSetup:
		return "fetching_setup"
	case StateAwaitingChoice:
		return "awaiting_choice"
	case StateAwaitingCode:
		return "awaiting_code"
	case StateResolving:
		return "resolving"
	case StateCommitting:
		return "committing"
	case StateDone:
		return "done"
	case StateSetupFailed:
		return "setup_failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Choice is the direction of the enrollment.
type Choice int

const (
	ChoiceEnable Choice = iota + 1
	ChoiceDisable
)

const (
	DefaultPollInterval = 150 * time.Millisecond
	DefaultPollTimeout  = 5 * time.Second
)

var (
	// ErrSuperseded marks a result belonging to an attempt that a newer
	// Start call replaced.
	ErrSuperseded = errors.New("auth: enrollment attempt superseded")

	// ErrStopped is returned from Start when Stop interrupts the artifact wait.
	ErrStopped = errors.New("auth: enrollment stopped")
)

// Outcome is the result of a completed enrollment.
type Outcome struct {
	Session session.Session
	Route   string
}

// EnrollmentConfig assembles an Enrollment. Gateway, Store and Probe are
// required; the rest defaults.
type EnrollmentConfig struct {
	Gateway Gateway
	Store   session.Store
	Probe   ArtifactProbe

	// Pending carries a deferred login to commit on completion. When nil
	// the flow updates the already-stored session in place.
	Pending *PendingLogin

	Clock  clockwork.Clock
	Logger *slog.Logger

	PollInterval time.Duration
	PollTimeout  time.Duration
}

// Enrollment is safe for concurrent use.
type Enrollment struct {
	gw      Gateway
	store   session.Store
	probe   ArtifactProbe
	pending *PendingLogin
	clock   clockwork.Clock
	log     *slog.Logger

	pollInterval time.Duration
	pollTimeout  time.Duration

	mu      sync.Mutex
	state   State
	attempt idx.ID
	choice  Choice
	setup   *gatherapi.TwoFASetup
	outcome *Outcome
	lastErr error
	stop    chan struct{}
}

// NewEnrollment builds an Enrollment from cfg.
func NewEnrollment(cfg EnrollmentConfig) *Enrollment {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = DefaultPollTimeout
	}
	return &Enrollment{
		gw:           cfg.Gateway,
		store:        cfg.Store,
		probe:        cfg.Probe,
		pending:      cfg.Pending,
		clock:        cfg.Clock,
		log:          cfg.Logger,
		pollInterval: cfg.PollInterval,
		pollTimeout:  cfg.PollTimeout,
	}
}

// Start opens a new attempt: it waits for the session artifact, then fetches
// the TOTP setup material. It blocks until the machine reaches
// StateAwaitingChoice or fails. Any previous attempt is superseded.
func (e *Enrollment) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.stop != nil {
		select {
		case <-e.stop:
		default:
			close(e.stop)
		}
	}
	attempt := idx.New()
	e.attempt = attempt
	e.state = StateAwaitingArtifact
	e.choice = 0
	e.setup = nil
	e.outcome = nil
	e.lastErr = nil
	stop := make(chan struct{})
	e.stop = stop
	e.mu.Unlock()

	if err := e.awaitArtifact(ctx, stop); err != nil {
		return err
	}
	if !e.advance(attempt, StateFetchingSetup) {
		return ErrSuperseded
	}

	setup, err := e.gw.InitiateTwoFASetup(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.attempt != attempt {
		return ErrSuperseded
	}
	if err != nil {
		e.state = StateSetupFailed
		e.lastErr = err
		e.log.Warn("2fa setup fetch failed", "error", err)
		return err
	}
	e.setup = setup
	e.state = StateAwaitingChoice
	return nil
}

// awaitArtifact polls the probe until the artifact shows up or the timeout
// elapses. A timeout is not fatal: the backend may have established the
// session without the cookie reaching us yet, so the flow proceeds and lets
// the setup call be the arbiter.
func (e *Enrollment) awaitArtifact(ctx context.Context, stop <-chan struct{}) error {
	deadline := e.clock.Now().Add(e.pollTimeout)
	for {
		if e.probe.Present() {
			return nil
		}
		if !e.clock.Now().Before(deadline) {
			e.log.Warn("session artifact not observed, continuing", "waited", e.pollTimeout)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return ErrStopped
		case <-e.clock.After(e.pollInterval):
		}
	}
}

// Choose sets the direction of the enrollment. It may be called again before
// a code is accepted to switch direction.
func (e *Enrollment) Choose(c Choice) error {
	if c != ChoiceEnable && c != ChoiceDisable {
		return fmt.Errorf("auth: unknown choice %d", c)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateAwaitingChoice && e.state != StateAwaitingCode {
		return fmt.Errorf("auth: cannot choose in state %s", e.state)
	}
	e.choice = c
	e.state = StateAwaitingCode
	return nil
}

// SubmitCode runs the code through the remaining steps: enable or disable
// per the choice, then the bypass clear, then the session commit. When a
// prior call failed partway, SubmitCode resumes at the failed step; steps
// that already succeeded are not repeated.
func (e *Enrollment) SubmitCode(ctx context.Context, code string) (*Outcome, error) {
	e.mu.Lock()
	attempt := e.attempt
	state := e.state
	choice := e.choice
	e.mu.Unlock()

	switch state {
	case StateAwaitingCode, StateResolving, StateCommitting:
	default:
		return nil, fmt.Errorf("auth: cannot submit code in state %s", state)
	}

	if state == StateAwaitingCode {
		var err error
		if choice == ChoiceDisable {
			_, err = e.gw.DisableTwoFA(ctx, code)
		} else {
			_, err = e.gw.EnableTwoFA(ctx, code)
		}
		if state, err = e.record(attempt, StateResolving, err); err != nil {
			return nil, err
		}
	}

	if state == StateResolving {
		// The bypass flag is raised for both directions; the backend clears
		// the mid-auth marker the same way whether 2FA was turned on or off.
		_, err := e.gw.BypassTwoFactor(ctx, true)
		if state, err = e.record(attempt, StateCommitting, err); err != nil {
			return nil, err
		}
	}

	return e.commit(ctx, attempt, choice)
}

// advance moves the attempt to next, reporting false when a newer attempt
// has superseded it.
func (e *Enrollment) advance(attempt idx.ID, next State) bool {
	_, err := e.record(attempt, next, nil)
	return err == nil
}

// record moves the attempt to next on success, or keeps it in place and
// stores the error on failure.
func (e *Enrollment) record(attempt idx.ID, next State, err error) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.attempt != attempt {
		return 0, ErrSuperseded
	}
	if err != nil {
		e.lastErr = err
		return 0, err
	}
	e.lastErr = nil
	e.state = next
	return next, nil
}

func (e *Enrollment) commit(ctx context.Context, attempt idx.ID, choice Choice) (*Outcome, error) {
	enabled := choice != ChoiceDisable

	var sess session.Session
	if e.pending != nil {
		sess = e.pending.Session()
		sess.Principal.SetTwoFactorEnabled(enabled)
		if err := e.store.Login(ctx, sess); err != nil {
			if _, nerr := e.record(attempt, StateCommitting, err); nerr != nil {
				return nil, nerr
			}
		}
		// Mark the deferred login consumed so nothing commits it a second time.
		e.pending.take() //nolint:errcheck
	} else {
		if err := e.store.UpdateTwoFactorEnabled(ctx, enabled); err != nil {
			if _, nerr := e.record(attempt, StateCommitting, err); nerr != nil {
				return nil, nerr
			}
		}
		var err error
		sess, err = e.store.Current(ctx)
		if err != nil {
			if _, nerr := e.record(attempt, StateCommitting, err); nerr != nil {
				return nil, nerr
			}
		}
	}

	out := &Outcome{Session: sess, Route: sess.Principal.ProfileRoute()}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.attempt != attempt {
		return nil, ErrSuperseded
	}
	e.state = StateDone
	e.outcome = out
	e.lastErr = nil
	e.log.Info("two-factor enrollment complete", "enabled", enabled, "route", out.Route)
	return out, nil
}

// Stop interrupts an in-flight artifact wait. It is safe to call repeatedly
// and after completion.
func (e *Enrollment) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stop == nil {
		return
	}
	select {
	case <-e.stop:
	default:
		close(e.stop)
	}
}

// State reports the machine's current position.
func (e *Enrollment) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Setup returns the fetched TOTP setup material, or nil before it arrives.
func (e *Enrollment) Setup() *gatherapi.TwoFASetup {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setup
}

// Err returns the error that is holding the machine in place, if any.
func (e *Enrollment) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Outcome returns the completed result, or nil before StateDone.
func (e *Enrollment) Outcome() *Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outcome
}
