package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gatherhall/gatherhall-go/internal/auth"
	"github.com/gatherhall/gatherhall-go/internal/session"
	"github.com/gatherhall/gatherhall-go/pkg/gatherapi"
)

const codeAttempts = 3

// isTwoFactorChallenge reports whether a login failure is the backend asking
// for a second factor rather than rejecting the credentials.
func isTwoFactorChallenge(err error) bool {
	var apiErr *gatherapi.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code == "2fa_required" {
		return true
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "2fa")
}

func (a *App) credentials() (email, password string, err error) {
	email, err = a.prompt.line("Email: ")
	if err != nil {
		return "", "", err
	}
	password, err = a.prompt.password("Password: ")
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

// Login exchanges credentials for a committed session, walking the TOTP
// challenge when the account has two-factor enabled.
func (a *App) Login(ctx context.Context, asOrg bool) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}

	var res *auth.Result
	if asOrg {
		res, err = a.ctrl.SubmitOrganization(ctx, gatherapi.OrganizationCredentials{Email: email, Password: password}, auth.SubmitOptions{})
	} else {
		res, err = a.ctrl.SubmitMember(ctx, gatherapi.MemberCredentials{Email: email, Password: password}, auth.SubmitOptions{})
	}

	if isTwoFactorChallenge(err) {
		return a.verifyTwoFactorLogin(ctx, email, asOrg)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s.\n", res.Session.Principal.DisplayName())
	return nil
}

func (a *App) verifyTwoFactorLogin(ctx context.Context, email string, asOrg bool) error {
	for tries := 0; tries < codeAttempts; tries++ {
		code, err := a.prompt.line("TOTP code: ")
		if err != nil {
			return err
		}

		resp, err := a.client.VerifyTwoFactor(ctx, gatherapi.VerifyTwoFactorRequest{
			Email:        email,
			TOTPToken:    code,
			Organization: asOrg,
		})
		if err != nil {
			fmt.Fprintf(a.out, "Code rejected: %v\n", err)
			continue
		}

		sess, err := session.FromLogin(resp)
		if err != nil {
			return err
		}
		if err := a.store.Login(ctx, sess); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Logged in as %s.\n", sess.Principal.DisplayName())
		return nil
	}
	return errors.New("too many rejected codes")
}

// Signup registers an account and walks the email verification.
func (a *App) Signup(ctx context.Context, asOrg bool) error {
	var (
		email string
		err   error
	)

	if asOrg {
		req := gatherapi.RegisterOrganizationRequest{}
		if req.Name, err = a.prompt.line("Organization name: "); err != nil {
			return err
		}
		if req.Email, err = a.prompt.line("Email: "); err != nil {
			return err
		}
		if req.Password, err = a.prompt.password("Password: "); err != nil {
			return err
		}
		if !a.reportFieldErrors(req.Validate()) {
			return errors.New("invalid input")
		}
		if _, err = a.client.RegisterOrganization(ctx, req); err != nil {
			return err
		}
		email = req.Email
	} else {
		req := gatherapi.RegisterMemberRequest{}
		if req.FirstName, err = a.prompt.line("First name: "); err != nil {
			return err
		}
		if req.LastName, err = a.prompt.line("Last name: "); err != nil {
			return err
		}
		if req.Email, err = a.prompt.line("Email: "); err != nil {
			return err
		}
		if req.Password, err = a.prompt.password("Password: "); err != nil {
			return err
		}
		if !a.reportFieldErrors(req.Validate()) {
			return errors.New("invalid input")
		}
		if _, err = a.client.RegisterMember(ctx, req); err != nil {
			return err
		}
		email = req.Email
	}

	fmt.Fprintln(a.out, "Account created. A verification code was emailed to you.")

	for tries := 0; tries < codeAttempts; tries++ {
		code, err := a.prompt.line("Verification code (or \"resend\"): ")
		if err != nil {
			return err
		}
		if strings.EqualFold(code, "resend") {
			if _, err := a.client.ResendEmailOTP(ctx, email); err != nil {
				return err
			}
			tries--
			continue
		}
		if _, err := a.client.VerifyEmailOTP(ctx, email, code); err != nil {
			fmt.Fprintf(a.out, "Code rejected: %v\n", err)
			continue
		}
		fmt.Fprintln(a.out, "Email verified. You can now log in.")
		return nil
	}
	return errors.New("too many rejected codes")
}

func (a *App) reportFieldErrors(fields map[string]string) bool {
	if len(fields) == 0 {
		return true
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(a.out, "%s: %s\n", name, fields[name])
	}
	return false
}

// TwoFactor turns the second factor on or off. Without a live session it
// performs a deferred login first, so nothing is committed to the store
// until the enrollment resolves. A non-empty secret derives codes locally
// instead of prompting for them.
func (a *App) TwoFactor(ctx context.Context, asOrg, disable bool, secret string) error {
	var pending *auth.PendingLogin

	_, err := a.store.Current(ctx)
	switch {
	case err == nil && a.jar.Has(auth.SessionCookieName):
		// Live session; operate on it in place.
		if status, serr := a.client.TwoFAStatus(ctx); serr == nil {
			state := "off"
			if status.Enabled {
				state = "on"
			}
			fmt.Fprintf(a.out, "Two-factor is currently %s (%d backup codes).\n", state, status.BackupCodesCount)
		}
	case err != nil && !errors.Is(err, session.ErrNoSession):
		return err
	default:
		email, password, cerr := a.credentials()
		if cerr != nil {
			return cerr
		}

		var res *auth.Result
		if asOrg {
			res, cerr = a.ctrl.SubmitOrganization(ctx, gatherapi.OrganizationCredentials{Email: email, Password: password}, auth.SubmitOptions{Deferred: true})
		} else {
			res, cerr = a.ctrl.SubmitMember(ctx, gatherapi.MemberCredentials{Email: email, Password: password}, auth.SubmitOptions{Deferred: true})
		}
		if cerr != nil {
			return cerr
		}
		pending = res.Pending
	}

	enr := auth.NewEnrollment(auth.EnrollmentConfig{
		Gateway: a.client,
		Store:   a.store,
		Probe:   auth.NewCookieProbe(a.jar, a.base),
		Pending: pending,
		Logger:  a.log,
	})
	if err := enr.Start(ctx); err != nil {
		return fmt.Errorf("two-factor setup unavailable: %w", err)
	}

	choice := auth.ChoiceEnable
	if disable {
		choice = auth.ChoiceDisable
	} else {
		a.printSetup(enr.Setup())
	}
	if err := enr.Choose(choice); err != nil {
		return err
	}

	for tries := 0; tries < codeAttempts; tries++ {
		var code string
		if secret != "" {
			if code, err = gatherapi.CurrentCode(secret, time.Now()); err != nil {
				return err
			}
		} else if code, err = a.prompt.line("TOTP code: "); err != nil {
			return err
		}

		out, err := enr.SubmitCode(ctx, code)
		if err != nil {
			fmt.Fprintf(a.out, "Code rejected: %v\n", err)
			continue
		}

		if disable {
			fmt.Fprintln(a.out, "Two-factor authentication disabled.")
		} else {
			fmt.Fprintln(a.out, "Two-factor authentication enabled.")
		}
		fmt.Fprintf(a.out, "Signed in as %s.\n", out.Session.Principal.DisplayName())
		return nil
	}
	return errors.New("too many rejected codes")
}

func (a *App) printSetup(setup *gatherapi.TwoFASetup) {
	if setup == nil {
		return
	}

	if key, err := gatherapi.ParseSetupKey(setup); err == nil {
		fmt.Fprintf(a.out, "Authenticator URL: %s\n", key.URL())
		fmt.Fprintf(a.out, "Secret:            %s\n", key.Secret())
	} else if setup.Secret != "" {
		fmt.Fprintf(a.out, "Secret: %s\n", setup.Secret)
	}
	fmt.Fprintln(a.out, "Add the account to your authenticator app, then enter a code.")
}

// Whoami prints the committed session.
func (a *App) Whoami(ctx context.Context) error {
	sess, err := a.store.Current(ctx)
	if errors.Is(err, session.ErrNoSession) {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	if err != nil {
		return err
	}

	p := sess.Principal
	fmt.Fprintf(a.out, "%s: %s <%s>\n", p.Kind, p.DisplayName(), p.Email())

	twofa := "off"
	if p.TwoFactorEnabled() {
		twofa = "on"
	}
	fmt.Fprintf(a.out, "Two-factor: %s\n", twofa)
	fmt.Fprintf(a.out, "Session expires: %s\n", sess.ExpiresAt.Local().Format("2006-01-02 15:04"))

	for _, c := range a.jar.Cookies(a.base) {
		if c.Name != auth.SessionCookieName {
			continue
		}
		if exp, err := gatherapi.SessionTokenExpiry(c.Value); err == nil {
			fmt.Fprintf(a.out, "Token expires:   %s\n", exp.Local().Format("2006-01-02 15:04"))
		}
	}
	return nil
}

// Logout discards the committed session and all cookies.
func (a *App) Logout(ctx context.Context) error {
	if err := a.store.Logout(ctx); err != nil {
		return err
	}
	if err := a.jar.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// Events prints a page of upcoming events.
func (a *App) Events(ctx context.Context, page int) error {
	resp, err := a.client.ListEvents(ctx, page)
	if err != nil {
		return err
	}

	if len(resp.Events) == 0 {
		fmt.Fprintln(a.out, "No events.")
		return nil
	}

	for _, ev := range resp.Events {
		fmt.Fprintf(a.out, "%6d  %s  %-30s  %s (%d attending)\n",
			ev.ID, ev.StartsAt.Local().Format("2006-01-02 15:04"), ev.Title, ev.Location, ev.Attending)
	}
	if resp.HasMore {
		fmt.Fprintf(a.out, "More events on page %d.\n", resp.Page+1)
	}
	return nil
}

// Rsvp records attendance for an event.
func (a *App) Rsvp(ctx context.Context, eventID int64, status string) error {
	resp, err := a.client.RSVP(ctx, eventID, strings.ToLower(status))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, resp.Message)
	return nil
}
