package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gatherhall/gatherhall-go/internal/cli"
	"github.com/gatherhall/gatherhall-go/pkg/slogx"
)

// version is stamped by the build.
var version = "dev"

const usage = `gatherhall - command line client for the GatherHall platform

Usage:
  gatherhall <command> [flags]

Commands:
  signup     Register an account (-org for an organization)
  login      Log in (-org for an organization)
  2fa        Enable two-factor authentication (-disable to turn it off)
  whoami     Show the current session
  logout     Discard the current session
  events     Browse upcoming events (-page N)
  rsvp       RSVP to an event (-event ID -status going|maybe|not_going)

Configuration comes from the environment; see GATHERHALL_API_URL,
GATHERHALL_SESSION_BACKEND and friends.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cmd := os.Args[1]
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		fmt.Print(usage)
		return
	}

	cfg, err := cli.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	log := slogx.New(slogx.Config{
		App:     "gatherhall",
		Version: version,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := run(ctx, app, cmd, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if app.SessionLost() {
		fmt.Fprintln(os.Stderr, `Your session is no longer valid; run "gatherhall login".`)
	}
}

func run(ctx context.Context, app *cli.App, cmd string, args []string) error {
	switch cmd {
	case "signup":
		fs := flag.NewFlagSet("signup", flag.ExitOnError)
		org := fs.Bool("org", false, "register an organization account")
		fs.Parse(args)
		return app.Signup(ctx, *org)

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		org := fs.Bool("org", false, "log in as an organization")
		fs.Parse(args)
		return app.Login(ctx, *org)

	case "2fa":
		fs := flag.NewFlagSet("2fa", flag.ExitOnError)
		org := fs.Bool("org", false, "operate on an organization account")
		disable := fs.Bool("disable", false, "turn two-factor authentication off")
		secret := fs.String("secret", "", "derive TOTP codes from this secret instead of prompting")
		fs.Parse(args)
		return app.TwoFactor(ctx, *org, *disable, *secret)

	case "whoami":
		return app.Whoami(ctx)

	case "logout":
		return app.Logout(ctx)

	case "events":
		fs := flag.NewFlagSet("events", flag.ExitOnError)
		page := fs.Int("page", 1, "page to list")
		fs.Parse(args)
		return app.Events(ctx, *page)

	case "rsvp":
		fs := flag.NewFlagSet("rsvp", flag.ExitOnError)
		event := fs.Int64("event", 0, "event id")
		status := fs.String("status", "going", "going, maybe or not_going")
		fs.Parse(args)
		if *event == 0 {
			return errors.New("rsvp: -event is required")
		}
		return app.Rsvp(ctx, *event, *status)

	default:
		return fmt.Errorf("unknown command %q, see \"gatherhall help\"", cmd)
	}
}
