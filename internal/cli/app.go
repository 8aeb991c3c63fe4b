package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"sync/atomic"

	goredis "github.com/redis/go-redis/v9"

	"github.com/gatherhall/gatherhall-go/internal/auth"
	"github.com/gatherhall/gatherhall-go/internal/session"
	redisdriver "github.com/gatherhall/gatherhall-go/internal/session/drivers/redis"
	sqlitedriver "github.com/gatherhall/gatherhall-go/internal/session/drivers/sqlite"
	"github.com/gatherhall/gatherhall-go/pkg/cryptox"
	"github.com/gatherhall/gatherhall-go/pkg/gatherapi"
)

// App owns the wired client stack for one CLI invocation: sealer, session
// store, persistent cookie jar, API client and login controller.
type App struct {
	cfg   Config
	log   *slog.Logger
	base  *url.URL
	store session.Store
	jar   *session.PersistentJar

	client *gatherapi.Client
	ctrl   *auth.Controller

	prompt *prompter
	out    io.Writer

	// sessionLost flips when the API answers 401 outside a login or a
	// suppressed mid-auth call. Checked after each command to tell the
	// user to log in again.
	sessionLost atomic.Bool
}

// NewApp wires the full stack from config.
func NewApp(ctx context.Context, cfg Config, log *slog.Logger) (*App, error) {
	base, err := url.Parse(cfg.APIURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", cfg.APIURL, err)
	}

	sealer, err := cryptox.NewSealer(cfg.MasterKeyPath)
	if err != nil {
		return nil, err
	}
	codec := session.NewCodec(sealer)

	store, err := openStore(ctx, cfg, codec)
	if err != nil {
		return nil, err
	}

	jar, err := session.NewPersistentJar(ctx, store, base, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	deviceID, err := cfg.DeviceID()
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a := &App{
		cfg:    cfg,
		log:    log,
		base:   base,
		store:  store,
		jar:    jar,
		prompt: newPrompter(),
		out:    os.Stdout,
	}

	a.client = gatherapi.NewClient(cfg.APIURL,
		gatherapi.WithCookieJar(jar),
		gatherapi.WithDeviceID(deviceID),
		gatherapi.WithLogger(log),
		gatherapi.WithUnauthorizedHook(func() {
			a.sessionLost.Store(true)
			log.Warn("api rejected the session")
		}),
	)
	a.ctrl = auth.NewController(a.client, store, log)

	return a, nil
}

func openStore(ctx context.Context, cfg Config, codec *session.Codec) (session.Store, error) {
	switch cfg.SessionBackend {
	case "redis":
		return redisdriver.NewStore(ctx, &goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}, codec)
	case "memory":
		return session.NewMemoryStore(), nil
	default:
		return sqlitedriver.NewStore(cfg.SessionDB, codec)
	}
}

// Close releases the session store.
func (a *App) Close() error {
	return a.store.Close()
}

// SessionLost reports whether the API invalidated the session during this
// invocation.
func (a *App) SessionLost() bool {
	return a.sessionLost.Load()
}
