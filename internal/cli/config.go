package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Config is assembled from the environment. Every knob has a default that
// works on a workstation talking to a local backend.
type Config struct {
	// APIURL is the base URL of the platform API.
	APIURL string

	// SessionBackend selects the session store driver: "sqlite", "redis"
	// or "memory".
	SessionBackend string

	// SessionDB is the sqlite database path. Defaults to
	// <state dir>/session.db.
	SessionDB string

	// RedisAddr and RedisPassword configure the redis backend.
	RedisAddr     string
	RedisPassword string

	// MasterKeyPath points at the file whose contents seal persisted
	// session material. Empty falls back to GATHERHALL_MASTER_KEY, then to
	// an ephemeral key.
	MasterKeyPath string

	// StateDir holds the session database and the device identifier.
	StateDir string

	LogLevel  string
	LogFormat string
	Env       string
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (Config, error) {
	cfg := Config{
		APIURL:         getenv("GATHERHALL_API_URL", "http://localhost:8000"),
		SessionBackend: strings.ToLower(getenv("GATHERHALL_SESSION_BACKEND", "sqlite")),
		RedisAddr:      getenv("GATHERHALL_REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("GATHERHALL_REDIS_PASSWORD"),
		MasterKeyPath:  os.Getenv("GATHERHALL_MASTER_KEY_PATH"),
		StateDir:       os.Getenv("GATHERHALL_STATE_DIR"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogFormat:      getenv("LOG_FORMAT", "text"),
		Env:            getenv("ENV", "prod"),
	}

	switch cfg.SessionBackend {
	case "sqlite", "redis", "memory":
	default:
		return Config{}, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}

	if cfg.StateDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return Config{}, fmt.Errorf("failed to resolve state dir: %w", err)
		}
		cfg.StateDir = filepath.Join(base, "gatherhall")
	}
	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		return Config{}, fmt.Errorf("failed to create state dir: %w", err)
	}

	cfg.SessionDB = getenv("GATHERHALL_SESSION_DB", filepath.Join(cfg.StateDir, "session.db"))

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// DeviceID returns the stable per-install identifier, minting one on first
// use. The backend uses it to bind sessions to a device.
func (c Config) DeviceID() (string, error) {
	path := filepath.Join(c.StateDir, "device_id")

	data, err := os.ReadFile(path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read device id: %w", err)
	}

	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("failed to persist device id: %w", err)
	}
	return id, nil
}
