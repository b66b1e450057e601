package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Store backends accepted in StoreBackend.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds runtime settings for the gophbucket CLI.
//
// SignInURL is opened after a forced logout; when empty the CLI uses the
// OAuth URL of the default provider.
type Config struct {
	ServerURL      string
	SignInURL      string
	StoreBackend   string
	StorePath      string
	RedisAddr      string
	RedisPassword  string
	RequestTimeout time.Duration
	DownloadDir    string
	LogLevel       string
	WatchStore     bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.SignInURL = ""
	c.StoreBackend = BackendSQLite
	c.StorePath = defaultStorePath()
	c.RedisAddr = "localhost:6379"
	c.RedisPassword = ""
	c.RequestTimeout = 30 * time.Second
	c.DownloadDir = "."
	c.LogLevel = "info"
	c.WatchStore = true
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "gophbucket.db"
	}
	return filepath.Join(dir, "gophbucket", "store.db")
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server url %q must be an absolute http(s) url", c.ServerURL)
	}
	switch c.StoreBackend {
	case BackendSQLite:
		if c.StorePath == "" {
			return fmt.Errorf("store path is required for the sqlite backend")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis address is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

// LoadConfig constructs a Config from args (without the program name):
// defaults, then the JSON file named by -c/-config, then .env and
// GOPHBUCKET_* environment variables, then flags. Later sources take
// precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, ".env"); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
