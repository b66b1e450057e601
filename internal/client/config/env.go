package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// envConfig mirrors Config for environment variables. Every field is a
// string so an unset variable can be told apart from a zero value.
type envConfig struct {
	ServerURL      string `env:"GOPHBUCKET_SERVER_URL" env-description:"backend base url"`
	SignInURL      string `env:"GOPHBUCKET_SIGNIN_URL" env-description:"page opened after a forced logout"`
	StoreBackend   string `env:"GOPHBUCKET_STORE_BACKEND" env-description:"sqlite, memory or redis"`
	StorePath      string `env:"GOPHBUCKET_STORE_PATH" env-description:"sqlite store file"`
	RedisAddr      string `env:"GOPHBUCKET_REDIS_ADDR" env-description:"redis host:port"`
	RedisPassword  string `env:"GOPHBUCKET_REDIS_PASSWORD" env-description:"redis password"`
	RequestTimeout string `env:"GOPHBUCKET_REQUEST_TIMEOUT" env-description:"api request timeout, e.g. 30s"`
	DownloadDir    string `env:"GOPHBUCKET_DOWNLOAD_DIR" env-description:"where downloads are saved"`
	LogLevel       string `env:"GOPHBUCKET_LOG_LEVEL" env-description:"debug, info, warn or error"`
	WatchStore     string `env:"GOPHBUCKET_WATCH_STORE" env-description:"watch the store for changes by other processes"`
}

// parseEnv loads dotenv (if it exists, without overriding variables that are
// already set) and overlays cfg with GOPHBUCKET_* variables.
func parseEnv(cfg *Config, dotenv string) error {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", dotenv, err)
		}
	}

	var ec envConfig
	if err := cleanenv.ReadEnv(&ec); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	setString(&cfg.ServerURL, ec.ServerURL)
	setString(&cfg.SignInURL, ec.SignInURL)
	setString(&cfg.StoreBackend, ec.StoreBackend)
	setString(&cfg.StorePath, ec.StorePath)
	setString(&cfg.RedisAddr, ec.RedisAddr)
	setString(&cfg.RedisPassword, ec.RedisPassword)
	setString(&cfg.DownloadDir, ec.DownloadDir)
	setString(&cfg.LogLevel, ec.LogLevel)

	if ec.RequestTimeout != "" {
		d, err := time.ParseDuration(ec.RequestTimeout)
		if err != nil {
			return fmt.Errorf("GOPHBUCKET_REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if ec.WatchStore != "" {
		b, err := strconv.ParseBool(ec.WatchStore)
		if err != nil {
			return fmt.Errorf("GOPHBUCKET_WATCH_STORE: %w", err)
		}
		cfg.WatchStore = b
	}
	return nil
}

// EnvUsage describes the supported environment variables.
func EnvUsage() string {
	desc, err := cleanenv.GetDescription(&envConfig{}, nil)
	if err != nil {
		return ""
	}
	return desc
}
