package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/gophbucket/internal/flagx"
	"github.com/dmitrijs2005/gophbucket/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "30s" or as integer nanoseconds. Absent fields leave the
// runtime Config untouched.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	SignInURL      string         `json:"sign_in_url"`
	StoreBackend   string         `json:"store_backend"`
	StorePath      string         `json:"store_path"`
	RedisAddr      string         `json:"redis_addr"`
	RedisPassword  string         `json:"redis_password"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	DownloadDir    string         `json:"download_dir"`
	LogLevel       string         `json:"log_level"`
	WatchStore     *bool          `json:"watch_store"`
}

// parseJson overlays cfg with the JSON file named by -c or -config in args.
// Without either flag nothing is loaded.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.SignInURL, jc.SignInURL)
	setString(&cfg.StoreBackend, jc.StoreBackend)
	setString(&cfg.StorePath, jc.StorePath)
	setString(&cfg.RedisAddr, jc.RedisAddr)
	setString(&cfg.RedisPassword, jc.RedisPassword)
	setString(&cfg.DownloadDir, jc.DownloadDir)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.WatchStore != nil {
		cfg.WatchStore = *jc.WatchStore
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
