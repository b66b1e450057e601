package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/gophbucket/internal/flagx"
)

var knownFlags = []string{"-a", "-s", "-b", "-p", "-r", "-t", "-d", "-l", "-w"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string    backend base url
//	-s string    sign-in page opened after a forced logout
//	-b string    store backend: sqlite, memory or redis
//	-p string    sqlite store path
//	-r string    redis address
//	-t duration  api request timeout
//	-d string    download directory
//	-l string    log level
//	-w bool      watch the store for external changes (use -w=false)
//
// args are filtered with flagx.FilterArgs first, so flags owned by other
// loaders (-c) do not cause errors here.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("gophbucket", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "backend base url")
	fs.StringVar(&cfg.SignInURL, "s", cfg.SignInURL, "sign-in page")
	fs.StringVar(&cfg.StoreBackend, "b", cfg.StoreBackend, "store backend")
	fs.StringVar(&cfg.StorePath, "p", cfg.StorePath, "sqlite store path")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "redis address")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "api request timeout")
	fs.StringVar(&cfg.DownloadDir, "d", cfg.DownloadDir, "download directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.BoolVar(&cfg.WatchStore, "w", cfg.WatchStore, "watch the store for external changes")

	return fs.Parse(args)
}
