// Package config loads runtime configuration for the gophbucket CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. A .env file in the working directory, then GOPHBUCKET_* environment
//     variables (see EnvUsage). Variables already set win over .env.
//  4. Command-line flags, which override everything else.
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "30s" or integer
// nanoseconds:
//
//	{
//	  "server_url": "https://bucket.example.com/api",
//	  "store_backend": "sqlite",
//	  "store_path": "/home/me/.config/gophbucket/store.db",
//	  "request_timeout": "30s",
//	  "watch_store": true
//	}
package config
