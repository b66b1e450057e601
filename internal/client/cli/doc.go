// Package cli provides the interactive GophBucket command-line client.
//
// NewApp opens the configured token store (SQLite, Redis or memory), builds
// the HTTP API client and wires the session, bucket, upload and retrieval
// services on top of it. App.Run starts an optional watcher that reports
// session changes made by other clients sharing the SQLite store, then
// blocks in the REPL (see runREPL) until the user exits.
package cli
