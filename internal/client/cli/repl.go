package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) error
	Upload(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Admins(ctx context.Context, args []string) error
	Expiry(ctx context.Context, args []string) error
	IsAdmin(ctx context.Context, args []string) error
	Unlock(ctx context.Context, args []string) error
	Lock(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
	Buckets(ctx context.Context) error
	Reset(ctx context.Context) error
}

// runREPL reads commands from scanner and dispatches them to a until EOF or
// "exit"/"quit".
//
//	help                              show available commands
//	login [provider]                  sign in through OAuth
//	logout                            sign out and revoke the refresh token
//	status                            show session state
//	upload [-p password] <file>...    upload files into a new bucket
//	ls <bucket>                       list a bucket, prompting for its password when needed
//	admins <bucket>                   list bucket owner and admins
//	expiry <bucket>                   show when a bucket expires
//	isadmin <bucket>                  report whether the signed-in user administers a bucket
//	unlock <bucket>                   authenticate against a protected bucket
//	lock <bucket>                     forget the stored bucket token
//	download <bucket> <file> [name]   save a file locally
//	stats                             print transfer counters
//	buckets                           list buckets with a stored token
//	reset                             sign out and remove all stored credentials
//	exit | quit                       leave the program
//
// Handlers report their own failures, so returned errors are dropped here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("gb %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				printlnFn("Available commands: upload, ls, admins, expiry, isadmin, unlock, lock, download, buckets, status, stats, reset, logout, exit")
			} else {
				printlnFn("Available commands: login, upload, ls, admins, expiry, unlock, lock, download, buckets, status, stats, reset, exit")
			}

		case "login":
			_ = a.Login(ctx, args)

		case "logout":
			_ = a.Logout(ctx)

		case "status":
			_ = a.Status(ctx)

		case "upload", "up":
			_ = a.Upload(ctx, args)

		case "ls", "list":
			_ = a.List(ctx, args)

		case "admins":
			_ = a.Admins(ctx, args)

		case "expiry":
			_ = a.Expiry(ctx, args)

		case "isadmin":
			_ = a.IsAdmin(ctx, args)

		case "unlock":
			_ = a.Unlock(ctx, args)

		case "lock":
			_ = a.Lock(ctx, args)

		case "download", "get":
			_ = a.Download(ctx, args)

		case "stats":
			_ = a.Stats(ctx)

		case "buckets":
			_ = a.Buckets(ctx)

		case "reset":
			_ = a.Reset(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
