package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophbucket/internal/client/services"
)

// List prints the files of a bucket. When the bucket asks for a password,
// the user is prompted once and the listing retried.
func (a *App) List(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("ls <bucket>")
	}
	bucket := args[0]

	meta, err := a.retrieval.ListFiles(ctx, bucket)
	if errors.Is(err, services.ErrPasswordRequired) || errors.Is(err, services.ErrBucketTokenRejected) {
		printlnFn(describe(err))
		if err := a.unlock(ctx, bucket); err != nil {
			return err
		}
		meta, err = a.retrieval.ListFiles(ctx, bucket)
	}
	if err != nil {
		return a.fail(ctx, "list files", err)
	}

	if len(meta.Files) == 0 {
		printlnFn("Bucket is empty")
		return nil
	}
	for _, f := range meta.Files {
		printlnFn(fmt.Sprintf("%-24s %12d  %s", f.StringID, f.Size, f.OriginalName))
	}
	printlnFn(fmt.Sprintf("%d file(s), %d bytes", len(meta.Files), meta.TotalSize))
	return nil
}

func (a *App) Admins(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("admins <bucket>")
	}
	admins, err := a.retrieval.ListAdmins(ctx, args[0])
	if err != nil {
		return a.fail(ctx, "list admins", err)
	}
	if admins.Owner != nil {
		printlnFn("owner", admins.Owner.UserID, admins.Owner.Email)
	}
	for _, ad := range admins.Admins {
		if admins.Owner != nil && ad.UserID == admins.Owner.UserID {
			continue
		}
		printlnFn("admin", ad.UserID, ad.Email)
	}
	return nil
}

func (a *App) Expiry(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("expiry <bucket>")
	}
	lc, err := a.retrieval.Lifecycle(ctx, args[0])
	if err != nil {
		return a.fail(ctx, "lifecycle", err)
	}
	if lc.ExpiresAt.IsZero() {
		printlnFn("Bucket does not expire")
		return nil
	}
	printlnFn("Bucket expires", lc.ExpiresAt.Local().Format(time.RFC1123))
	return nil
}

func (a *App) IsAdmin(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("isadmin <bucket>")
	}
	if a.retrieval.IsAdmin(ctx, args[0]) {
		printlnFn("yes")
	} else {
		printlnFn("no")
	}
	return nil
}

// Unlock stores a bucket token for a protected bucket. Public buckets need
// nothing.
func (a *App) Unlock(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("unlock <bucket>")
	}
	protected, err := a.buckets.IsProtected(ctx, args[0])
	if err != nil {
		return a.fail(ctx, "protection status", err)
	}
	if !protected {
		printlnFn("Bucket is public")
		return nil
	}
	return a.unlock(ctx, args[0])
}

func (a *App) unlock(ctx context.Context, bucket string) error {
	password, err := GetPassword("-Enter bucket password", a.out)
	if err != nil {
		return a.fail(ctx, "read password", err)
	}
	if _, err := a.buckets.Authenticate(ctx, bucket, password); err != nil {
		return a.fail(ctx, "unlock", err)
	}
	printlnFn("Bucket unlocked")
	return nil
}

func (a *App) Lock(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("lock <bucket>")
	}
	if err := a.buckets.Forget(ctx, args[0]); err != nil {
		return a.fail(ctx, "lock", err)
	}
	printlnFn("Bucket token removed")
	return nil
}

// Download saves a file into the download directory. Protected buckets
// without a stored token are opened in the browser instead.
func (a *App) Download(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return usage("download <bucket> <file> [name]")
	}
	name := ""
	if len(args) == 3 {
		name = args[2]
	}

	res, err := a.retrieval.Download(ctx, args[0], args[1], name)
	if err != nil {
		return a.fail(ctx, "download", err)
	}
	if res.FellBack() {
		printlnFn("Bucket is password protected, opened in browser:", res.FallbackURL)
		return nil
	}
	printlnFn("Saved to", res.Path)
	return nil
}
