package cli

import (
	"context"
)

// Buckets prints the ids of buckets this client holds a token for.
func (a *App) Buckets(ctx context.Context) error {
	ids, err := a.store.UnlockedBuckets(ctx)
	if err != nil {
		return a.fail(ctx, "list unlocked buckets", err)
	}
	if len(ids) == 0 {
		printlnFn("No unlocked buckets")
		return nil
	}
	for _, id := range ids {
		printlnFn(id)
	}
	return nil
}

// Reset signs out and then wipes every stored credential.
func (a *App) Reset(ctx context.Context) error {
	if err := a.sessions.SignOut(ctx); err != nil {
		a.log.Debug(ctx, "sign out before reset", "error", err)
	}
	if err := a.store.Reset(ctx); err != nil {
		return a.fail(ctx, "reset store", err)
	}
	printlnFn("All stored credentials removed")
	return nil
}
