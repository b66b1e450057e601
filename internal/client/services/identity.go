package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophbucket/internal/logging"
)

// identity resolves the optional user bearer token for requests that work
// both anonymously and signed in.
type identity struct {
	sessions SessionManager
	store    TokenStore
	log      logging.Logger
}

// bearer returns "" when no user session is stored. When one is stored but
// cannot be turned into a valid token, strict callers get
// ErrAuthHeaderFailed and lenient callers proceed anonymously.
func (i identity) bearer(ctx context.Context, strict bool) (string, error) {
	tok, err := i.store.AccessToken(ctx)
	if err == nil && tok == "" {
		return "", nil
	}
	if err == nil {
		tok, err = i.sessions.EnsureValidToken(ctx)
	}
	if err == nil {
		return tok, nil
	}

	if strict {
		return "", fmt.Errorf("%w: %w", ErrAuthHeaderFailed, err)
	}
	i.log.Warn(ctx, "continuing without user identity", "error", err)
	return "", nil
}
