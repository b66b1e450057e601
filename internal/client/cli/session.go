package cli

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophbucket/internal/common"
)

var errCodeRequired = errors.New("authorization code is required")

// Login opens the provider's sign-in page, then asks for the code and state
// the callback page shows and exchanges them for a session.
func (a *App) Login(ctx context.Context, args []string) error {
	provider := common.DefaultOAuthProvider
	if len(args) > 0 {
		provider = args[0]
	}

	url, err := a.sessions.BeginSignIn(ctx, provider, common.DefaultReturnURL)
	if err != nil {
		return a.fail(ctx, "begin sign-in", err)
	}
	printlnFn("Open this URL to sign in:", url)
	if a.navigator != nil {
		if err := a.navigator.Open(ctx, url); err != nil {
			a.log.Debug(ctx, "could not open browser", "error", err)
		}
	}

	code, err := GetSimpleText(a.reader, "-Enter authorization code", a.out)
	if err != nil {
		return a.fail(ctx, "read code", err)
	}
	if code == "" {
		return a.fail(ctx, "read code", errCodeRequired)
	}
	state, err := GetSimpleText(a.reader, "-Enter state", a.out)
	if err != nil {
		return a.fail(ctx, "read state", err)
	}

	returnTo, err := a.sessions.CompleteSignIn(ctx, provider, code, state)
	if err != nil {
		return a.fail(ctx, "sign in", err)
	}
	printlnFn("Login successful, continue at", returnTo)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.sessions.SignOut(ctx); err != nil {
		return a.fail(ctx, "logout", err)
	}
	printlnFn("Logged out")
	return nil
}

// Status prints whether a session is stored and when its access token
// expires. The user id is only shown when the backend confirms the token.
func (a *App) Status(ctx context.Context) error {
	info := a.sessions.Info(ctx)
	if !info.Authenticated {
		printlnFn("Not signed in")
		return nil
	}

	if id, ok := a.sessions.CurrentUserID(ctx); ok {
		printlnFn("Signed in as", id)
	} else {
		printlnFn("Signed in (token not verified)")
	}
	if !info.ExpiresAt.IsZero() {
		printlnFn("Access token expires", info.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}
