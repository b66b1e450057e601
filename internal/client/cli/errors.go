package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophbucket/internal/client/client"
	"github.com/dmitrijs2005/gophbucket/internal/client/services"
	"github.com/dmitrijs2005/gophbucket/internal/common"
)

var errUsage = errors.New("usage")

// usage prints the command synopsis and returns errUsage.
func usage(text string) error {
	printlnFn("Usage:", text)
	return errUsage
}

// fail logs err and shows the user a short explanation of it.
func (a *App) fail(ctx context.Context, op string, err error) error {
	a.log.Debug(ctx, op+" failed", "error", err)
	printlnFn(describe(err))
	return err
}

func describe(err error) string {
	var te *services.TransferError
	var ce *services.ConfirmError

	switch {
	case errors.Is(err, services.ErrAuthHeaderFailed):
		return "Authentication failed - please sign in again."
	case errors.Is(err, services.ErrNoSession):
		return "You are not signed in. Use 'login' first."
	case errors.Is(err, services.ErrSessionExpired):
		return "Your session has expired. Use 'login' to sign in again."
	case errors.Is(err, services.ErrInvalidPassword):
		return "Invalid password."
	case errors.Is(err, services.ErrPasswordRequired):
		return "This bucket is password protected."
	case errors.Is(err, services.ErrBucketTokenRejected):
		return "Stored bucket access was rejected, unlock the bucket again."
	case errors.Is(err, services.ErrNoFiles):
		return "No files to upload."
	case errors.As(err, &te):
		return fmt.Sprintf("Failed to upload %s.", te.FileName)
	case errors.As(err, &ce):
		return ce.Message
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable, try again later."
	case errors.Is(err, client.ErrNotFound):
		return "Not found."
	case errors.Is(err, common.ErrEmptyID):
		return "An id is required."
	default:
		return "Error: " + client.Message(err)
	}
}
