package services

import (
	"context"
	"io"

	"github.com/dmitrijs2005/gophbucket/internal/client/models"
	"github.com/dmitrijs2005/gophbucket/internal/filex"
	"github.com/dmitrijs2005/gophbucket/internal/netx"
)

// TokenStore is the persisted credential state shared by the services.
// tokens.Store is the production implementation.
type TokenStore interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	Tokens(ctx context.Context) (models.TokenPair, error)
	SetTokens(ctx context.Context, pair models.TokenPair) error
	ClearTokens(ctx context.Context) error

	BucketToken(ctx context.Context, bucketID string) (string, error)
	SetBucketToken(ctx context.Context, bucketID, token string) error
	ClearBucketToken(ctx context.Context, bucketID string) error

	SetReturnURL(ctx context.Context, url string) error
	TakeReturnURL(ctx context.Context) (string, error)
}

// Navigator sends the user somewhere outside the client: the sign-in page
// after a hard logout, or a raw file URL when a download degrades.
type Navigator interface {
	Open(ctx context.Context, url string) error
}

type NavigatorFunc func(ctx context.Context, url string) error

func (f NavigatorFunc) Open(ctx context.Context, url string) error { return f(ctx, url) }

// BrowserNavigator opens URLs in the desktop browser.
var BrowserNavigator Navigator = NavigatorFunc(func(_ context.Context, url string) error {
	return netx.OpenBrowser(url)
})

// Saver persists a downloaded body under name and returns where it went.
type Saver interface {
	Save(name string, r io.Reader) (string, error)
}

// DirSaver saves into a local directory.
type DirSaver struct {
	Dir string
}

func (s DirSaver) Save(name string, r io.Reader) (string, error) {
	return filex.Save(s.Dir, name, r)
}
