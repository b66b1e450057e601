package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/gophbucket/internal/client/models"
)

// Client is the HTTP contract of the bucket service. Empty bearer or bucket
// tokens mean "send no such header".
type Client interface {
	// OAuthURL is the browser redirect target for provider. It is never fetched.
	OAuthURL(provider string) string
	ExchangeOAuthCode(ctx context.Context, provider, code, state string) (*models.AuthResponse, error)
	Validate(ctx context.Context, accessToken string) (*models.Claims, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error

	ProtectionStatus(ctx context.Context, bucketID string) (*models.ProtectionStatus, error)
	AuthenticateBucket(ctx context.Context, bucketID, password, bearer string) (*models.BucketAuth, error)

	ListFiles(ctx context.Context, bucketID, bucketToken string) (*models.BucketMetadata, error)
	ListAdmins(ctx context.Context, bucketID, bucketToken string) (*models.BucketAdmins, error)
	Lifecycle(ctx context.Context, bucketID, bucketToken string) (*models.Lifecycle, error)
	// DownloadURL is the raw, unauthenticated address of a file.
	DownloadURL(bucketID, fileID string) string
	// Download returns the file body; the caller closes it.
	Download(ctx context.Context, bucketID, fileID, bucketToken string) (io.ReadCloser, error)

	PrepareUpload(ctx context.Context, req models.PrepareUploadRequest, bearer string) (*models.PrepareUploadResponse, error)
	PutObject(ctx context.Context, url, contentType string, size int64, body io.Reader) error
	ConfirmUpload(ctx context.Context, req models.ConfirmUploadRequest, bearer string) (*models.ConfirmUploadResponse, error)
}
