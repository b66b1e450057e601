package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophbucket/internal/client/client"
	"github.com/dmitrijs2005/gophbucket/internal/client/models"
	"github.com/dmitrijs2005/gophbucket/internal/common"
	"github.com/dmitrijs2005/gophbucket/internal/logging"
)

// RetrievalGate reads bucket contents. Every call attaches the stored bucket
// token when there is one. Listings are never cached.
type RetrievalGate interface {
	ListFiles(ctx context.Context, bucketID string) (*models.BucketMetadata, error)
	ListAdmins(ctx context.Context, bucketID string) (*models.BucketAdmins, error)
	Lifecycle(ctx context.Context, bucketID string) (*models.Lifecycle, error)
	// IsAdmin never fails; any error means false.
	IsAdmin(ctx context.Context, bucketID string) bool
	Download(ctx context.Context, bucketID, fileID, displayName string) (models.DownloadResult, error)
}

type retrievalGate struct {
	client    client.Client
	store     TokenStore
	sessions  SessionManager
	navigator Navigator
	saver     Saver
	log       logging.Logger
}

func NewRetrievalGate(c client.Client, store TokenStore, sessions SessionManager, nav Navigator, saver Saver, log logging.Logger) RetrievalGate {
	if log == nil {
		log = logging.NewNop()
	}
	return &retrievalGate{
		client:    c,
		store:     store,
		sessions:  sessions,
		navigator: nav,
		saver:     saver,
		log:       log.With("component", "retrieval"),
	}
}

func (g *retrievalGate) bucketToken(ctx context.Context, bucketID string) (string, error) {
	if strings.TrimSpace(bucketID) == "" {
		return "", common.ErrEmptyID
	}
	tok, err := g.store.BucketToken(ctx, bucketID)
	if err != nil {
		return "", fmt.Errorf("read bucket token: %w", err)
	}
	return tok, nil
}

// classify keeps the client error in the chain so callers can still match
// client.ErrNotFound and client.ErrUnauthorized.
func classify(op, bucketID string, hadToken bool, err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		if hadToken {
			return fmt.Errorf("%s %s: %w: %w", op, bucketID, ErrBucketTokenRejected, err)
		}
		return fmt.Errorf("%s %s: %w: %w", op, bucketID, ErrPasswordRequired, err)
	}
	return fmt.Errorf("%s %s: %w", op, bucketID, err)
}

func (g *retrievalGate) ListFiles(ctx context.Context, bucketID string) (*models.BucketMetadata, error) {
	tok, err := g.bucketToken(ctx, bucketID)
	if err != nil {
		return nil, err
	}
	meta, err := g.client.ListFiles(ctx, bucketID, tok)
	if err != nil {
		return nil, classify("list files", bucketID, tok != "", err)
	}
	return meta, nil
}

func (g *retrievalGate) ListAdmins(ctx context.Context, bucketID string) (*models.BucketAdmins, error) {
	tok, err := g.bucketToken(ctx, bucketID)
	if err != nil {
		return nil, err
	}
	admins, err := g.client.ListAdmins(ctx, bucketID, tok)
	if err != nil {
		return nil, classify("list admins", bucketID, tok != "", err)
	}
	return admins, nil
}

func (g *retrievalGate) Lifecycle(ctx context.Context, bucketID string) (*models.Lifecycle, error) {
	tok, err := g.bucketToken(ctx, bucketID)
	if err != nil {
		return nil, err
	}
	lc, err := g.client.Lifecycle(ctx, bucketID, tok)
	if err != nil {
		return nil, classify("lifecycle", bucketID, tok != "", err)
	}
	return lc, nil
}

func (g *retrievalGate) IsAdmin(ctx context.Context, bucketID string) bool {
	userID, ok := g.sessions.CurrentUserID(ctx)
	if !ok {
		return false
	}
	admins, err := g.ListAdmins(ctx, bucketID)
	if err != nil {
		g.log.Debug(ctx, "admin check failed", "bucket_id", bucketID, "error", err)
		return false
	}
	return admins.Includes(userID)
}

// Download saves the file under displayName (or fileID). When the bucket is
// protected and no token is stored, the raw URL is handed to the navigator
// instead and FallbackURL is set on the result.
func (g *retrievalGate) Download(ctx context.Context, bucketID, fileID, displayName string) (models.DownloadResult, error) {
	tok, err := g.bucketToken(ctx, bucketID)
	if err != nil {
		return models.DownloadResult{}, err
	}
	if strings.TrimSpace(fileID) == "" {
		return models.DownloadResult{}, common.ErrEmptyID
	}

	body, err := g.client.Download(ctx, bucketID, fileID, tok)
	if err != nil {
		if tok == "" && client.StatusCode(err) == http.StatusUnauthorized {
			return g.fallback(ctx, bucketID, fileID)
		}
		recordDownload(resultFailed)
		return models.DownloadResult{}, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	defer body.Close()

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = fileID
	}
	path, err := g.saver.Save(name, body)
	if err != nil {
		recordDownload(resultFailed)
		return models.DownloadResult{}, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}

	recordDownload(resultOK)
	return models.DownloadResult{Path: path}, nil
}

func (g *retrievalGate) fallback(ctx context.Context, bucketID, fileID string) (models.DownloadResult, error) {
	raw := g.client.DownloadURL(bucketID, fileID)
	g.log.Info(ctx, "download needs bucket password, opening raw url", "bucket_id", bucketID, "url", raw)

	if g.navigator != nil {
		if err := g.navigator.Open(ctx, raw); err != nil {
			recordDownload(resultFailed)
			return models.DownloadResult{}, fmt.Errorf("%w: open %s: %w", ErrDownloadFailed, raw, err)
		}
	}
	recordDownload(resultFallback)
	return models.DownloadResult{FallbackURL: raw}, nil
}
