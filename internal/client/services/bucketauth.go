package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophbucket/internal/client/client"
	"github.com/dmitrijs2005/gophbucket/internal/common"
	"github.com/dmitrijs2005/gophbucket/internal/logging"
)

// BucketAuthGate manages per-bucket password tokens. They are independent of
// the user session and survive logout.
type BucketAuthGate interface {
	// IsProtected fails with client.ErrNotFound for unknown buckets.
	IsProtected(ctx context.Context, bucketID string) (bool, error)
	// Authenticate exchanges password for a bucket token and stores it.
	Authenticate(ctx context.Context, bucketID, password string) (string, error)
	Token(ctx context.Context, bucketID string) (string, error)
	SetToken(ctx context.Context, bucketID, token string) error
	Forget(ctx context.Context, bucketID string) error
}

type bucketAuthGate struct {
	client   client.Client
	store    TokenStore
	identity identity
	log      logging.Logger
}

func NewBucketAuthGate(c client.Client, store TokenStore, sessions SessionManager, log logging.Logger) BucketAuthGate {
	if log == nil {
		log = logging.NewNop()
	}
	log = log.With("component", "bucket_auth")
	return &bucketAuthGate{
		client:   c,
		store:    store,
		identity: identity{sessions: sessions, store: store, log: log},
		log:      log,
	}
}

func (g *bucketAuthGate) IsProtected(ctx context.Context, bucketID string) (bool, error) {
	if strings.TrimSpace(bucketID) == "" {
		return false, common.ErrEmptyID
	}
	st, err := g.client.ProtectionStatus(ctx, bucketID)
	if err != nil {
		return false, fmt.Errorf("protection status of %s: %w", bucketID, err)
	}
	return st.Protected, nil
}

func (g *bucketAuthGate) Authenticate(ctx context.Context, bucketID, password string) (string, error) {
	if strings.TrimSpace(bucketID) == "" {
		return "", common.ErrEmptyID
	}

	bearer, _ := g.identity.bearer(ctx, false)

	auth, err := g.client.AuthenticateBucket(ctx, bucketID, password, bearer)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return "", fmt.Errorf("%w: %w", ErrInvalidPassword, err)
		}
		return "", fmt.Errorf("authenticate bucket %s: %w", bucketID, err)
	}
	if auth.AccessToken == "" {
		return "", fmt.Errorf("authenticate bucket %s: %w", bucketID, common.ErrInvalidToken)
	}

	if err := g.store.SetBucketToken(ctx, bucketID, auth.AccessToken); err != nil {
		return "", err
	}
	g.log.Debug(ctx, "bucket unlocked", "bucket_id", bucketID, "expires_in", auth.ExpiresIn)
	return auth.AccessToken, nil
}

func (g *bucketAuthGate) Token(ctx context.Context, bucketID string) (string, error) {
	return g.store.BucketToken(ctx, bucketID)
}

func (g *bucketAuthGate) SetToken(ctx context.Context, bucketID, token string) error {
	return g.store.SetBucketToken(ctx, bucketID, token)
}

func (g *bucketAuthGate) Forget(ctx context.Context, bucketID string) error {
	return g.store.ClearBucketToken(ctx, bucketID)
}
