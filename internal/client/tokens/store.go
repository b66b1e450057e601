// Package tokens persists the client's credentials: the user token pair,
// per-bucket access tokens and the one-shot OAuth return URL. The store only
// reads and writes; it never validates tokens and never emits events.
package tokens

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/gophbucket/internal/client/models"
	"github.com/dmitrijs2005/gophbucket/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophbucket/internal/common"
)

type Store struct {
	repo metadata.Repository
}

func NewStore(repo metadata.Repository) *Store {
	return &Store{repo: repo}
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	v, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return string(v), nil
}

// AccessToken returns "" when no access token is stored.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, common.AccessTokenKey)
}

// RefreshToken returns "" when no refresh token is stored.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, common.RefreshTokenKey)
}

func (s *Store) Tokens(ctx context.Context) (models.TokenPair, error) {
	access, err := s.AccessToken(ctx)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := s.RefreshToken(ctx)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// SetTokens writes the non-empty tokens together in one SetMany. An empty
// token has its key removed afterwards in a separate DeleteMany, so a
// failure between the two steps can leave the new token next to the old
// value of the other key.
func (s *Store) SetTokens(ctx context.Context, pair models.TokenPair) error {
	values := make(map[string][]byte, 2)
	var drop []string

	for key, v := range map[string]string{
		common.AccessTokenKey:  pair.AccessToken,
		common.RefreshTokenKey: pair.RefreshToken,
	} {
		if v == "" {
			drop = append(drop, key)
			continue
		}
		values[key] = []byte(v)
	}

	if len(values) > 0 {
		if err := s.repo.SetMany(ctx, values); err != nil {
			return fmt.Errorf("store tokens: %w", err)
		}
	}
	if len(drop) > 0 {
		if err := s.repo.DeleteMany(ctx, drop...); err != nil {
			return fmt.Errorf("store tokens: %w", err)
		}
	}
	return nil
}

// ClearTokens removes both tokens together.
func (s *Store) ClearTokens(ctx context.Context) error {
	if err := s.repo.DeleteMany(ctx, common.AccessTokenKey, common.RefreshTokenKey); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}

func bucketKey(bucketID string) (string, error) {
	bucketID = strings.TrimSpace(bucketID)
	if bucketID == "" {
		return "", common.ErrEmptyID
	}
	return common.BucketTokenKeyPrefix + bucketID, nil
}

// BucketToken returns "" when the bucket has not been unlocked.
func (s *Store) BucketToken(ctx context.Context, bucketID string) (string, error) {
	key, err := bucketKey(bucketID)
	if err != nil {
		return "", err
	}
	return s.get(ctx, key)
}

func (s *Store) SetBucketToken(ctx context.Context, bucketID, token string) error {
	key, err := bucketKey(bucketID)
	if err != nil {
		return err
	}
	if token == "" {
		return s.ClearBucketToken(ctx, bucketID)
	}
	if err := s.repo.Set(ctx, key, []byte(token)); err != nil {
		return fmt.Errorf("store bucket token: %w", err)
	}
	return nil
}

func (s *Store) ClearBucketToken(ctx context.Context, bucketID string) error {
	key, err := bucketKey(bucketID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, key); err != nil {
		return fmt.Errorf("clear bucket token: %w", err)
	}
	return nil
}

func (s *Store) SetReturnURL(ctx context.Context, url string) error {
	if url == "" {
		return s.repo.Delete(ctx, common.ReturnURLKey)
	}
	if err := s.repo.Set(ctx, common.ReturnURLKey, []byte(url)); err != nil {
		return fmt.Errorf("store return url: %w", err)
	}
	return nil
}

// TakeReturnURL reads and deletes the saved return URL, falling back to
// common.DefaultReturnURL.
func (s *Store) TakeReturnURL(ctx context.Context) (string, error) {
	url, err := s.get(ctx, common.ReturnURLKey)
	if err != nil {
		return "", err
	}
	if err := s.repo.Delete(ctx, common.ReturnURLKey); err != nil {
		return "", fmt.Errorf("clear return url: %w", err)
	}
	if url == "" {
		return common.DefaultReturnURL, nil
	}
	return url, nil
}

// UnlockedBuckets lists the ids of buckets that have a stored token, sorted.
func (s *Store) UnlockedBuckets(ctx context.Context) ([]string, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bucket tokens: %w", err)
	}
	ids := make([]string, 0)
	for key, v := range all {
		id, ok := strings.CutPrefix(key, common.BucketTokenKeyPrefix)
		if ok && id != "" && len(v) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Reset removes every stored credential: the user pair, all bucket tokens
// and the return URL.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	return nil
}
