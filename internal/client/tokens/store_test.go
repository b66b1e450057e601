package tokens

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophbucket/internal/client/models"
	"github.com/dmitrijs2005/gophbucket/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophbucket/internal/common"
)

type failingRepo struct {
	*metadata.MemoryRepository
	err error
}

func (f *failingRepo) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f *failingRepo) SetMany(context.Context, map[string][]byte) error {
	return f.err
}
func (f *failingRepo) DeleteMany(context.Context, ...string) error     { return f.err }
func (f *failingRepo) List(context.Context) (map[string][]byte, error) { return nil, f.err }
func (f *failingRepo) Clear(context.Context) error                     { return f.err }

func TestSetTokens_RoundTrip(t *testing.T) {
	s := NewStore(metadata.NewMemoryRepository())
	ctx := context.Background()

	require.NoError(t, s.SetTokens(ctx, models.TokenPair{AccessToken: "a", RefreshToken: "r"}))

	access, err := s.AccessToken(ctx)
	require.NoError(t, err)
	refresh, err := s.RefreshToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", access)
	assert.Equal(t, "r", refresh)

	pair, err := s.Tokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.TokenPair{AccessToken: "a", RefreshToken: "r"}, pair)
}

func TestTokens_EmptyStore(t *testing.T) {
	s := NewStore(metadata.NewMemoryRepository())

	pair, err := s.Tokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.TokenPair{}, pair)
}

func TestSetTokens_EmptyTokenRemovesKey(t *testing.T) {
	repo := metadata.NewMemoryRepository()
	s := NewStore(repo)
	ctx := context.Background()

	require.NoError(t, s.SetTokens(ctx, models.TokenPair{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, s.SetTokens(ctx, models.TokenPair{AccessToken: "a2"}))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{common.AccessTokenKey: []byte("a2")}, all)
}

func TestClearTokens_RemovesBothAndKeepsBucketTokens(t *testing.T) {
	s := NewStore(metadata.NewMemoryRepository())
	ctx := context.Background()

	require.NoError(t, s.SetTokens(ctx, models.TokenPair{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, s.SetBucketToken(ctx, "b1", "bt"))
	require.NoError(t, s.ClearTokens(ctx))

	pair, err := s.Tokens(ctx)
	require.NoError(t, err)
	assert.Empty(t, pair.AccessToken)
	assert.Empty(t, pair.RefreshToken)

	bt, err := s.BucketToken(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "bt", bt)
}

func TestBucketToken_Namespaced(t *testing.T) {
	repo := metadata.NewMemoryRepository()
	s := NewStore(repo)
	ctx := context.Background()

	require.NoError(t, s.SetBucketToken(ctx, "abc", "tok"))

	raw, err := repo.Get(ctx, "bucket_access_abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("tok"), raw)

	other, err := s.BucketToken(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, s.ClearBucketToken(ctx, "abc"))
	got, err := s.BucketToken(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBucketToken_EmptyID(t *testing.T) {
	s := NewStore(metadata.NewMemoryRepository())
	ctx := context.Background()

	_, err := s.BucketToken(ctx, "  ")
	require.ErrorIs(t, err, common.ErrEmptyID)
	require.ErrorIs(t, s.SetBucketToken(ctx, "", "x"), common.ErrEmptyID)
}

func TestTakeReturnURL_OneShot(t *testing.T) {
	s := NewStore(metadata.NewMemoryRepository())
	ctx := context.Background()

	require.NoError(t, s.SetReturnURL(ctx, "/files/s/abc"))

	u, err := s.TakeReturnURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/files/s/abc", u)

	u, err = s.TakeReturnURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, common.DefaultReturnURL, u)
}

func TestStore_PropagatesRepositoryErrors(t *testing.T) {
	boom := errors.New("disk full")
	s := NewStore(&failingRepo{MemoryRepository: metadata.NewMemoryRepository(), err: boom})
	ctx := context.Background()

	_, err := s.AccessToken(ctx)
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, s.SetTokens(ctx, models.TokenPair{AccessToken: "a", RefreshToken: "r"}), boom)
	require.ErrorIs(t, s.ClearTokens(ctx), boom)
}

func TestUnlockedBuckets(t *testing.T) {
	s := NewStore(metadata.NewMemoryRepository())
	ctx := context.Background()

	ids, err := s.UnlockedBuckets(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, s.SetTokens(ctx, models.TokenPair{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, s.SetBucketToken(ctx, "zeta", "t1"))
	require.NoError(t, s.SetBucketToken(ctx, "alpha", "t2"))
	require.NoError(t, s.SetReturnURL(ctx, "/files/s/x"))

	ids, err = s.UnlockedBuckets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, ids)
}

func TestReset_RemovesEverything(t *testing.T) {
	repo := metadata.NewMemoryRepository()
	s := NewStore(repo)
	ctx := context.Background()

	require.NoError(t, s.SetTokens(ctx, models.TokenPair{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, s.SetBucketToken(ctx, "b1", "t1"))
	require.NoError(t, s.SetReturnURL(ctx, "/x"))

	require.NoError(t, s.Reset(ctx))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestResetAndList_PropagateErrors(t *testing.T) {
	boom := errors.New("boom")
	s := NewStore(&failingRepo{MemoryRepository: metadata.NewMemoryRepository(), err: boom})
	ctx := context.Background()

	_, err := s.UnlockedBuckets(ctx)
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, s.Reset(ctx), boom)
}
