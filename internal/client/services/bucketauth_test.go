package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophbucket/internal/client/backendtest"
	"github.com/dmitrijs2005/gophbucket/internal/client/client"
	"github.com/dmitrijs2005/gophbucket/internal/client/models"
	"github.com/dmitrijs2005/gophbucket/internal/common"
)

func TestIsProtected(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.srv.AddBucket(&backendtest.Bucket{ID: "open"})
	s.srv.AddBucket(&backendtest.Bucket{ID: "locked", Password: "pw"})

	p, err := s.gate.IsProtected(ctx, "open")
	require.NoError(t, err)
	assert.False(t, p)

	p, err = s.gate.IsProtected(ctx, "locked")
	require.NoError(t, err)
	assert.True(t, p)

	_, err = s.gate.IsProtected(ctx, "ghost")
	require.ErrorIs(t, err, client.ErrNotFound)

	_, err = s.gate.IsProtected(ctx, " ")
	require.ErrorIs(t, err, common.ErrEmptyID)
}

func TestAuthenticate_StoresTokenAnonymously(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.srv.AddBucket(&backendtest.Bucket{ID: "b1", Password: "pw"})

	tok, err := s.gate.Authenticate(ctx, "b1", "pw")
	require.NoError(t, err)
	assert.Equal(t, "bt-b1", tok)
	assert.Empty(t, s.srv.LastHeader(backendtest.RouteAuthenticate, common.AuthorizationHeaderName))

	stored, err := s.gate.Token(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "bt-b1", stored)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.srv.AddBucket(&backendtest.Bucket{ID: "b1", Password: "pw"})

	_, err := s.gate.Authenticate(ctx, "b1", "nope")
	require.ErrorIs(t, err, ErrInvalidPassword)
	assert.Equal(t, 1, s.srv.Calls(backendtest.RouteAuthenticate), "password is never retried")

	stored, err := s.gate.Token(ctx, "b1")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestAuthenticate_AttachesValidUserToken(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.srv.AddBucket(&backendtest.Bucket{ID: "b1", Password: "pw"})
	s.signIn(t, "u1")

	_, err := s.gate.Authenticate(ctx, "b1", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Bearer a-u1", s.srv.LastHeader(backendtest.RouteAuthenticate, common.AuthorizationHeaderName))
}

func TestAuthenticate_UnresolvableUserTokenDoesNotBlock(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.srv.AddBucket(&backendtest.Bucket{ID: "b1", Password: "pw"})
	// Neither token is known to the backend, so refresh fails.
	require.NoError(t, s.store.SetTokens(ctx, models.TokenPair{AccessToken: "stale", RefreshToken: "stale"}))

	tok, err := s.gate.Authenticate(ctx, "b1", "pw")
	require.NoError(t, err)
	assert.Equal(t, "bt-b1", tok)
	assert.Empty(t, s.srv.LastHeader(backendtest.RouteAuthenticate, common.AuthorizationHeaderName))
}

func TestBucketTokenLocalOps(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	require.NoError(t, s.gate.SetToken(ctx, "b1", "manual"))
	tok, err := s.gate.Token(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "manual", tok)

	require.NoError(t, s.gate.Forget(ctx, "b1"))
	tok, err = s.gate.Token(ctx, "b1")
	require.NoError(t, err)
	assert.Empty(t, tok)
	assert.Zero(t, s.srv.Calls(backendtest.RouteAuthenticate))
}

func TestAuthenticate_BearerFromFakeClient(t *testing.T) {
	fc := newFakeClient()
	store := newStore()
	fc.validClaims["a1"] = models.Claims{UserID: "u1"}
	require.NoError(t, store.SetTokens(context.Background(), models.TokenPair{AccessToken: "a1", RefreshToken: "r1"}))

	gate := NewBucketAuthGate(fc, store, NewSessionManager(fc, store, nil, "", nil), nil)
	_, err := gate.Authenticate(context.Background(), "b9", "pw")
	require.NoError(t, err)
	assert.Equal(t, "a1", fc.lastAuthBearer)
}
