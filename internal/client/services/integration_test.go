package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophbucket/internal/client/backendtest"
	"github.com/dmitrijs2005/gophbucket/internal/client/client"
	"github.com/dmitrijs2005/gophbucket/internal/client/models"
)

// stack wires the real HTTP client against the fake backend.
type stack struct {
	srv      *backendtest.Server
	api      *client.HTTPClient
	store    TokenStore
	nav      *fakeNavigator
	saver    *memSaver
	sessions SessionManager
	gate     BucketAuthGate
	uploads  UploadOrchestrator
	reads    RetrievalGate
}

func newStack(t *testing.T) *stack {
	t.Helper()
	srv := backendtest.New()
	t.Cleanup(srv.Close)

	api, err := client.NewHTTPClient(srv.URL, 5*time.Second, nil)
	require.NoError(t, err)

	s := &stack{srv: srv, api: api, store: newStore(), nav: &fakeNavigator{}, saver: &memSaver{}}
	s.sessions = NewSessionManager(api, s.store, s.nav, signInURL, nil)
	s.gate = NewBucketAuthGate(api, s.store, s.sessions, nil)
	s.uploads = NewUploadOrchestrator(api, s.store, s.sessions, nil)
	s.reads = NewRetrievalGate(api, s.store, s.sessions, s.nav, s.saver, nil)
	return s
}

// signIn stores a pair the fake backend accepts for userID.
func (s *stack) signIn(t *testing.T, userID string) {
	t.Helper()
	access, refresh := "a-"+userID, "r-"+userID
	s.srv.Sessions[access] = models.Claims{UserID: userID, Email: userID + "@example.com", Provider: "github"}
	require.NoError(t, s.store.SetTokens(context.Background(), models.TokenPair{AccessToken: access, RefreshToken: refresh}))
}
