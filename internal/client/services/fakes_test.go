package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/dmitrijs2005/gophbucket/internal/client/client"
	"github.com/dmitrijs2005/gophbucket/internal/client/models"
	"github.com/dmitrijs2005/gophbucket/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophbucket/internal/client/tokens"
)

// fakeClient implements client.Client. Only the auth endpoints are
// programmable; the rest are exercised against backendtest.
type fakeClient struct {
	mu sync.Mutex

	validClaims map[string]models.Claims
	validateErr error
	refreshed   map[string]models.TokenPair
	refreshErr  error
	logoutErr   error
	exchange    *models.AuthResponse
	exchangeErr error

	validateCalls int
	refreshCalls  int
	logoutCalls   int

	lastValidate   string
	lastRefresh    string
	lastLogout     string
	lastCode       string
	lastProvider   string
	lastAuthBearer string
}

var _ client.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{
		validClaims: map[string]models.Claims{},
		refreshed:   map[string]models.TokenPair{},
	}
}

func (f *fakeClient) OAuthURL(provider string) string {
	return "https://api.test/auth/oauth/" + provider
}

func (f *fakeClient) ExchangeOAuthCode(_ context.Context, provider, code, _ string) (*models.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastProvider, f.lastCode = provider, code
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.exchange, nil
}

func (f *fakeClient) Validate(_ context.Context, accessToken string) (*models.Claims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validateCalls++
	f.lastValidate = accessToken
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	c, ok := f.validClaims[accessToken]
	if !ok {
		return nil, &client.APIError{StatusCode: 401, Message: "invalid token"}
	}
	return &c, nil
}

func (f *fakeClient) Refresh(_ context.Context, refreshToken string) (*models.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	f.lastRefresh = refreshToken
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	p, ok := f.refreshed[refreshToken]
	if !ok {
		return nil, &client.APIError{StatusCode: 401, Message: "invalid refresh token"}
	}
	return &p, nil
}

func (f *fakeClient) Logout(_ context.Context, refreshToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	f.lastLogout = refreshToken
	return f.logoutErr
}

func (f *fakeClient) ProtectionStatus(context.Context, string) (*models.ProtectionStatus, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeClient) AuthenticateBucket(_ context.Context, bucketID, _, bearer string) (*models.BucketAuth, error) {
	f.mu.Lock()
	f.lastAuthBearer = bearer
	f.mu.Unlock()
	return &models.BucketAuth{AccessToken: "bt-" + bucketID, ExpiresIn: 60}, nil
}

func (f *fakeClient) ListFiles(context.Context, string, string) (*models.BucketMetadata, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeClient) ListAdmins(context.Context, string, string) (*models.BucketAdmins, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeClient) Lifecycle(context.Context, string, string) (*models.Lifecycle, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeClient) DownloadURL(bucketID, fileID string) string {
	return "https://api.test/files/s/" + bucketID + "/d/" + fileID
}

func (f *fakeClient) Download(context.Context, string, string, string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(nil)), nil
}

func (f *fakeClient) PrepareUpload(context.Context, models.PrepareUploadRequest, string) (*models.PrepareUploadResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeClient) PutObject(context.Context, string, string, int64, io.Reader) error {
	return errors.New("not implemented")
}

func (f *fakeClient) ConfirmUpload(context.Context, models.ConfirmUploadRequest, string) (*models.ConfirmUploadResponse, error) {
	return nil, errors.New("not implemented")
}

// fakeNavigator records opened URLs.
type fakeNavigator struct {
	mu     sync.Mutex
	opened []string
	err    error
}

func (n *fakeNavigator) Open(_ context.Context, url string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.opened = append(n.opened, url)
	return n.err
}

func (n *fakeNavigator) Opened() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.opened...)
}

// memSaver keeps saved files in memory.
type memSaver struct {
	files map[string][]byte
	err   error
}

func (s *memSaver) Save(name string, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if s.files == nil {
		s.files = map[string][]byte{}
	}
	s.files[name] = data
	return "/downloads/" + name, nil
}

func newStore() *tokens.Store {
	return tokens.NewStore(metadata.NewMemoryRepository())
}
