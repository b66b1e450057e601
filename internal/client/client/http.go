package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/dmitrijs2005/gophbucket/internal/client/models"
	"github.com/dmitrijs2005/gophbucket/internal/common"
	"github.com/dmitrijs2005/gophbucket/internal/logging"
	"github.com/dmitrijs2005/gophbucket/internal/netx"
)

const maxErrorBodyBytes int64 = 64 << 10

// HTTPClient implements Client over JSON/HTTP.
//
// API calls use a client bounded by the configured timeout; presigned PUTs
// and downloads use one without a deadline, since they move whole files.
type HTTPClient struct {
	baseURL  *url.URL
	api      *http.Client
	transfer *http.Client
	log      logging.Logger
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url must be http or https, got %q", baseURL)
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &HTTPClient{
		baseURL:  u,
		api:      &http.Client{Timeout: timeout},
		transfer: &http.Client{},
		log:      log,
	}, nil
}

func (c *HTTPClient) url(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.baseURL.JoinPath(escaped...).String()
}

type requestOption func(*http.Request)

func withBearer(token string) requestOption {
	return func(r *http.Request) {
		if token == "" {
			return
		}
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(r)
	}
}

func withBucketToken(token string) requestOption {
	return func(r *http.Request) {
		if token != "" {
			r.Header.Set(common.BucketTokenHeaderName, token)
		}
	}
}

func (c *HTTPClient) newRequest(ctx context.Context, method, rawURL string, in any, opts ...requestOption) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set(common.ContentTypeHeaderName, "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	for _, o := range opts {
		o(req)
	}
	return req, nil
}

func (c *HTTPClient) send(hc *http.Client, req *http.Request) (*http.Response, error) {
	c.log.Debug(req.Context(), "request", "method", req.Method, "url", req.URL.Redacted(),
		"request_id", req.Header.Get(common.RequestIDHeaderName))

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %w", req.Method, req.URL.Path, ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(readBodyLimited(resp.Body, maxErrorBodyBytes)),
		}
	}
	return resp, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, rawURL string, in, out any, opts ...requestOption) error {
	req, err := c.newRequest(ctx, method, rawURL, in, opts...)
	if err != nil {
		return err
	}
	resp, err := c.send(c.api, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func readBodyLimited(r io.Reader, maxBytes int64) []byte {
	data, _ := io.ReadAll(io.LimitReader(r, maxBytes))
	return data
}

func errorMessage(data []byte) string {
	if len(bytes.TrimSpace(data)) == 0 {
		return ""
	}
	var payload models.ErrorResponse
	if err := json.Unmarshal(data, &payload); err == nil {
		if msg := strings.TrimSpace(payload.Error); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
	}
	return strings.TrimSpace(string(data))
}

func (c *HTTPClient) OAuthURL(provider string) string {
	return c.url("auth", "oauth", provider)
}

func (c *HTTPClient) ExchangeOAuthCode(ctx context.Context, provider, code, state string) (*models.AuthResponse, error) {
	q := url.Values{}
	q.Set("code", code)
	q.Set("state", state)

	var out models.AuthResponse
	if err := c.doJSON(ctx, http.MethodGet, c.url("auth", "oauth", provider, "callback")+"?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Validate(ctx context.Context, accessToken string) (*models.Claims, error) {
	var out models.ValidateResponse
	if err := c.doJSON(ctx, http.MethodPost, c.url("auth", "validate"), nil, &out, withBearer(accessToken)); err != nil {
		return nil, err
	}
	return &out.Claims, nil
}

func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	var out models.TokenPair
	in := map[string]string{"refresh_token": refreshToken}
	if err := c.doJSON(ctx, http.MethodPost, c.url("auth", "refresh"), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Logout(ctx context.Context, refreshToken string) error {
	in := map[string]string{"refresh_token": refreshToken}
	return c.doJSON(ctx, http.MethodPost, c.url("auth", "logout"), in, nil)
}

func (c *HTTPClient) ProtectionStatus(ctx context.Context, bucketID string) (*models.ProtectionStatus, error) {
	var out models.ProtectionStatus
	if err := c.doJSON(ctx, http.MethodGet, c.url("files", "s", bucketID, "protected"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) AuthenticateBucket(ctx context.Context, bucketID, password, bearer string) (*models.BucketAuth, error) {
	var out models.BucketAuth
	in := map[string]string{"password": password}
	if err := c.doJSON(ctx, http.MethodPost, c.url("files", "s", bucketID, "authenticate"), in, &out, withBearer(bearer)); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListFiles(ctx context.Context, bucketID, bucketToken string) (*models.BucketMetadata, error) {
	var out models.BucketMetadata
	if err := c.doJSON(ctx, http.MethodGet, c.url("files", "s", bucketID), nil, &out, withBucketToken(bucketToken)); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListAdmins(ctx context.Context, bucketID, bucketToken string) (*models.BucketAdmins, error) {
	var out models.BucketAdmins
	if err := c.doJSON(ctx, http.MethodGet, c.url("files", "s", bucketID, "admins"), nil, &out, withBucketToken(bucketToken)); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Lifecycle(ctx context.Context, bucketID, bucketToken string) (*models.Lifecycle, error) {
	var out models.Lifecycle
	if err := c.doJSON(ctx, http.MethodGet, c.url("lifecycle", "s", bucketID), nil, &out, withBucketToken(bucketToken)); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DownloadURL(bucketID, fileID string) string {
	return c.url("files", "s", bucketID, "d", fileID)
}

func (c *HTTPClient) Download(ctx context.Context, bucketID, fileID, bucketToken string) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.DownloadURL(bucketID, fileID), nil, withBucketToken(bucketToken))
	if err != nil {
		return nil, err
	}
	req.Header.Del("Accept")
	resp, err := c.send(c.transfer, req)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *HTTPClient) PrepareUpload(ctx context.Context, in models.PrepareUploadRequest, bearer string) (*models.PrepareUploadResponse, error) {
	var out models.PrepareUploadResponse
	if err := c.doJSON(ctx, http.MethodPost, c.url("files", "upload", "prepare"), in, &out, withBearer(bearer)); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) PutObject(ctx context.Context, target, contentType string, size int64, body io.Reader) error {
	return netx.PutPresigned(ctx, c.transfer, target, contentType, size, body)
}

func (c *HTTPClient) ConfirmUpload(ctx context.Context, in models.ConfirmUploadRequest, bearer string) (*models.ConfirmUploadResponse, error) {
	var out models.ConfirmUploadResponse
	if err := c.doJSON(ctx, http.MethodPost, c.url("files", "upload", "confirm"), in, &out, withBearer(bearer)); err != nil {
		return nil, err
	}
	return &out, nil
}
