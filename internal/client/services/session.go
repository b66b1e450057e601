// Package services holds the client's session and transfer logic:
// SessionManager (user identity tokens), BucketAuthGate (per-bucket
// passwords), UploadOrchestrator (prepare, PUT, confirm) and RetrievalGate
// (listings, admin checks, downloads).
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"github.com/dmitrijs2005/gophbucket/internal/client/client"
	"github.com/dmitrijs2005/gophbucket/internal/client/models"
	"github.com/dmitrijs2005/gophbucket/internal/common"
	"github.com/dmitrijs2005/gophbucket/internal/logging"
)

type EventKind string

const (
	EventSignedIn  EventKind = "signed_in"
	EventRefreshed EventKind = "refreshed"
	EventSignedOut EventKind = "signed_out"
	EventExpired   EventKind = "expired"
	// EventExternal means the store was changed by another process.
	EventExternal EventKind = "external"
)

// Event is delivered after the token pair has been written, so
// Authenticated reflects the stored state at that moment.
type Event struct {
	Kind          EventKind
	Authenticated bool
}

type Listener func(Event)

// SessionManager owns the user token lifecycle.
//
// EnsureValidToken is the only place tokens are renewed: one validate and at
// most one refresh per call. Concurrent callers are not serialised; the last
// store write wins. A client.ErrUnavailable from validate or refresh is
// returned wrapped and leaves the stored pair in place: no refresh follows a
// failed validate and no hard logout follows a failed refresh.
type SessionManager interface {
	IsAuthenticated(ctx context.Context) bool
	CurrentUserID(ctx context.Context) (string, bool)
	EnsureValidToken(ctx context.Context) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	SignOut(ctx context.Context) error

	BeginSignIn(ctx context.Context, provider, returnTo string) (string, error)
	CompleteSignIn(ctx context.Context, provider, code, state string) (string, error)
	Info(ctx context.Context) models.SessionInfo

	Subscribe(fn Listener) string
	Unsubscribe(id string)
	HandleExternalChange(ctx context.Context)
}

type sessionManager struct {
	client    client.Client
	store     TokenStore
	navigator Navigator
	signInURL string
	log       logging.Logger

	mu        sync.RWMutex
	listeners map[string]Listener
}

// NewSessionManager builds a SessionManager. signInURL is opened through nav
// after a hard logout; either may be empty/nil to skip the redirect.
func NewSessionManager(c client.Client, store TokenStore, nav Navigator, signInURL string, log logging.Logger) SessionManager {
	if log == nil {
		log = logging.NewNop()
	}
	return &sessionManager{
		client:    c,
		store:     store,
		navigator: nav,
		signInURL: signInURL,
		log:       log.With("component", "session"),
		listeners: make(map[string]Listener),
	}
}

func (s *sessionManager) IsAuthenticated(ctx context.Context) bool {
	tok, err := s.store.AccessToken(ctx)
	if err != nil {
		s.log.Warn(ctx, "read access token", "error", err)
		return false
	}
	return tok != ""
}

// CurrentUserID validates the stored access token without refreshing it.
func (s *sessionManager) CurrentUserID(ctx context.Context) (string, bool) {
	tok, err := s.store.AccessToken(ctx)
	if err != nil || tok == "" {
		return "", false
	}
	claims, err := s.client.Validate(ctx, tok)
	if err != nil {
		s.log.Debug(ctx, "access token did not validate", "error", err)
		return "", false
	}
	if claims.UserID == "" {
		return "", false
	}
	return claims.UserID, true
}

func (s *sessionManager) EnsureValidToken(ctx context.Context) (string, error) {
	pair, err := s.store.Tokens(ctx)
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return "", ErrNoSession
	}

	_, err = s.client.Validate(ctx, pair.AccessToken)
	if err == nil {
		return pair.AccessToken, nil
	}
	if errors.Is(err, client.ErrUnavailable) {
		return "", fmt.Errorf("validate session: %w", err)
	}

	s.log.Debug(ctx, "access token rejected, refreshing", "error", err)
	fresh, err := s.client.Refresh(ctx, pair.RefreshToken)
	if err != nil && errors.Is(err, client.ErrUnavailable) {
		recordRefresh(resultUnavailable)
		return "", fmt.Errorf("refresh session: %w", err)
	}
	if err != nil || fresh == nil || fresh.AccessToken == "" {
		recordRefresh(resultFailed)
		s.hardLogout(ctx, err)
		return "", ErrSessionExpired
	}

	next := *fresh
	if next.RefreshToken == "" {
		next.RefreshToken = pair.RefreshToken
	}
	if err := s.store.SetTokens(ctx, next); err != nil {
		recordRefresh(resultFailed)
		return "", fmt.Errorf("store refreshed tokens: %w", err)
	}
	recordRefresh(resultOK)
	s.emit(ctx, EventRefreshed)
	return next.AccessToken, nil
}

func (s *sessionManager) hardLogout(ctx context.Context, cause error) {
	s.log.Warn(ctx, "session could not be renewed, signing out", "error", cause)

	if err := s.store.ClearTokens(ctx); err != nil {
		s.log.Error(ctx, "clear tokens after failed refresh", "error", err)
	}
	s.emit(ctx, EventExpired)

	if s.navigator == nil || s.signInURL == "" {
		return
	}
	if err := s.navigator.Open(ctx, s.signInURL); err != nil {
		s.log.Warn(ctx, "open sign-in page", "url", s.signInURL, "error", err)
	}
}

// Logout asks the backend to revoke refreshToken, ignoring any failure, and
// then always clears the local pair. The returned error is only ever a local
// store failure.
func (s *sessionManager) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken != "" {
		if err := s.client.Logout(ctx, refreshToken); err != nil {
			s.log.Warn(ctx, "remote logout failed", "error", err)
		}
	}

	err := s.store.ClearTokens(ctx)
	s.emit(ctx, EventSignedOut)
	if err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}

// SignOut logs out with the stored refresh token.
func (s *sessionManager) SignOut(ctx context.Context) error {
	refresh, err := s.store.RefreshToken(ctx)
	if err != nil {
		s.log.Warn(ctx, "read refresh token", "error", err)
		refresh = ""
	}
	return s.Logout(ctx, refresh)
}

// BeginSignIn remembers returnTo and returns the provider's redirect URL.
func (s *sessionManager) BeginSignIn(ctx context.Context, provider, returnTo string) (string, error) {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		provider = common.DefaultOAuthProvider
	}
	if returnTo != "" {
		if err := s.store.SetReturnURL(ctx, returnTo); err != nil {
			return "", err
		}
	}
	return s.client.OAuthURL(provider), nil
}

// CompleteSignIn exchanges the callback code, stores the new pair and returns
// the saved return URL (consuming it).
func (s *sessionManager) CompleteSignIn(ctx context.Context, provider, code, state string) (string, error) {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		provider = common.DefaultOAuthProvider
	}
	resp, err := s.client.ExchangeOAuthCode(ctx, provider, code, state)
	if err != nil {
		return "", fmt.Errorf("oauth exchange: %w", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		return "", fmt.Errorf("oauth exchange: %w", common.ErrInvalidToken)
	}

	if err := s.store.SetTokens(ctx, resp.Pair()); err != nil {
		return "", fmt.Errorf("store tokens: %w", err)
	}
	s.emit(ctx, EventSignedIn)
	s.log.Info(ctx, "signed in", "user_id", resp.User.ID, "provider", provider)

	returnURL, err := s.store.TakeReturnURL(ctx)
	if err != nil {
		s.log.Warn(ctx, "read return url", "error", err)
		return common.DefaultReturnURL, nil
	}
	return returnURL, nil
}

// Info reports presence of a session and, when the access token is a JWT, its
// expiry. The expiry is read without verifying the signature and is for
// display only.
func (s *sessionManager) Info(ctx context.Context) models.SessionInfo {
	tok, err := s.store.AccessToken(ctx)
	if err != nil || tok == "" {
		return models.SessionInfo{}
	}
	info := models.SessionInfo{Authenticated: true}

	parsed, _, err := jwt.NewParser().ParseUnverified(tok, jwt.MapClaims{})
	if err != nil {
		return info
	}
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info
}

func (s *sessionManager) Subscribe(fn Listener) string {
	if fn == nil {
		return ""
	}
	id := ulid.Make().String()
	s.mu.Lock()
	s.listeners[id] = fn
	s.mu.Unlock()
	return id
}

func (s *sessionManager) Unsubscribe(id string) {
	if strings.TrimSpace(id) == "" {
		return
	}
	s.mu.Lock()
	delete(s.listeners, id)
	s.mu.Unlock()
}

// HandleExternalChange re-derives the session from the store and notifies
// subscribers. In-flight operations are not interrupted.
func (s *sessionManager) HandleExternalChange(ctx context.Context) {
	s.emit(ctx, EventExternal)
}

func (s *sessionManager) emit(ctx context.Context, kind EventKind) {
	ev := Event{Kind: kind, Authenticated: s.IsAuthenticated(ctx)}

	s.mu.RLock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
