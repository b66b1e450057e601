// Package backendtest runs an in-process fake of the bucket service for
// tests. Every endpoint the client talks to is implemented against
// programmable in-memory state, and each call is counted by route name.
package backendtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/gophbucket/internal/client/models"
	"github.com/dmitrijs2005/gophbucket/internal/common"
)

// Route names accepted by Calls and LastHeader.
const (
	RouteCallback     = "callback"
	RouteValidate     = "validate"
	RouteRefresh      = "refresh"
	RouteLogout       = "logout"
	RouteProtected    = "protected"
	RouteAuthenticate = "authenticate"
	RouteFiles        = "files"
	RouteAdmins       = "admins"
	RouteLifecycle    = "lifecycle"
	RouteDownload     = "download"
	RoutePrepare      = "prepare"
	RoutePut          = "put"
	RouteConfirm      = "confirm"
)

// Bucket is the fake's view of one bucket. An empty Password means the
// bucket is public.
type Bucket struct {
	ID        string
	Password  string
	Token     string
	Files     []models.FileInfo
	Content   map[string][]byte
	Admins    models.BucketAdmins
	ExpiresAt time.Time
}

type Server struct {
	*httptest.Server

	mu sync.Mutex

	// OAuthCode is the only code the callback accepts; OAuthResponse is
	// what it returns.
	OAuthCode     string
	OAuthResponse models.AuthResponse

	// Sessions maps a valid access token to its claims.
	Sessions map[string]models.Claims
	// Refreshes maps a refresh token to the pair issued for it.
	Refreshes map[string]models.TokenPair

	LogoutStatus int
	Buckets      map[string]*Bucket

	// Prepare and Confirm, when set, replace the default handlers.
	Prepare func(models.PrepareUploadRequest) (int, any)
	Confirm func(models.ConfirmUploadRequest) (int, any)
	// FailPut lists slot ids whose PUT answers 500.
	FailPut map[string]bool

	Objects      map[string][]byte
	ObjectTypes  map[string]string
	LastPrepare  *models.PrepareUploadRequest
	LastConfirm  *models.ConfirmUploadRequest
	LastPassword string

	calls   map[string]int
	headers map[string]http.Header
	seq     int
}

// New starts the fake. It is closed through t.Cleanup by the caller.
func New() *Server {
	s := &Server{
		Sessions:     map[string]models.Claims{},
		Refreshes:    map[string]models.TokenPair{},
		LogoutStatus: http.StatusOK,
		Buckets:      map[string]*Bucket{},
		FailPut:      map[string]bool{},
		Objects:      map[string][]byte{},
		ObjectTypes:  map[string]string{},
		calls:        map[string]int{},
		headers:      map[string]http.Header{},
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/auth", func(r chi.Router) {
		r.Get("/oauth/{provider}/callback", s.handleCallback)
		r.Post("/validate", s.handleValidate)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/logout", s.handleLogout)
	})

	r.Route("/files", func(r chi.Router) {
		r.Post("/upload/prepare", s.handlePrepare)
		r.Post("/upload/confirm", s.handleConfirm)

		r.Get("/s/{bucket}", s.guarded(RouteFiles, func(w http.ResponseWriter, b *Bucket) {
			var total int64
			for _, f := range b.Files {
				total += f.Size
			}
			respondJSON(w, http.StatusOK, models.BucketMetadata{StorageID: b.ID, Files: b.Files, TotalSize: total})
		}))
		r.Get("/s/{bucket}/protected", s.handleProtected)
		r.Post("/s/{bucket}/authenticate", s.handleAuthenticate)
		r.Get("/s/{bucket}/admins", s.guarded(RouteAdmins, func(w http.ResponseWriter, b *Bucket) {
			out := b.Admins
			out.BucketID = b.ID
			respondJSON(w, http.StatusOK, out)
		}))
		r.Get("/s/{bucket}/d/{file}", s.handleDownload)
	})

	r.Get("/lifecycle/s/{bucket}", s.guarded(RouteLifecycle, func(w http.ResponseWriter, b *Bucket) {
		respondJSON(w, http.StatusOK, map[string]string{
			"bucket_id":  b.ID,
			"expires_at": b.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}))

	r.Put("/put/{slot}", s.handlePut)

	return r
}

// Calls returns how many times route was hit.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// LastHeader returns header as sent on the latest call to route.
func (s *Server) LastHeader(route, header string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.headers[route]
	if !ok {
		return ""
	}
	return h.Get(header)
}

// Object returns the bytes PUT into slot.
func (s *Server) Object(slot string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Objects[slot]
}

// AddBucket registers b and returns it for further tweaking.
func (s *Server) AddBucket(b *Bucket) *Bucket {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.Password != "" && b.Token == "" {
		b.Token = "bt-" + b.ID
	}
	s.Buckets[b.ID] = b
	return b
}

func (s *Server) record(route string, r *http.Request) {
	s.mu.Lock()
	s.calls[route]++
	s.headers[route] = r.Header.Clone()
	s.mu.Unlock()
}

func (s *Server) bucket(r *http.Request) *Bucket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Buckets[chi.URLParam(r, "bucket")]
}

func (s *Server) guarded(route string, fn func(http.ResponseWriter, *Bucket)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.record(route, r)
		b := s.bucket(r)
		if b == nil {
			respondError(w, http.StatusNotFound, "Bucket not found")
			return
		}
		if b.Password != "" && r.Header.Get(common.BucketTokenHeaderName) != b.Token {
			respondError(w, http.StatusUnauthorized, "Bucket is password protected")
			return
		}
		fn(w, b)
	}
}

func bearer(r *http.Request) string {
	h := r.Header.Get(common.AuthorizationHeaderName)
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	s.record(RouteCallback, r)
	s.mu.Lock()
	code, resp := s.OAuthCode, s.OAuthResponse
	s.mu.Unlock()

	if code == "" || r.URL.Query().Get("code") != code {
		respondError(w, http.StatusBadRequest, "invalid authorization code")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	s.record(RouteValidate, r)
	s.mu.Lock()
	claims, ok := s.Sessions[bearer(r)]
	s.mu.Unlock()

	if !ok {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	respondJSON(w, http.StatusOK, models.ValidateResponse{Claims: claims})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.record(RouteRefresh, r)
	var in struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	pair, ok := s.Refreshes[in.RefreshToken]
	s.mu.Unlock()
	if !ok {
		respondError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	respondJSON(w, http.StatusOK, pair)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.record(RouteLogout, r)
	s.mu.Lock()
	status := s.LogoutStatus
	s.mu.Unlock()
	if status != http.StatusOK {
		respondError(w, status, "logout failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (s *Server) handleProtected(w http.ResponseWriter, r *http.Request) {
	s.record(RouteProtected, r)
	b := s.bucket(r)
	if b == nil {
		respondError(w, http.StatusNotFound, "Bucket not found")
		return
	}
	respondJSON(w, http.StatusOK, models.ProtectionStatus{Protected: b.Password != "", BucketID: b.ID})
}

func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	s.record(RouteAuthenticate, r)
	b := s.bucket(r)
	if b == nil {
		respondError(w, http.StatusNotFound, "Bucket not found")
		return
	}
	var in struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	s.LastPassword = in.Password
	s.mu.Unlock()

	if b.Password == "" || in.Password != b.Password {
		respondError(w, http.StatusUnauthorized, "Invalid password")
		return
	}
	respondJSON(w, http.StatusOK, models.BucketAuth{AccessToken: b.Token, ExpiresIn: 3600})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.guarded(RouteDownload, func(w http.ResponseWriter, b *Bucket) {
		data, ok := b.Content[chi.URLParam(r, "file")]
		if !ok {
			respondError(w, http.StatusNotFound, "File not found")
			return
		}
		w.Header().Set(common.ContentTypeHeaderName, common.DefaultContentType)
		_, _ = w.Write(data)
	})(w, r)
}

func (s *Server) handlePrepare(w http.ResponseWriter, r *http.Request) {
	s.record(RoutePrepare, r)
	var in models.PrepareUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	s.LastPrepare = &in
	custom := s.Prepare
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	if custom != nil {
		status, body := custom(in)
		respondJSON(w, status, body)
		return
	}

	out := models.PrepareUploadResponse{StorageID: fmt.Sprintf("st-%d", seq)}
	for i := range in.Files {
		id := fmt.Sprintf("f%d-%d", seq, i)
		out.Slots = append(out.Slots, models.UploadSlot{
			StringID:        id,
			PresignedPutURL: s.URL + "/put/" + id,
			S3Key:           out.StorageID + "/" + id,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	s.record(RoutePut, r)
	slot := chi.URLParam(r, "slot")

	s.mu.Lock()
	fail := s.FailPut[slot]
	s.mu.Unlock()
	if fail {
		http.Error(w, "storage unavailable", http.StatusInternalServerError)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.Objects[slot] = data
	s.ObjectTypes[slot] = r.Header.Get(common.ContentTypeHeaderName)
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	s.record(RouteConfirm, r)
	var in models.ConfirmUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	s.LastConfirm = &in
	custom := s.Confirm
	s.mu.Unlock()

	if custom != nil {
		status, body := custom(in)
		respondJSON(w, status, body)
		return
	}

	out := models.ConfirmUploadResponse{Success: true, StorageID: in.StorageID}
	for _, f := range in.Files {
		out.Files = append(out.Files, models.FileInfo{
			OriginalName: f.OriginalName,
			StringID:     f.StringID,
			Size:         f.Size,
			ContentType:  f.ContentType,
		})
		out.TotalSize += f.Size
	}
	respondJSON(w, http.StatusOK, out)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set(common.ContentTypeHeaderName, "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, models.ErrorResponse{Error: msg})
}
