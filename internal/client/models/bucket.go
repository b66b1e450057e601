package models

import "time"

// ProtectionStatus is the body of GET /files/s/{bucket}/protected.
type ProtectionStatus struct {
	Protected bool   `json:"protected"`
	BucketID  string `json:"bucket_id"`
}

// BucketAuth is the body of a successful bucket password exchange.
type BucketAuth struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// FileInfo describes one file stored in a bucket.
type FileInfo struct {
	OriginalName string `json:"original_name"`
	StringID     string `json:"string_id"`
	Key          string `json:"key"`
	Size         int64  `json:"size"`
	ContentType  string `json:"content_type"`
}

// BucketMetadata is a bucket listing. It is fetched fresh on every request.
type BucketMetadata struct {
	StorageID string     `json:"storage_id"`
	Files     []FileInfo `json:"files"`
	TotalSize int64      `json:"total_size"`
}

// AdminInfo describes a bucket owner or administrator.
type AdminInfo struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Username  string `json:"username,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	IsOwner   bool   `json:"is_owner"`
	CreatedAt int64  `json:"created_at"`
}

// BucketAdmins is the body of GET /files/s/{bucket}/admins.
type BucketAdmins struct {
	BucketID string      `json:"bucket_id"`
	Owner    *AdminInfo  `json:"owner"`
	Admins   []AdminInfo `json:"admins"`
}

// Includes reports whether userID is the owner or one of the admins.
func (b *BucketAdmins) Includes(userID string) bool {
	if b == nil || userID == "" {
		return false
	}
	if b.Owner != nil && b.Owner.UserID == userID {
		return true
	}
	for _, a := range b.Admins {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

// Lifecycle is the body of GET /lifecycle/s/{bucket}.
type Lifecycle struct {
	BucketID  string    `json:"bucket_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DownloadResult tells the caller how a download was delivered: saved to
// Path, or handed to the browser at FallbackURL.
type DownloadResult struct {
	Path        string
	FallbackURL string
}

// FellBack reports whether the degraded browser path was used.
func (r DownloadResult) FellBack() bool {
	return r.FallbackURL != ""
}
