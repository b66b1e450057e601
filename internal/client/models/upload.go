package models

import (
	"io"
	"strings"

	"github.com/dmitrijs2005/gophbucket/internal/common"
)

// UploadFile is one local file handed to the upload orchestrator. Open is
// called once, during the transfer phase.
type UploadFile struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// EffectiveContentType returns ContentType, or the generic binary type when
// it is blank.
func (f UploadFile) EffectiveContentType() string {
	if ct := strings.TrimSpace(f.ContentType); ct != "" {
		return ct
	}
	return common.DefaultContentType
}

// PrepareFile is the per-file metadata sent in the prepare phase.
type PrepareFile struct {
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
	ContentType  string `json:"content_type"`
}

type PrepareUploadRequest struct {
	Files    []PrepareFile `json:"files"`
	Password string        `json:"password,omitempty"`
}

// UploadSlot is a pre-authorised direct-storage write location for one file.
type UploadSlot struct {
	StringID        string `json:"string_id"`
	PresignedPutURL string `json:"presigned_put_url"`
	S3Key           string `json:"s3_key"`
}

type PrepareUploadResponse struct {
	StorageID string       `json:"storage_id"`
	Slots     []UploadSlot `json:"slots"`
	Error     string       `json:"error,omitempty"`
}

// ConfirmFile links a slot to the metadata of the file written into it.
type ConfirmFile struct {
	StringID     string `json:"string_id"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
	ContentType  string `json:"content_type"`
}

type ConfirmUploadRequest struct {
	StorageID string        `json:"storage_id"`
	Files     []ConfirmFile `json:"files"`
}

type ConfirmUploadResponse struct {
	Success   bool       `json:"success"`
	StorageID string     `json:"storage_id,omitempty"`
	Files     []FileInfo `json:"files,omitempty"`
	TotalSize int64      `json:"total_size,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// UploadResult is returned once an upload has been confirmed.
type UploadResult struct {
	URL       string
	StorageID string
	Files     []FileInfo
	TotalSize int64
}
