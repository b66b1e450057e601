package services

import (
	"errors"
	"fmt"
)

var (
	ErrNoSession      = errors.New("not signed in")
	ErrSessionExpired = errors.New("session expired, please sign in again")
	// ErrAuthHeaderFailed means a user session exists but no valid access
	// token could be produced for it.
	ErrAuthHeaderFailed = errors.New("authentication failed - please sign in again")

	ErrInvalidPassword     = errors.New("invalid bucket password")
	ErrPasswordRequired    = errors.New("bucket is password protected")
	ErrBucketTokenRejected = errors.New("bucket token rejected")

	ErrNoFiles                = errors.New("no files to upload")
	ErrPrepareFailed          = errors.New("prepare upload failed")
	ErrInvalidPrepareResponse = errors.New("invalid prepare response")
	ErrTransferFailed         = errors.New("file transfer failed")
	ErrConfirmFailed          = errors.New("confirm upload failed")

	ErrDownloadFailed = errors.New("download failed")
)

// TransferError reports the file whose direct PUT failed. Files before it
// in the batch were already written and are not cleaned up.
type TransferError struct {
	FileName string
	Err      error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("failed to upload %s: %v", e.FileName, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

func (e *TransferError) Is(target error) bool { return target == ErrTransferFailed }

// ConfirmError carries the server's reason for rejecting a confirm.
type ConfirmError struct {
	Message string
	Err     error
}

func (e *ConfirmError) Error() string {
	return e.Message
}

func (e *ConfirmError) Unwrap() error { return e.Err }

func (e *ConfirmError) Is(target error) bool { return target == ErrConfirmFailed }
