package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophbucket/internal/client/client"
	"github.com/dmitrijs2005/gophbucket/internal/client/models"
	"github.com/dmitrijs2005/gophbucket/internal/logging"
)

const defaultConfirmMessage = "Confirm upload failed"

// UploadOrchestrator runs the prepare, transfer and confirm phases for one
// batch of files landing in one bucket.
//
// Phases run strictly in order and stop at the first failure. Objects
// already written before a failed PUT or a rejected confirm are left behind;
// the bucket's expiry reclaims them.
type UploadOrchestrator interface {
	Upload(ctx context.Context, files []models.UploadFile, password string) (*models.UploadResult, error)
}

type uploadOrchestrator struct {
	client   client.Client
	identity identity
	log      logging.Logger
}

func NewUploadOrchestrator(c client.Client, store TokenStore, sessions SessionManager, log logging.Logger) UploadOrchestrator {
	if log == nil {
		log = logging.NewNop()
	}
	log = log.With("component", "upload")
	return &uploadOrchestrator{
		client:   c,
		identity: identity{sessions: sessions, store: store, log: log},
		log:      log,
	}
}

func (u *uploadOrchestrator) Upload(ctx context.Context, files []models.UploadFile, password string) (*models.UploadResult, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	bearer, err := u.identity.bearer(ctx, true)
	if err != nil {
		recordUpload(resultFailed, 0)
		return nil, err
	}

	prep, err := u.prepare(ctx, files, password, bearer)
	if err != nil {
		recordUpload(resultFailed, 0)
		return nil, err
	}

	written, err := u.transfer(ctx, files, prep.Slots)
	if err != nil {
		recordUpload(resultFailed, written)
		return nil, err
	}

	conf, err := u.confirm(ctx, files, prep, bearer)
	if err != nil {
		recordUpload(resultFailed, written)
		return nil, err
	}

	storageID := conf.StorageID
	if storageID == "" {
		storageID = prep.StorageID
	}
	recordUpload(resultOK, written)
	u.log.Info(ctx, "upload confirmed", "storage_id", storageID, "files", len(files), "bytes", written)

	return &models.UploadResult{
		URL:       "/files/s/" + storageID,
		StorageID: storageID,
		Files:     conf.Files,
		TotalSize: conf.TotalSize,
	}, nil
}

func (u *uploadOrchestrator) prepare(ctx context.Context, files []models.UploadFile, password, bearer string) (*models.PrepareUploadResponse, error) {
	req := models.PrepareUploadRequest{Files: make([]models.PrepareFile, len(files))}
	for i, f := range files {
		req.Files[i] = models.PrepareFile{
			OriginalName: f.Name,
			Size:         f.Size,
			ContentType:  f.EffectiveContentType(),
		}
	}
	if p := strings.TrimSpace(password); p != "" {
		req.Password = p
	}

	resp, err := u.client.PrepareUpload(ctx, req, bearer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPrepareFailed, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrPrepareFailed, resp.Error)
	}

	if resp.StorageID == "" {
		return nil, fmt.Errorf("%w: missing storage id", ErrInvalidPrepareResponse)
	}
	if len(resp.Slots) != len(files) {
		return nil, fmt.Errorf("%w: %d slots for %d files", ErrInvalidPrepareResponse, len(resp.Slots), len(files))
	}
	for i, s := range resp.Slots {
		if s.StringID == "" || s.PresignedPutURL == "" {
			return nil, fmt.Errorf("%w: slot %d is incomplete", ErrInvalidPrepareResponse, i)
		}
	}
	return resp, nil
}

// transfer PUTs files[i] into slots[i] and returns the bytes written before
// it stopped.
func (u *uploadOrchestrator) transfer(ctx context.Context, files []models.UploadFile, slots []models.UploadSlot) (int64, error) {
	var written int64
	for i, f := range files {
		if err := u.put(ctx, f, slots[i]); err != nil {
			u.log.Warn(ctx, "transfer aborted", "file", f.Name, "index", i, "error", err)
			return written, &TransferError{FileName: f.Name, Err: err}
		}
		written += f.Size
	}
	return written, nil
}

func (u *uploadOrchestrator) put(ctx context.Context, f models.UploadFile, slot models.UploadSlot) error {
	if f.Open == nil {
		return errors.New("file has no content")
	}
	body, err := f.Open()
	if err != nil {
		return err
	}
	defer body.Close()

	return u.client.PutObject(ctx, slot.PresignedPutURL, f.EffectiveContentType(), f.Size, body)
}

func (u *uploadOrchestrator) confirm(ctx context.Context, files []models.UploadFile, prep *models.PrepareUploadResponse, bearer string) (*models.ConfirmUploadResponse, error) {
	req := models.ConfirmUploadRequest{
		StorageID: prep.StorageID,
		Files:     make([]models.ConfirmFile, len(files)),
	}
	for i, slot := range prep.Slots {
		req.Files[i] = models.ConfirmFile{
			StringID:     slot.StringID,
			OriginalName: files[i].Name,
			Size:         files[i].Size,
			ContentType:  files[i].EffectiveContentType(),
		}
	}

	resp, err := u.client.ConfirmUpload(ctx, req, bearer)
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			return nil, fmt.Errorf("confirm upload: %w", err)
		}
		msg := defaultConfirmMessage
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			msg = apiErr.Message
		}
		return nil, &ConfirmError{Message: msg, Err: err}
	}
	if !resp.Success || resp.Error != "" {
		msg := resp.Error
		if msg == "" {
			msg = defaultConfirmMessage
		}
		return nil, &ConfirmError{Message: msg}
	}
	return resp, nil
}
