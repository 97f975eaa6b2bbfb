package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"gifstore/internal/access"
	"gifstore/internal/model"
	"gifstore/internal/repository"
	"gifstore/internal/storage"
)

// UploadState is a stage of the upload pipeline.
type UploadState string

const (
	UploadReceived   UploadState = "received"
	UploadValidated  UploadState = "validated"
	UploadStored     UploadState = "stored"
	UploadRegistered UploadState = "registered"
	UploadComplete   UploadState = "complete"
	// UploadRejected means validation failed and nothing was written.
	UploadRejected UploadState = "rejected"
	// UploadFailed means a write failed; any stored blob has been removed.
	UploadFailed UploadState = "failed"
)

// UploadObserver is told the terminal state of each upload.
type UploadObserver interface {
	ObserveUpload(state string)
}

// UploadInput is one file received from a client.
// Size is the declared length, or -1 when unknown.
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

var errTooLarge = errors.New("upload exceeds size limit")

// limitedReader fails with errTooLarge once more than max bytes are read,
// so an undeclared or lying size still cannot exceed the cap.
type limitedReader struct {
	r   io.Reader
	max int64
	n   int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.n += int64(n)
	if l.n > l.max {
		return n, errTooLarge
	}
	return n, err
}

func (s *itemService) validateUpload(in UploadInput) error {
	if in.Body == nil {
		return validationf("file must be selected")
	}
	if strings.TrimSpace(in.Filename) == "" {
		return validationf("file name is required")
	}
	if !strings.EqualFold(strings.TrimSpace(in.ContentType), storage.ContentType) {
		return validationf("only GIF files are allowed")
	}
	if in.Size == 0 {
		return validationf("file is empty")
	}
	if in.Size > s.maxUpload {
		return validationf("file exceeds %d bytes", s.maxUpload)
	}
	return nil
}

func (s *itemService) finish(ctx context.Context, state UploadState, attrs ...any) {
	if s.observer != nil {
		s.observer.ObserveUpload(string(state))
	}
	args := append([]any{"state", string(state)}, attrs...)
	if state == UploadFailed {
		s.log.ErrorContext(ctx, "upload finished", args...)
		return
	}
	s.log.InfoContext(ctx, "upload finished", args...)
}

// Upload walks Received → Validated → Stored → Registered → Complete.
// Validation failures stop before any I/O. A registration failure deletes
// the stored blob before returning.
func (s *itemService) Upload(ctx context.Context, requester *access.Identity, in UploadInput) (*model.ItemView, error) {
	ctx, span := s.tracer.Start(ctx, "upload")
	defer span.End()
	span.SetAttributes(attribute.String("upload.filename", in.Filename), attribute.Int64("upload.size", in.Size))

	state := UploadReceived
	s.log.DebugContext(ctx, "upload state", "state", string(state))

	if requester == nil {
		s.finish(ctx, UploadRejected, "reason", "unauthenticated")
		return nil, ErrUnauthenticated
	}
	if err := s.validateUpload(in); err != nil {
		span.SetStatus(codes.Error, "rejected")
		s.finish(ctx, UploadRejected, "reason", err.Error())
		return nil, err
	}
	state = UploadValidated
	s.log.DebugContext(ctx, "upload state", "state", string(state))

	physical := storage.NewPhysicalName(in.Filename, requester.ID)
	span.SetAttributes(attribute.String("upload.physical_name", physical))

	if err := s.storeBlob(ctx, physical, in); err != nil {
		if errors.Is(err, errTooLarge) {
			span.SetStatus(codes.Error, "rejected")
			s.finish(ctx, UploadRejected, "reason", err.Error())
			return nil, validationf("file exceeds %d bytes", s.maxUpload)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "store failed")
		s.finish(ctx, UploadFailed, "stage", string(UploadValidated), "error", err.Error())
		return nil, fmt.Errorf("%w: store blob: %w", ErrStorage, err)
	}
	state = UploadStored
	s.log.DebugContext(ctx, "upload state", "state", string(state), "physical_name", physical)

	item, err := s.register(ctx, requester, physical, in.Filename)
	if err != nil {
		// The request may already be cancelled; the rollback must still run.
		if delErr := s.store.Delete(context.WithoutCancel(ctx), physical); delErr != nil {
			s.log.ErrorContext(ctx, "upload rollback failed",
				"physical_name", physical,
				"error", delErr.Error(),
			)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "register failed")
		s.finish(ctx, UploadFailed, "stage", string(state), "error", err.Error())
		if errors.Is(err, repository.ErrNotFound) {
			// the token outlived its user
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("%w: register item: %w", ErrStorage, err)
	}
	state = UploadRegistered
	s.log.DebugContext(ctx, "upload state", "state", string(state), "item_id", item.ID)

	view := model.NewItemView(*item, requester.Summary(), nil)
	s.finish(ctx, UploadComplete, "item_id", item.ID, "physical_name", physical)
	return &view, nil
}

func (s *itemService) storeBlob(ctx context.Context, physical string, in UploadInput) error {
	ctx, span := s.tracer.Start(ctx, "upload.store")
	defer span.End()

	size := in.Size
	if size < 0 {
		size = -1
	}
	_, err := s.store.Put(ctx, physical, &limitedReader{r: in.Body, max: s.maxUpload}, storage.PutObjectOptions{
		Size:        size,
		ContentType: storage.ContentType,
		Metadata: map[string]string{
			"original-filename": in.Filename,
		},
	})
	return err
}

func (s *itemService) register(ctx context.Context, requester *access.Identity, physical, filename string) (*model.Item, error) {
	ctx, span := s.tracer.Start(ctx, "upload.register")
	defer span.End()

	return s.items.Create(ctx, &model.Item{
		ID:           s.newID(),
		DisplayName:  storage.DisplayName(filename),
		PhysicalName: physical,
		IsPublic:     false,
		OwnerID:      requester.ID,
		CreatedAt:    s.now(),
	})
}
