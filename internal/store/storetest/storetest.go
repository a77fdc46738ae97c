// Package storetest provides a configurable in-test Store implementation.
package storetest

import (
	"context"
	"time"

	"github.com/glasswing-labs/imagedepot/internal/store"
)

// Fake implements store.Store with overridable function fields.
// Unset fields behave as an empty store.
type Fake struct {
	PingFn                     func(ctx context.Context) error
	CreateImageFn              func(ctx context.Context, s3Key, originalName string, fileSize int64) (*store.Image, error)
	GetImageFn                 func(ctx context.Context, id string) (*store.Image, error)
	GetImageByKeyFn            func(ctx context.Context, s3Key string) (*store.Image, error)
	ListImagesWithDetectionsFn func(ctx context.Context) ([]*store.ImageDetail, error)
	UpdateProcessingStatusFn   func(ctx context.Context, id string, status store.Status, processedAt *time.Time) error
	SaveDetectionResultsFn     func(ctx context.Context, imageID string, result *store.DetectionResult) error
	GetProcessingStatusFn      func(ctx context.Context, id string) (*store.StatusInfo, error)
	GetProcessingStatusBatchFn func(ctx context.Context, ids []string) (map[string]*store.StatusInfo, error)
	LogProcessingEventFn       func(ctx context.Context, imageID, processType, status, message string, durationMS int64) error
}

var _ store.Store = (*Fake)(nil)

func (f *Fake) Ping(ctx context.Context) error {
	if f.PingFn != nil {
		return f.PingFn(ctx)
	}
	return nil
}

func (f *Fake) CreateImage(ctx context.Context, s3Key, originalName string, fileSize int64) (*store.Image, error) {
	if f.CreateImageFn != nil {
		return f.CreateImageFn(ctx, s3Key, originalName, fileSize)
	}
	return &store.Image{
		ID:               "fake-id",
		S3Key:            s3Key,
		OriginalName:     originalName,
		FileSize:         fileSize,
		ProcessingStatus: store.StatusPending,
		UploadTime:       time.Now().UTC(),
	}, nil
}

func (f *Fake) GetImage(ctx context.Context, id string) (*store.Image, error) {
	if f.GetImageFn != nil {
		return f.GetImageFn(ctx, id)
	}
	return nil, nil
}

func (f *Fake) GetImageByKey(ctx context.Context, s3Key string) (*store.Image, error) {
	if f.GetImageByKeyFn != nil {
		return f.GetImageByKeyFn(ctx, s3Key)
	}
	return nil, nil
}

func (f *Fake) ListImagesWithDetections(ctx context.Context) ([]*store.ImageDetail, error) {
	if f.ListImagesWithDetectionsFn != nil {
		return f.ListImagesWithDetectionsFn(ctx)
	}
	return nil, nil
}

func (f *Fake) UpdateProcessingStatus(ctx context.Context, id string, status store.Status, processedAt *time.Time) error {
	if f.UpdateProcessingStatusFn != nil {
		return f.UpdateProcessingStatusFn(ctx, id, status, processedAt)
	}
	return nil
}

func (f *Fake) SaveDetectionResults(ctx context.Context, imageID string, result *store.DetectionResult) error {
	if f.SaveDetectionResultsFn != nil {
		return f.SaveDetectionResultsFn(ctx, imageID, result)
	}
	return nil
}

func (f *Fake) GetProcessingStatus(ctx context.Context, id string) (*store.StatusInfo, error) {
	if f.GetProcessingStatusFn != nil {
		return f.GetProcessingStatusFn(ctx, id)
	}
	return nil, nil
}

func (f *Fake) GetProcessingStatusBatch(ctx context.Context, ids []string) (map[string]*store.StatusInfo, error) {
	if f.GetProcessingStatusBatchFn != nil {
		return f.GetProcessingStatusBatchFn(ctx, ids)
	}
	return map[string]*store.StatusInfo{}, nil
}

func (f *Fake) LogProcessingEvent(ctx context.Context, imageID, processType, status, message string, durationMS int64) error {
	if f.LogProcessingEventFn != nil {
		return f.LogProcessingEventFn(ctx, imageID, processType, status, message, durationMS)
	}
	return nil
}

func (f *Fake) Close() error { return nil }
