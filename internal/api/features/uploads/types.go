// Package uploads handles multipart image uploads into the object store.
package uploads

import (
	"context"

	"github.com/glasswing-labs/imagedepot/internal/api/features/common"
	"github.com/glasswing-labs/imagedepot/internal/blob"
)

// ObjectStore is the object storage surface the upload feature uses.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, input blob.UploadInput) error
	Bucket() string
}

// FileResult describes the outcome of one uploaded file.
type FileResult struct {
	FileName         string              `json:"fileName"`
	OriginalName     string              `json:"originalName,omitempty"`
	S3Key            string              `json:"s3Key,omitempty"`
	Bucket           string              `json:"bucket,omitempty"`
	Status           string              `json:"status"`
	ProcessingStatus string              `json:"processing_status,omitempty"`
	Message          string              `json:"message,omitempty"`
	UploadTime       string              `json:"uploadTime,omitempty"`
	ImageID          string              `json:"imageId,omitempty"`
	FileSize         int64               `json:"fileSize,omitempty"`
	Error            string              `json:"error,omitempty"`
	Recognition      *common.Recognition `json:"rekognition,omitempty"`
}

// Response is the upload endpoint response.
type Response struct {
	Success         bool         `json:"success"`
	Files           []FileResult `json:"files"`
	Bucket          string       `json:"bucket"`
	DatabaseEnabled bool         `json:"database_enabled"`
	ProcessingMode  string       `json:"processing_mode"`
	Message         string       `json:"message"`
}
