// Package images serves image listings and presigned download URLs.
package images

import (
	"context"

	"github.com/glasswing-labs/imagedepot/internal/api/features/common"
	"github.com/glasswing-labs/imagedepot/internal/blob"
)

// ObjectStore is the object storage surface the images feature uses.
type ObjectStore interface {
	PresignGet(ctx context.Context, key string) (string, error)
	List(ctx context.Context, prefix string) ([]blob.Object, error)
	Bucket() string
}

// ImageInfo is one image in the listing response.
type ImageInfo struct {
	FileName         string             `json:"fileName"`
	OriginalName     string             `json:"originalName"`
	UploadTime       string             `json:"uploadTime,omitempty"`
	Size             int64              `json:"size"`
	URL              string             `json:"url"`
	Recognition      common.Recognition `json:"rekognition"`
	ProcessingStatus string             `json:"processing_status"`
	ProcessedAt      string             `json:"processed_at,omitempty"`
	ImageID          string             `json:"imageId,omitempty"`
}

// ListResponse is the image listing response.
type ListResponse struct {
	Success        bool        `json:"success"`
	Images         []ImageInfo `json:"images"`
	Source         string      `json:"source"`
	ProcessingMode string      `json:"processing_mode"`
	Count          int         `json:"count"`
	Message        string      `json:"message,omitempty"`
	Error          string      `json:"error,omitempty"`
}

// URLResponse is the single-image presigned URL response.
type URLResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	S3Key   string `json:"s3_key"`
	Bucket  string `json:"bucket,omitempty"`
	Error   string `json:"error,omitempty"`
}
