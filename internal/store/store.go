// Package store persists image records and recognition results in MySQL.
// It tracks uploads, processing status, detection output from the analysis
// worker, and a processing event log.
package store

import (
	"context"
	"time"
)

// Status is the processing lifecycle state of an image.
type Status string

// Processing states. Uploads start pending; the analysis worker moves them
// to completed or failed. Unknown is reported when no database is available.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusUnknown    Status = "unknown"
)

// Image is a stored image record.
type Image struct {
	ID               string
	S3Key            string
	OriginalName     string
	FileSize         int64
	ProcessingStatus Status
	UploadTime       time.Time
	ProcessedAt      *time.Time
	UpdatedAt        time.Time
}

// Label is a detection label with its confidence score.
type Label struct {
	Name       string
	Confidence float64
}

// BoundingBox is a normalized detection rectangle ([0,1] coordinates).
type BoundingBox struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// PersonDetection is one detected person.
type PersonDetection struct {
	Confidence float64
	Box        BoundingBox
}

// Emotion is a single face emotion with confidence.
type Emotion struct {
	Type       string
	Confidence float64
}

// FaceDetection is one detected face with optional attributes.
type FaceDetection struct {
	Confidence float64
	Box        BoundingBox

	// Age range, nil when the analyzer did not report one.
	AgeLow  *int
	AgeHigh *int

	// Gender and its confidence, empty when not reported.
	Gender           string
	GenderConfidence float64

	// Emotions ordered by confidence; the first is the primary emotion.
	Emotions []Emotion
}

// DetectionResult is the full analysis output for one image.
type DetectionResult struct {
	Labels  []Label
	Persons []PersonDetection
	Faces   []FaceDetection
}

// ImageDetail is an image record with its detection results attached.
type ImageDetail struct {
	Image
	Labels  []Label
	Persons []PersonDetection
	Faces   []FaceDetection
}

// StatusInfo is a compact processing-status view of an image.
type StatusInfo struct {
	ProcessingStatus Status
	UploadTime       time.Time
	ProcessedAt      *time.Time
}

// Store is the persistence interface for image records.
// Lookup methods return (nil, nil) when the record does not exist;
// mutation methods return an error for a missing record.
type Store interface {
	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// CreateImage inserts a new image record with status pending.
	CreateImage(ctx context.Context, s3Key, originalName string, fileSize int64) (*Image, error)

	// GetImage retrieves an image by ID.
	GetImage(ctx context.Context, id string) (*Image, error)

	// GetImageByKey retrieves an image by its S3 key.
	GetImageByKey(ctx context.Context, s3Key string) (*Image, error)

	// ListImagesWithDetections returns all images, newest upload first,
	// with detection results attached.
	ListImagesWithDetections(ctx context.Context) ([]*ImageDetail, error)

	// UpdateProcessingStatus sets the processing status of an image.
	// processedAt may be nil when the image has not finished processing.
	UpdateProcessingStatus(ctx context.Context, id string, status Status, processedAt *time.Time) error

	// SaveDetectionResults stores analysis output for an image in a single
	// transaction and marks the image completed.
	SaveDetectionResults(ctx context.Context, imageID string, result *DetectionResult) error

	// GetProcessingStatus returns the status view for an image.
	GetProcessingStatus(ctx context.Context, id string) (*StatusInfo, error)

	// GetProcessingStatusBatch returns status views for the given image IDs.
	// IDs with no record are absent from the result map.
	GetProcessingStatusBatch(ctx context.Context, ids []string) (map[string]*StatusInfo, error)

	// LogProcessingEvent records a processing event for monitoring.
	LogProcessingEvent(ctx context.Context, imageID, processType, status, message string, durationMS int64) error

	// Close releases the underlying connection pool.
	Close() error
}
