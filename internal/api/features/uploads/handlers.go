package uploads

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/glasswing-labs/imagedepot/internal/api/features/common"
	"github.com/glasswing-labs/imagedepot/internal/blob"
	"github.com/glasswing-labs/imagedepot/internal/config"
	imagingpkg "github.com/glasswing-labs/imagedepot/internal/imaging"
	"github.com/glasswing-labs/imagedepot/internal/store"
)

// maxUploadBytes bounds a single multipart request body.
const maxUploadBytes = 64 << 20 // 64 MiB

// UploadPrefix is the object key prefix for original uploads.
const UploadPrefix = "uploads/"

// ThumbPrefix is the object key prefix for generated thumbnails.
const ThumbPrefix = "thumbs/"

// Handlers provides HTTP handlers for the upload feature.
type Handlers struct {
	objects ObjectStore
	store   store.Store
	thumbs  config.ThumbnailConfig
	logger  *slog.Logger
}

// NewHandlers creates a new Handlers instance. st may be nil when the
// service runs without a database.
func NewHandlers(objects ObjectStore, st store.Store, thumbs config.ThumbnailConfig, logger *slog.Logger) *Handlers {
	return &Handlers{
		objects: objects,
		store:   st,
		thumbs:  thumbs,
		logger:  logger,
	}
}

// Upload accepts one or more images under the "files" (or "file")
// multipart field, stores each in the object store and records it in the
// database when one is configured. Failures are reported per file; a
// database error never fails an upload that reached the object store.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid multipart request: "+err.Error())
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		files = r.MultipartForm.File["file"]
	}
	if len(files) == 0 {
		common.WriteError(w, http.StatusBadRequest, "No files provided")
		return
	}

	h.logger.Info("received files for upload", "count", len(files))

	results := make([]FileResult, 0, len(files))
	for _, header := range files {
		if header.Filename == "" {
			continue
		}
		results = append(results, h.uploadOne(r, header))
	}

	common.WriteJSON(w, http.StatusOK, Response{
		Success:         true,
		Files:           results,
		Bucket:          h.objects.Bucket(),
		DatabaseEnabled: h.store != nil,
		ProcessingMode:  "async_lambda",
		Message:         "Images uploaded successfully. AI processing will complete in the background.",
	})
}

func (h *Handlers) uploadOne(r *http.Request, header *multipart.FileHeader) FileResult {
	data, err := readFile(header)
	if err != nil {
		h.logger.Error("failed to read uploaded file", "file", header.Filename, "error", err)
		return FileResult{FileName: header.Filename, Status: "failed", Error: err.Error()}
	}

	if _, err := imagingpkg.Sniff(data); err != nil {
		h.logger.Warn("rejected non-image upload", "file", header.Filename, "error", err)
		return FileResult{FileName: header.Filename, Status: "failed", Error: err.Error()}
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	key := fmt.Sprintf("%s%s%s", UploadPrefix, uuid.New().String(), ext)
	now := time.Now().UTC()

	err = h.objects.Upload(r.Context(), key, data, blob.UploadInput{
		ContentType: header.Header.Get("Content-Type"),
		Metadata: map[string]string{
			"original-name": header.Filename,
			"upload-time":   now.Format(time.RFC3339),
			"uploaded-by":   "imagedepot",
		},
	})
	if err != nil {
		h.logger.Error("object store upload failed", "file", header.Filename, "error", err)
		return FileResult{FileName: header.Filename, Status: "failed", Error: err.Error()}
	}

	h.logger.Info("uploaded to object store", "key", key, "size", len(data))

	h.generateThumbnail(r, key, data)

	imageID := h.recordUpload(r, key, header.Filename, int64(len(data)))

	rec := common.EmptyRecognition("processing", "AI analysis in progress...")
	return FileResult{
		FileName:         key,
		OriginalName:     header.Filename,
		S3Key:            key,
		Bucket:           h.objects.Bucket(),
		Status:           "uploaded",
		ProcessingStatus: string(store.StatusPending),
		Message:          "Image uploaded successfully. Processing will complete shortly.",
		UploadTime:       now.Format(time.RFC3339),
		ImageID:          imageID,
		FileSize:         int64(len(data)),
		Recognition:      &rec,
	}
}

// generateThumbnail writes a JPEG thumbnail next to the original.
// Best effort, a failure never fails the upload.
func (h *Handlers) generateThumbnail(r *http.Request, key string, data []byte) {
	if !h.thumbs.Enabled {
		return
	}

	thumb, err := imagingpkg.Thumbnail(data, h.thumbs.MaxEdge, h.thumbs.Quality)
	if err != nil {
		h.logger.Warn("thumbnail generation failed", "key", key, "error", err)
		return
	}

	thumbKey := ThumbPrefix + strings.TrimPrefix(key, UploadPrefix)
	if err := h.objects.Upload(r.Context(), thumbKey, thumb, blob.UploadInput{ContentType: "image/jpeg"}); err != nil {
		h.logger.Warn("thumbnail upload failed", "key", thumbKey, "error", err)
	}
}

// recordUpload writes the image record and upload event. Returns the new
// image ID, or empty when no database is configured or the write failed.
func (h *Handlers) recordUpload(r *http.Request, key, originalName string, size int64) string {
	if h.store == nil {
		return ""
	}

	img, err := h.store.CreateImage(r.Context(), key, originalName, size)
	if err != nil {
		h.logger.Error("database record failed, continuing without it", "key", key, "error", err)
		return ""
	}

	if err := h.store.LogProcessingEvent(r.Context(), img.ID, "upload", "completed", "Uploaded to object store: "+key, 0); err != nil {
		h.logger.Warn("failed to log upload event", "imageId", img.ID, "error", err)
	}

	h.logger.Info("created image record", "imageId", img.ID, "status", store.StatusPending)
	return img.ID
}

func readFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return data, nil
}
