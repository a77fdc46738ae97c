package images

import (
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/glasswing-labs/imagedepot/internal/api/features/common"
	"github.com/glasswing-labs/imagedepot/internal/store"
)

// UploadPrefix is the listing prefix for original uploads.
const UploadPrefix = "uploads/"

// Handlers provides HTTP handlers for the images feature.
type Handlers struct {
	objects ObjectStore
	store   store.Store
	logger  *slog.Logger
}

// NewHandlers creates a new Handlers instance. st may be nil when the
// service runs without a database.
func NewHandlers(objects ObjectStore, st store.Store, logger *slog.Logger) *Handlers {
	return &Handlers{
		objects: objects,
		store:   st,
		logger:  logger,
	}
}

// List returns all images with their recognition results. The database is
// the primary source; when it is unavailable the handler falls back to
// listing the object store directly, without recognition results.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		details, err := h.store.ListImagesWithDetections(r.Context())
		if err == nil {
			h.writeDatabaseListing(w, r, details)
			return
		}
		h.logger.Error("database listing failed, falling back to object store", "error", err)
	}

	h.writeFallbackListing(w, r)
}

func (h *Handlers) writeDatabaseListing(w http.ResponseWriter, r *http.Request, details []*store.ImageDetail) {
	images := make([]ImageInfo, 0, len(details))
	for _, detail := range details {
		url, err := h.objects.PresignGet(r.Context(), detail.S3Key)
		if err != nil {
			h.logger.Error("presign failed, skipping image", "key", detail.S3Key, "error", err)
			continue
		}

		info := ImageInfo{
			FileName:         detail.S3Key,
			OriginalName:     detail.OriginalName,
			UploadTime:       detail.UploadTime.UTC().Format(time.RFC3339),
			Size:             detail.FileSize,
			URL:              url,
			Recognition:      common.RecognitionFromDetail(detail),
			ProcessingStatus: string(detail.ProcessingStatus),
			ImageID:          detail.ID,
		}
		if detail.ProcessedAt != nil {
			info.ProcessedAt = detail.ProcessedAt.UTC().Format(time.RFC3339)
		}
		if info.OriginalName == "" {
			info.OriginalName = detail.S3Key
		}
		images = append(images, info)
	}

	common.WriteJSON(w, http.StatusOK, ListResponse{
		Success:        true,
		Images:         images,
		Source:         "database",
		ProcessingMode: "lambda_async",
		Count:          len(images),
	})
}

func (h *Handlers) writeFallbackListing(w http.ResponseWriter, r *http.Request) {
	objects, err := h.objects.List(r.Context(), UploadPrefix)
	if err != nil {
		h.logger.Error("object store listing failed", "error", err)
		common.WriteJSON(w, http.StatusInternalServerError, ListResponse{
			Success: false,
			Error:   "S3 Error: " + err.Error(),
			Images:  []ImageInfo{},
			Source:  "s3_error",
		})
		return
	}

	status := store.StatusUnknown
	message := "Database not available - processing status unknown"
	if h.store != nil {
		status = store.StatusProcessing
		message = "Processing in progress..."
	}

	images := make([]ImageInfo, 0, len(objects))
	for _, obj := range objects {
		url, err := h.objects.PresignGet(r.Context(), obj.Key)
		if err != nil {
			h.logger.Error("presign failed, skipping object", "key", obj.Key, "error", err)
			continue
		}
		images = append(images, ImageInfo{
			FileName:         obj.Key,
			OriginalName:     path.Base(obj.Key),
			UploadTime:       obj.LastModified.UTC().Format(time.RFC3339),
			Size:             obj.Size,
			URL:              url,
			Recognition:      common.EmptyRecognition(string(status), message),
			ProcessingStatus: string(status),
		})
	}

	common.WriteJSON(w, http.StatusOK, ListResponse{
		Success:        true,
		Images:         images,
		Source:         "s3_fallback",
		ProcessingMode: "lambda_async",
		Count:          len(images),
		Message:        "Using object store fallback - database unavailable",
	})
}

// GetURL returns a presigned download URL for a single object key.
func (h *Handlers) GetURL(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if key == "" {
		common.WriteError(w, http.StatusBadRequest, "missing object key")
		return
	}

	url, err := h.objects.PresignGet(r.Context(), key)
	if err != nil {
		h.logger.Error("presign failed", "key", key, "error", err)
		common.WriteJSON(w, http.StatusNotFound, URLResponse{
			Success: false,
			S3Key:   key,
			Error:   "S3 Error: " + err.Error(),
		})
		return
	}

	common.WriteJSON(w, http.StatusOK, URLResponse{
		Success: true,
		URL:     url,
		S3Key:   key,
		Bucket:  h.objects.Bucket(),
	})
}
