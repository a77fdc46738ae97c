package status

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/glasswing-labs/imagedepot/internal/api/features/common"
	"github.com/glasswing-labs/imagedepot/internal/store"
)

// Handlers provides HTTP handlers for the status feature.
type Handlers struct {
	store  store.Store
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance. st may be nil when the
// service runs without a database.
func NewHandlers(st store.Store, logger *slog.Logger) *Handlers {
	return &Handlers{store: st, logger: logger}
}

// Get returns the processing status for one image.
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		common.WriteError(w, http.StatusServiceUnavailable, "Database not available")
		return
	}

	imageID := chi.URLParam(r, "imageID")
	info, err := h.store.GetProcessingStatus(r.Context(), imageID)
	if err != nil {
		h.logger.Error("status lookup failed", "imageId", imageID, "error", err)
		common.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if info == nil {
		common.WriteError(w, http.StatusNotFound, "Image not found")
		return
	}

	resp := StatusResponse{
		Success:          true,
		ImageID:          imageID,
		ProcessingStatus: string(info.ProcessingStatus),
		UploadTime:       info.UploadTime.UTC().Format(time.RFC3339),
		HasResults:       info.ProcessingStatus == store.StatusCompleted,
	}
	if info.ProcessedAt != nil {
		resp.ProcessedAt = info.ProcessedAt.UTC().Format(time.RFC3339)
	}

	common.WriteJSON(w, http.StatusOK, resp)
}

// Batch returns processing statuses for multiple images. Unknown IDs are
// omitted from the response rather than reported as errors.
func (h *Handlers) Batch(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		common.WriteError(w, http.StatusServiceUnavailable, "Database not available")
		return
	}

	var req BatchRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.ImageIDs) == 0 {
		common.WriteError(w, http.StatusBadRequest, "No image IDs provided")
		return
	}

	infos, err := h.store.GetProcessingStatusBatch(r.Context(), req.ImageIDs)
	if err != nil {
		h.logger.Error("batch status lookup failed", "error", err)
		common.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	statuses := make(map[string]BatchEntry, len(infos))
	for imageID, info := range infos {
		entry := BatchEntry{
			ProcessingStatus: string(info.ProcessingStatus),
			HasResults:       info.ProcessingStatus == store.StatusCompleted,
		}
		if info.ProcessedAt != nil {
			entry.ProcessedAt = info.ProcessedAt.UTC().Format(time.RFC3339)
		}
		statuses[imageID] = entry
	}

	common.WriteJSON(w, http.StatusOK, BatchResponse{Success: true, Statuses: statuses})
}
