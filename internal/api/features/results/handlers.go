package results

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/glasswing-labs/imagedepot/internal/api/features/common"
	"github.com/glasswing-labs/imagedepot/internal/api/notifier"
	"github.com/glasswing-labs/imagedepot/internal/store"
	"github.com/glasswing-labs/imagedepot/internal/webhook"
)

// maxIngestBytes bounds an ingest request body.
const maxIngestBytes = 4 << 20 // 4 MiB

// dispatchTimeout bounds outbound webhook delivery, including retries.
const dispatchTimeout = 2 * time.Minute

// Handlers provides HTTP handlers for the results ingest feature.
type Handlers struct {
	store      store.Store
	secret     []byte
	notifier   *notifier.Notifier
	dispatcher *webhook.Dispatcher
	logger     *slog.Logger
}

// NewHandlers creates a new Handlers instance. Requests are authenticated
// with an HMAC signature when secret is non-empty.
func NewHandlers(st store.Store, secret string, notify *notifier.Notifier, dispatcher *webhook.Dispatcher, logger *slog.Logger) *Handlers {
	return &Handlers{
		store:      st,
		secret:     []byte(secret),
		notifier:   notify,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Ingest persists detection results for an image, marks it completed and
// notifies listeners. The analysis worker signs the body with HMAC-SHA256.
func (h *Handlers) Ingest(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		common.WriteError(w, http.StatusServiceUnavailable, "Database not available")
		return
	}

	imageID := chi.URLParam(r, "imageID")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxIngestBytes))
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	defer func() { _ = r.Body.Close() }()

	if len(h.secret) > 0 {
		signature := r.Header.Get(webhook.SignatureHeader)
		if signature == "" || !webhook.Verify(h.secret, body, signature) {
			h.logger.Warn("rejected ingest with bad signature", "imageId", imageID)
			common.WriteError(w, http.StatusUnauthorized, "invalid signature")
			return
		}
	}

	var payload Ingest
	if err := json.Unmarshal(body, &payload); err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	img, err := h.store.GetImage(r.Context(), imageID)
	if err != nil {
		h.logger.Error("image lookup failed", "imageId", imageID, "error", err)
		common.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if img == nil {
		common.WriteError(w, http.StatusNotFound, "Image not found")
		return
	}

	if payload.Status == string(store.StatusFailed) {
		h.ingestFailure(w, r, img, payload)
		return
	}

	result := toDetectionResult(payload)
	if err := h.store.SaveDetectionResults(r.Context(), imageID, result); err != nil {
		h.logger.Error("failed to save detection results", "imageId", imageID, "error", err)
		common.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var durationMS int64
	if payload.Timing != nil {
		durationMS = payload.Timing.DurationMS
	}
	if err := h.store.LogProcessingEvent(r.Context(), imageID, "recognition", "completed", "Detection results stored", durationMS); err != nil {
		h.logger.Warn("failed to log recognition event", "imageId", imageID, "error", err)
	}

	h.logger.Info("detection results stored",
		"imageId", imageID,
		"labels", len(result.Labels),
		"persons", len(result.Persons),
		"faces", len(result.Faces))

	h.notify(img, store.StatusCompleted)

	common.WriteJSON(w, http.StatusOK, Response{
		Success:          true,
		ImageID:          imageID,
		ProcessingStatus: string(store.StatusCompleted),
	})
}

// ingestFailure records a failed analysis without detection rows.
func (h *Handlers) ingestFailure(w http.ResponseWriter, r *http.Request, img *store.Image, payload Ingest) {
	now := time.Now().UTC()
	if err := h.store.UpdateProcessingStatus(r.Context(), img.ID, store.StatusFailed, &now); err != nil {
		h.logger.Error("failed to mark image failed", "imageId", img.ID, "error", err)
		common.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var durationMS int64
	if payload.Timing != nil {
		durationMS = payload.Timing.DurationMS
	}
	if err := h.store.LogProcessingEvent(r.Context(), img.ID, "recognition", "failed", "Analysis failed", durationMS); err != nil {
		h.logger.Warn("failed to log recognition event", "imageId", img.ID, "error", err)
	}

	h.notify(img, store.StatusFailed)

	common.WriteJSON(w, http.StatusOK, Response{
		Success:          true,
		ImageID:          img.ID,
		ProcessingStatus: string(store.StatusFailed),
	})
}

// notify broadcasts to SSE listeners and dispatches the outbound webhook.
func (h *Handlers) notify(img *store.Image, status store.Status) {
	if h.notifier != nil {
		h.notifier.Broadcast(notifier.Update{
			ImageID: img.ID,
			S3Key:   img.S3Key,
			Status:  string(status),
		})
	}

	if h.dispatcher == nil || !h.dispatcher.Enabled() {
		return
	}

	processedAt := time.Now().UTC()
	event := webhook.Event{
		ImageID:     img.ID,
		S3Key:       img.S3Key,
		Status:      string(status),
		ProcessedAt: &processedAt,
	}

	// Delivery retries outlive the ingest request.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		if err := h.dispatcher.Dispatch(ctx, event); err != nil {
			h.logger.Error("webhook dispatch failed", "imageId", img.ID, "error", err)
		}
	}()
}

func toDetectionResult(payload Ingest) *store.DetectionResult {
	result := &store.DetectionResult{}

	for _, label := range payload.Labels {
		result.Labels = append(result.Labels, store.Label{
			Name:       label.Name,
			Confidence: label.Confidence,
		})
	}

	for _, person := range payload.Persons {
		result.Persons = append(result.Persons, store.PersonDetection{
			Confidence: person.Confidence,
			Box:        toBox(person.Box),
		})
	}

	for _, face := range payload.Faces {
		detection := store.FaceDetection{
			Confidence: face.Confidence,
			Box:        toBox(face.Box),
		}
		if face.AgeRange != nil {
			low, high := face.AgeRange.Low, face.AgeRange.High
			detection.AgeLow, detection.AgeHigh = &low, &high
		}
		if face.Gender != nil {
			detection.Gender = face.Gender.Value
			detection.GenderConfidence = face.Gender.Confidence
		}
		for _, emotion := range face.Emotions {
			detection.Emotions = append(detection.Emotions, store.Emotion{
				Type:       emotion.Type,
				Confidence: emotion.Confidence,
			})
		}
		result.Faces = append(result.Faces, detection)
	}

	return result
}

func toBox(box BoxInput) store.BoundingBox {
	return store.BoundingBox{
		Left:   box.Left,
		Top:    box.Top,
		Width:  box.Width,
		Height: box.Height,
	}
}
