// Package events streams processing updates to browsers over SSE.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/glasswing-labs/imagedepot/internal/api/notifier"
)

// heartbeatInterval keeps idle connections alive through proxies.
const heartbeatInterval = 15 * time.Second

// Handlers provides the SSE endpoint.
type Handlers struct {
	notifier *notifier.Notifier
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(notify *notifier.Notifier, logger *slog.Logger) *Handlers {
	return &Handlers{notifier: notify, logger: logger}
}

// Stream sends processing updates as server-sent events until the client
// disconnects.
func (h *Handlers) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(ch)

	fmt.Fprint(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case update := <-ch:
			data, err := json.Marshal(update)
			if err != nil {
				h.logger.Error("failed to encode update", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: update\ndata: %s\n\n", data)
			flusher.Flush()

		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

// SetupRoutes registers the SSE route.
func SetupRoutes(router chi.Router, notify *notifier.Notifier, logger *slog.Logger) {
	handlers := NewHandlers(notify, logger)

	router.Get("/api/events", handlers.Stream)
}
