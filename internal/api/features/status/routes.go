package status

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/glasswing-labs/imagedepot/internal/store"
)

// SetupRoutes registers the status feature routes.
func SetupRoutes(router chi.Router, st store.Store, logger *slog.Logger) {
	handlers := NewHandlers(st, logger)

	router.Route("/api/processing-status", func(r chi.Router) {
		r.Post("/batch", handlers.Batch)
		r.Get("/{imageID}", handlers.Get)
	})
}
