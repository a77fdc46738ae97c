package images

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/glasswing-labs/imagedepot/internal/store"
)

// SetupRoutes registers the images feature routes.
func SetupRoutes(router chi.Router, objects ObjectStore, st store.Store, logger *slog.Logger) {
	handlers := NewHandlers(objects, st, logger)

	router.Get("/api/images", handlers.List)
	router.Get("/api/image/*", handlers.GetURL)
}
