package uploads

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/glasswing-labs/imagedepot/internal/config"
	"github.com/glasswing-labs/imagedepot/internal/store"
)

// SetupRoutes registers the upload feature routes.
func SetupRoutes(router chi.Router, objects ObjectStore, st store.Store, thumbs config.ThumbnailConfig, logger *slog.Logger) {
	handlers := NewHandlers(objects, st, thumbs, logger)

	router.Post("/api/upload", handlers.Upload)
}
