package system

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/glasswing-labs/imagedepot/internal/config"
	"github.com/glasswing-labs/imagedepot/internal/store"
)

// SetupRoutes registers the system feature routes.
func SetupRoutes(router chi.Router, objects ObjectStore, st store.Store, cfg *config.Config, logger *slog.Logger) {
	handlers := NewHandlers(objects, st, cfg, logger)

	router.Get("/api/health", handlers.Health)
	router.Get("/api/status/infrastructure", handlers.Infrastructure)
	router.Get("/api/config", handlers.Config)
}
