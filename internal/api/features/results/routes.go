package results

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/glasswing-labs/imagedepot/internal/api/notifier"
	"github.com/glasswing-labs/imagedepot/internal/store"
	"github.com/glasswing-labs/imagedepot/internal/webhook"
)

// SetupRoutes registers the results ingest route.
func SetupRoutes(router chi.Router, st store.Store, secret string, notify *notifier.Notifier, dispatcher *webhook.Dispatcher, logger *slog.Logger) {
	handlers := NewHandlers(st, secret, notify, dispatcher, logger)

	router.Post("/api/results/{imageID}", handlers.Ingest)
}
