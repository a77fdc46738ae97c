// Package router wires the API features onto the HTTP mux.
package router

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/glasswing-labs/imagedepot/internal/api/features/events"
	"github.com/glasswing-labs/imagedepot/internal/api/features/images"
	"github.com/glasswing-labs/imagedepot/internal/api/features/results"
	"github.com/glasswing-labs/imagedepot/internal/api/features/status"
	"github.com/glasswing-labs/imagedepot/internal/api/features/system"
	"github.com/glasswing-labs/imagedepot/internal/api/features/uploads"
	"github.com/glasswing-labs/imagedepot/internal/api/notifier"
	"github.com/glasswing-labs/imagedepot/internal/blob"
	"github.com/glasswing-labs/imagedepot/internal/config"
	"github.com/glasswing-labs/imagedepot/internal/store"
	"github.com/glasswing-labs/imagedepot/internal/webhook"
)

// Deps holds everything the routes need. Store is nil when the service
// runs without a database.
type Deps struct {
	Config     *config.Config
	Objects    *blob.Client
	Store      store.Store
	Notifier   *notifier.Notifier
	Dispatcher *webhook.Dispatcher
	Logger     *slog.Logger
}

// SetupRoutes registers all API and static routes.
func SetupRoutes(router chi.Router, deps Deps) {
	uploads.SetupRoutes(router, deps.Objects, deps.Store, deps.Config.Thumbnails, deps.Logger)
	images.SetupRoutes(router, deps.Objects, deps.Store, deps.Logger)
	status.SetupRoutes(router, deps.Store, deps.Logger)
	results.SetupRoutes(router, deps.Store, deps.Config.Webhook.Secret, deps.Notifier, deps.Dispatcher, deps.Logger)
	system.SetupRoutes(router, deps.Objects, deps.Store, deps.Config, deps.Logger)
	events.SetupRoutes(router, deps.Notifier, deps.Logger)

	// Browsers request this even with no <link> tag.
	router.Get("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	setupStatic(router, deps.Config.HTTP.StaticDir)
}

// setupStatic serves the frontend from dir. Unknown paths fall back to
// index.html so client-side routing works.
func setupStatic(router chi.Router, dir string) {
	if dir == "" {
		return
	}

	fileServer := http.FileServer(http.Dir(dir))

	router.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		requested := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(requested); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	})
}
