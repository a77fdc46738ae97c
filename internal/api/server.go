// Package api runs the imagedepot HTTP server.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/glasswing-labs/imagedepot/internal/api/notifier"
	"github.com/glasswing-labs/imagedepot/internal/api/router"
	"github.com/glasswing-labs/imagedepot/internal/blob"
	"github.com/glasswing-labs/imagedepot/internal/config"
	"github.com/glasswing-labs/imagedepot/internal/store"
	"github.com/glasswing-labs/imagedepot/internal/webhook"
)

// Server is the main API server.
type Server struct {
	cfg      *config.Config
	objects  *blob.Client
	store    store.Store
	logger   *slog.Logger
	notifier *notifier.Notifier
}

// NewServer creates a new API server instance. st may be nil when the
// service runs without a database.
func NewServer(cfg *config.Config, objects *blob.Client, st store.Store, logger *slog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		objects:  objects,
		store:    st,
		logger:   logger,
		notifier: notifier.New(),
	}
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Serve starts the API server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.HTTP.Port)
	s.logger.Info("starting server",
		"addr", addr,
		"bucket", s.cfg.S3.Bucket,
		"database", s.store != nil)

	eg, egctx := errgroup.WithContext(ctx)

	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	origins := s.cfg.HTTP.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", webhook.SignatureHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	dispatcher := webhook.New(s.cfg.Webhook.URL, s.cfg.Webhook.Secret, s.cfg.Webhook.MaxAttempts, s.logger)

	router.SetupRoutes(r, router.Deps{
		Config:     s.cfg,
		Objects:    s.objects,
		Store:      s.store,
		Notifier:   s.notifier,
		Dispatcher: dispatcher,
		Logger:     s.logger,
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
