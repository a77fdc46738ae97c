package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/glasswing-labs/imagedepot/internal/api"
	"github.com/glasswing-labs/imagedepot/internal/blob"
	"github.com/glasswing-labs/imagedepot/internal/config"
	"github.com/glasswing-labs/imagedepot/internal/store"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the imagedepot API server",
		Long: `Start the HTTP server.

The server requires an S3 bucket. A MySQL database is optional: without
one, uploads still reach S3 and listings fall back to the bucket
contents, but processing status and detection results are unavailable.`,
		Example: `  # Serve with config from imagedepot.yaml
  imagedepot serve

  # Override the port and bucket
  imagedepot serve --port 8080 --bucket my-images`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	cfg := GetConfig(cmd.Context())
	logger := GetLogger(cmd.Context())

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	objects, err := newObjectStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create object store client: %w", err)
	}

	var st store.Store
	if cfg.DatabaseEnabled() {
		mysqlStore := store.NewMySQLStore()
		if err := mysqlStore.Open(cfg.Database.DSN()); err != nil {
			// Degrade instead of refusing to start: uploads still work.
			logger.Error("database unavailable, serving in degraded mode", "error", err)
		} else {
			defer func() { _ = mysqlStore.Close() }()

			if err := mysqlStore.Migrate(); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			st = mysqlStore
			logger.Info("database connected", "host", cfg.Database.Host, "name", cfg.Database.Name)
		}
	} else {
		logger.Warn("no database configured, processing status will be unavailable")
	}

	server := api.NewServer(cfg, objects, st, logger)
	return server.Serve(ctx)
}

// newObjectStore builds the blob client from configuration.
func newObjectStore(ctx context.Context, cfg *config.Config) (*blob.Client, error) {
	opts := []blob.Option{
		blob.WithRegion(cfg.S3.Region),
		blob.WithPresignTTL(cfg.S3.PresignTTL),
	}
	if cfg.S3.Endpoint != "" {
		opts = append(opts, blob.WithEndpoint(cfg.S3.Endpoint))
	}
	if cfg.S3.ForcePathStyle {
		opts = append(opts, blob.WithForcePathStyle(true))
	}
	return blob.New(ctx, cfg.S3.Bucket, opts...)
}
