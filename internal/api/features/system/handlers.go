package system

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/glasswing-labs/imagedepot/internal/api/features/common"
	"github.com/glasswing-labs/imagedepot/internal/config"
	"github.com/glasswing-labs/imagedepot/internal/store"
)

// Handlers provides HTTP handlers for the system feature.
type Handlers struct {
	objects ObjectStore
	store   store.Store
	cfg     *config.Config
	logger  *slog.Logger
}

// NewHandlers creates a new Handlers instance. st may be nil when the
// service runs without a database.
func NewHandlers(objects ObjectStore, st store.Store, cfg *config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		objects: objects,
		store:   st,
		cfg:     cfg,
		logger:  logger,
	}
}

// checkComponents probes each dependency and returns the component map
// with the rolled-up overall status.
func (h *Handlers) checkComponents(r *http.Request) (string, map[string]Component) {
	overall := "healthy"
	components := make(map[string]Component, 3)

	if err := h.objects.HeadBucket(r.Context()); err != nil {
		h.logger.Error("object store health check failed", "error", err)
		components["s3"] = Component{
			Status:  "unhealthy",
			Bucket:  h.objects.Bucket(),
			Message: "S3 Error: " + err.Error(),
		}
		overall = "degraded"
	} else {
		components["s3"] = Component{
			Status:  "healthy",
			Bucket:  h.objects.Bucket(),
			Message: "S3 bucket accessible",
		}
	}

	switch {
	case h.store == nil:
		components["database"] = Component{
			Status:  "unavailable",
			Message: "Database not configured",
		}
	default:
		if err := h.store.Ping(r.Context()); err != nil {
			h.logger.Error("database health check failed", "error", err)
			components["database"] = Component{
				Status:  "unhealthy",
				Message: "Database Error: " + err.Error(),
			}
			overall = "degraded"
		} else {
			components["database"] = Component{
				Status:  "healthy",
				Message: "Database connection successful",
			}
		}
	}

	// Analysis runs out of band; nothing to probe from here.
	components["rekognition"] = Component{
		Status:  "lambda_managed",
		Message: "Image processing handled by Lambda function",
	}

	return overall, components
}

// Health reports component health with an overall rollup.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	overall, components := h.checkComponents(r)

	common.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:         overall,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		ProcessingMode: "lambda_async",
		Components:     components,
	})
}

// Infrastructure reports the same component health shaped for the
// frontend's infrastructure panel.
func (h *Handlers) Infrastructure(w http.ResponseWriter, r *http.Request) {
	overall, components := h.checkComponents(r)

	common.WriteJSON(w, http.StatusOK, InfrastructureResponse{
		Overall:        overall,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		ProcessingMode: "lambda_async",
		Services: map[string]Component{
			"s3":       components["s3"],
			"database": components["database"],
			"lambda":   components["rekognition"],
		},
	})
}

// Config returns the public application configuration.
func (h *Handlers) Config(w http.ResponseWriter, _ *http.Request) {
	databaseEnabled := h.store != nil

	common.WriteJSON(w, http.StatusOK, ConfigResponse{
		Bucket:          h.cfg.S3.Bucket,
		Region:          h.cfg.S3.Region,
		DatabaseEnabled: databaseEnabled,
		ProcessingMode:  "lambda_async",
		Features: map[string]bool{
			"async_processing":   true,
			"lambda_rekognition": true,
			"database_storage":   databaseEnabled,
			"real_time_status":   databaseEnabled,
		},
	})
}
