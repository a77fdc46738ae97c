// Package system exposes health, infrastructure and configuration endpoints.
package system

import "context"

// ObjectStore is the object storage surface the system feature uses.
type ObjectStore interface {
	HeadBucket(ctx context.Context) error
	Bucket() string
}

// Component is one component's health in the health response.
type Component struct {
	Status  string `json:"status"`
	Bucket  string `json:"bucket,omitempty"`
	Message string `json:"message"`
}

// HealthResponse is the health endpoint response.
type HealthResponse struct {
	Status         string               `json:"status"`
	Timestamp      string               `json:"timestamp"`
	ProcessingMode string               `json:"processing_mode"`
	Components     map[string]Component `json:"components"`
}

// InfrastructureResponse is the infrastructure status response.
type InfrastructureResponse struct {
	Overall        string               `json:"overall"`
	Timestamp      string               `json:"timestamp"`
	ProcessingMode string               `json:"processing_mode"`
	Services       map[string]Component `json:"services"`
}

// ConfigResponse is the public configuration response.
type ConfigResponse struct {
	Bucket          string          `json:"bucket"`
	Region          string          `json:"region"`
	DatabaseEnabled bool            `json:"database_enabled"`
	ProcessingMode  string          `json:"processing_mode"`
	Features        map[string]bool `json:"features"`
}
