// Package config provides shared configuration types for imagedepot.
// Configuration is loaded from an optional YAML file, environment
// variables, and CLI flags; see loader.go for precedence rules.
package config

import (
	"fmt"
	"time"
)

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `koanf:"port"`

	// AllowedOrigins is the CORS allow-list. A single "*" allows any origin.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// StaticDir is the directory the frontend is served from.
	// Empty disables static file serving.
	StaticDir string `koanf:"static_dir"`
}

// S3Config holds object storage configuration.
type S3Config struct {
	Bucket string `koanf:"bucket"`
	Region string `koanf:"region"`

	// Endpoint overrides the S3 endpoint (localstack, minio).
	// ForcePathStyle is usually required alongside it.
	Endpoint       string `koanf:"endpoint"`
	ForcePathStyle bool   `koanf:"force_path_style"`

	// PresignTTL is the lifetime of generated download URLs.
	PresignTTL time.Duration `koanf:"presign_ttl"`
}

// DatabaseConfig holds MySQL connection configuration.
// A nil DatabaseConfig means the service runs without a database:
// uploads still reach S3 and listings fall back to the bucket contents.
type DatabaseConfig struct {
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	Name     string            `koanf:"name"`
	User     string            `koanf:"user"`
	Password string            `koanf:"password"`
	Params   map[string]string `koanf:"params"`
}

// DSN returns the go-sql-driver DSN for the configuration.
func (d *DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		d.User, d.Password, d.Host, d.Port, d.Name)
	for k, v := range d.Params {
		dsn += fmt.Sprintf("&%s=%s", k, v)
	}
	return dsn
}

// WebhookConfig holds outbound completion-callback configuration.
// An empty URL disables dispatch. Secret signs both outbound payloads
// and inbound results posted by the analysis worker.
type WebhookConfig struct {
	URL         string `koanf:"url"`
	Secret      string `koanf:"secret"`
	MaxAttempts int    `koanf:"max_attempts"`
}

// ThumbnailConfig controls thumbnail generation on upload.
type ThumbnailConfig struct {
	Enabled bool `koanf:"enabled"`
	MaxEdge int  `koanf:"max_edge"`
	Quality int  `koanf:"quality"`
}

// Config is the root configuration for the imagedepot server.
type Config struct {
	HTTP       HTTPConfig      `koanf:"http"`
	S3         S3Config        `koanf:"s3"`
	Database   *DatabaseConfig `koanf:"database"`
	Webhook    WebhookConfig   `koanf:"webhook"`
	Thumbnails ThumbnailConfig `koanf:"thumbnails"`
	Verbose    bool            `koanf:"verbose"`
}

// DatabaseEnabled reports whether a database is configured.
func (c *Config) DatabaseEnabled() bool {
	return c.Database != nil && c.Database.Host != ""
}

// Validate checks the configuration for values the server cannot start with.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port: %d", c.HTTP.Port)
	}
	if c.S3.Bucket == "" {
		return fmt.Errorf("s3 bucket is required")
	}
	if c.S3.PresignTTL <= 0 {
		return fmt.Errorf("presign ttl must be positive, got %s", c.S3.PresignTTL)
	}
	if c.Database != nil && c.Database.Host != "" {
		if c.Database.Name == "" {
			return fmt.Errorf("database name is required when a database host is set")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required when a database host is set")
		}
	}
	if c.Webhook.URL != "" && c.Webhook.Secret == "" {
		return fmt.Errorf("webhook secret is required when a webhook url is set")
	}
	return nil
}
