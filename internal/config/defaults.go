package config

import "time"

// Default configuration values.
const (
	DefaultPort         = 5000
	DefaultRegion       = "us-west-2"
	DefaultPresignTTL   = time.Hour
	DefaultDatabasePort = 3306
	DefaultWebhookTries = 5
	DefaultThumbMaxEdge = 512
	DefaultThumbQuality = 85
)

// ApplyDefaults fills zero values with defaults.
func ApplyDefaults(c *Config) {
	if c == nil {
		return
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = DefaultPort
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"*"}
	}
	if c.S3.Region == "" {
		c.S3.Region = DefaultRegion
	}
	if c.S3.PresignTTL == 0 {
		c.S3.PresignTTL = DefaultPresignTTL
	}
	if c.Database != nil && c.Database.Port == 0 {
		c.Database.Port = DefaultDatabasePort
	}
	if c.Webhook.MaxAttempts == 0 {
		c.Webhook.MaxAttempts = DefaultWebhookTries
	}
	if c.Thumbnails.MaxEdge == 0 {
		c.Thumbnails.MaxEdge = DefaultThumbMaxEdge
	}
	if c.Thumbnails.Quality == 0 {
		c.Thumbnails.Quality = DefaultThumbQuality
	}
}
