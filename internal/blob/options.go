package blob

import (
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// clientConfig holds the resolved client configuration.
type clientConfig struct {
	region         string
	endpoint       string
	forcePathStyle bool
	presignTTL     time.Duration
	maxRetries     int
	httpClient     *http.Client
	awsConfig      *aws.Config
}

// Option configures the Client.
type Option func(*clientConfig)

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(c *clientConfig) {
		c.region = region
	}
}

// WithEndpoint sets a custom S3 endpoint and enables path-style addressing.
// Used with localstack or minio in development and tests.
func WithEndpoint(endpoint string) Option {
	return func(c *clientConfig) {
		c.endpoint = endpoint
		c.forcePathStyle = true
	}
}

// WithForcePathStyle forces path-style bucket addressing.
func WithForcePathStyle(force bool) Option {
	return func(c *clientConfig) {
		c.forcePathStyle = force
	}
}

// WithPresignTTL sets the lifetime of presigned URLs.
func WithPresignTTL(ttl time.Duration) Option {
	return func(c *clientConfig) {
		c.presignTTL = ttl
	}
}

// WithMaxRetries sets the SDK retry budget.
func WithMaxRetries(n int) Option {
	return func(c *clientConfig) {
		c.maxRetries = n
	}
}

// WithHTTPClient sets a custom HTTP client for SDK calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = hc
	}
}

// WithAWSConfig uses a pre-built AWS configuration instead of the
// default credential chain.
func WithAWSConfig(cfg aws.Config) Option {
	return func(c *clientConfig) {
		c.awsConfig = &cfg
	}
}
