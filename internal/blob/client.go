// Package blob provides the S3-backed object store for uploaded images.
//
// The Client wraps the AWS SDK with the small operation surface the
// service needs: uploads with metadata, presigned download URLs, prefix
// listings, and bucket health checks. The underlying SDK client is hidden
// behind interfaces so tests can run against mocks.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"

	"github.com/glasswing-labs/imagedepot/internal/blob/s3api"
)

// DefaultContentType is used when content type detection fails.
const DefaultContentType = "application/octet-stream"

// Object represents a stored object with its basic metadata.
type Object struct {
	// Key is the S3 object key (path)
	Key string

	// Size is the object size in bytes
	Size int64

	// LastModified is when the object was last modified
	LastModified time.Time
}

// UploadInput holds per-upload parameters.
type UploadInput struct {
	// ContentType of the payload. Detected from the payload and key
	// extension when empty.
	ContentType string

	// Metadata is attached to the object as S3 user metadata.
	Metadata map[string]string
}

// Client is the S3 object store client.
type Client struct {
	api        s3api.S3API
	presigner  s3api.PresignAPI
	bucket     string
	presignTTL time.Duration
}

// New creates a new object store client for the given bucket.
// Credentials come from the default AWS credential chain unless a custom
// configuration is supplied via WithAWSConfig.
func New(ctx context.Context, bucket string, opts ...Option) (*Client, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name cannot be empty")
	}

	cfg := &clientConfig{
		presignTTL: time.Hour,
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var awsCfg aws.Config
	var err error
	if cfg.awsConfig != nil {
		awsCfg = *cfg.awsConfig
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load aws config: %w", err)
		}
	}

	if cfg.region != "" {
		awsCfg.Region = cfg.region
	} else if awsCfg.Region == "" {
		awsCfg.Region = "us-east-1"
	}
	if cfg.maxRetries > 0 {
		awsCfg.RetryMaxAttempts = cfg.maxRetries
	}

	var s3Opts []func(*s3.Options)
	if cfg.forcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	if cfg.endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.endpoint)
		})
	}
	if cfg.httpClient != nil {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = cfg.httpClient
		})
	}

	s3Client := s3.NewFromConfig(awsCfg, s3Opts...)

	return &Client{
		api:        s3Client,
		presigner:  s3.NewPresignClient(s3Client),
		bucket:     bucket,
		presignTTL: cfg.presignTTL,
	}, nil
}

// NewWithAPI creates a client with custom API implementations.
// This is primarily used for testing with mocked clients.
func NewWithAPI(api s3api.S3API, presigner s3api.PresignAPI, bucket string, presignTTL time.Duration) *Client {
	return &Client{
		api:        api,
		presigner:  presigner,
		bucket:     bucket,
		presignTTL: presignTTL,
	}
}

// Bucket returns the bucket the client operates on.
func (c *Client) Bucket() string {
	return c.bucket
}

// Upload stores data under key. Content type is detected from the payload
// when not supplied in input.
func (c *Client) Upload(ctx context.Context, key string, data []byte, input UploadInput) error {
	if key == "" {
		return fmt.Errorf("object key cannot be empty")
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = detectContentType(key, data)
	}

	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		Metadata:      input.Metadata,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// PresignGet returns a presigned download URL for key, valid for the
// client's presign TTL.
func (c *Client) PresignGet(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("object key cannot be empty")
	}

	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignOptions) {
		o.Expires = c.presignTTL
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return req.URL, nil
}

// List returns all objects under prefix.
func (c *Client) List(ctx context.Context, prefix string) ([]Object, error) {
	var objects []Object
	var continuationToken *string

	for {
		out, err := c.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(c.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: continuationToken,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
		}

		for _, obj := range out.Contents {
			objects = append(objects, Object{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		continuationToken = out.NextContinuationToken
	}

	return objects, nil
}

// Delete removes an object. Deleting a missing key is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Exists reports whether an object exists.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to head %s: %w", key, err)
	}
	return true, nil
}

// HeadBucket verifies that the bucket exists and is accessible.
func (c *Client) HeadBucket(ctx context.Context) error {
	_, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", c.bucket, err)
	}
	return nil
}

// detectContentType determines the content type from the payload,
// falling back to the key extension.
func detectContentType(key string, data []byte) string {
	if len(data) > 0 {
		if mtype := mimetype.Detect(data); mtype != nil && mtype.String() != DefaultContentType {
			return mtype.String()
		}
	}
	if ext := filepath.Ext(key); ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}
	if len(data) > 0 {
		return http.DetectContentType(data)
	}
	return DefaultContentType
}
