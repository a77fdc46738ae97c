// Package webhook notifies downstream consumers when recognition results
// land for an image. Deliveries are signed with HMAC-SHA256 and retried
// with exponential backoff.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body.
const SignatureHeader = "X-Imagedepot-Signature"

// Event is the payload delivered to the configured endpoint.
type Event struct {
	ImageID     string     `json:"imageId"`
	S3Key       string     `json:"s3Key"`
	Status      string     `json:"status"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
}

// Dispatcher delivers events to a single configured endpoint.
// A Dispatcher with an empty URL is valid and drops every event.
type Dispatcher struct {
	url         string
	secret      []byte
	maxAttempts int
	client      *http.Client
	logger      *slog.Logger
}

// New creates a dispatcher for the given endpoint. url may be empty, in
// which case Dispatch is a no-op.
func New(url, secret string, maxAttempts int, logger *slog.Logger) *Dispatcher {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Dispatcher{
		url:         url,
		secret:      []byte(secret),
		maxAttempts: maxAttempts,
		client:      &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
}

// SetHTTPClient overrides the HTTP client, used by tests.
func (d *Dispatcher) SetHTTPClient(c *http.Client) {
	d.client = c
}

// Enabled reports whether an endpoint is configured.
func (d *Dispatcher) Enabled() bool {
	return d.url != ""
}

// Dispatch delivers the event, retrying transient failures with
// exponential backoff up to the configured attempt limit. A nil error
// means a 2xx response was received (or no endpoint is configured).
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) error {
	if d.url == "" {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}
	signature := Sign(d.secret, body)

	backoff := retry.WithMaxRetries(uint64(d.maxAttempts-1), retry.NewExponential(500*time.Millisecond))

	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := d.deliver(ctx, body, signature); err != nil {
			d.logger.Warn("webhook delivery failed",
				"url", d.url,
				"imageId", event.ImageID,
				"attempt", attempt,
				"error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("webhook delivery to %s failed after %d attempts: %w", d.url, attempt, err)
	}

	d.logger.Info("webhook delivered", "url", d.url, "imageId", event.ImageID, "attempts", attempt)
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, body []byte, signature string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, signature)

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("endpoint returned %s", resp.Status)
	}
	return nil
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature is a valid hex HMAC-SHA256 of body
// under secret. Comparison is constant time.
func Verify(secret, body []byte, signature string) bool {
	expected := Sign(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
