// Package imaging validates uploaded image payloads and produces JPEG
// thumbnails for the browse views.
package imaging

import (
	"bytes"
	"fmt"
	"image"

	// register decoders for the accepted formats
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// Info describes a decoded image payload.
type Info struct {
	// Format is the detected encoding: "jpeg", "png" or "gif".
	Format string

	// Width and Height are the pixel dimensions.
	Width  int
	Height int
}

// acceptedFormats are the encodings the service stores.
var acceptedFormats = map[string]bool{
	"jpeg": true,
	"png":  true,
	"gif":  true,
}

// Accepted reports whether format is one the service stores.
func Accepted(format string) bool {
	return acceptedFormats[format]
}

// Sniff decodes the payload header and returns the image format and
// dimensions. It rejects payloads that are not JPEG, PNG or GIF.
func Sniff(data []byte) (*Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("not a recognized image: %w", err)
	}
	if !acceptedFormats[format] {
		return nil, fmt.Errorf("unsupported image format: %s", format)
	}
	return &Info{
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

// Thumbnail scales the payload down so its longest edge is at most
// maxEdge pixels and re-encodes it as JPEG with the given quality.
// Images already within bounds are still re-encoded so thumbnails have
// a uniform format.
func Thumbnail(data []byte, maxEdge, quality int) ([]byte, error) {
	if maxEdge <= 0 {
		return nil, fmt.Errorf("thumbnail edge must be positive, got %d", maxEdge)
	}
	if quality <= 0 || quality > 100 {
		return nil, fmt.Errorf("jpeg quality must be in (0,100], got %d", quality)
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	if bounds.Dx() > maxEdge || bounds.Dy() > maxEdge {
		src = imaging.Fit(src, maxEdge, maxEdge, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, src, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
