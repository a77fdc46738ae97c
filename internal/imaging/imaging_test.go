package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 64, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func makeGIF(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, w, h), []color.Color{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		wantFormat string
		wantW      int
		wantH      int
		wantErr    bool
	}{
		{name: "jpeg", data: nil, wantFormat: "jpeg", wantW: 40, wantH: 30},
		{name: "png", data: nil, wantFormat: "png", wantW: 16, wantH: 16},
		{name: "gif", data: nil, wantFormat: "gif", wantW: 8, wantH: 8},
		{name: "garbage", data: []byte("definitely not an image"), wantErr: true},
		{name: "empty", data: []byte{}, wantErr: true},
	}

	tests[0].data = makeJPEG(t, 40, 30)
	tests[1].data = makePNG(t, 16, 16)
	tests[2].data = makeGIF(t, 8, 8)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := Sniff(tt.data)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFormat, info.Format)
			assert.Equal(t, tt.wantW, info.Width)
			assert.Equal(t, tt.wantH, info.Height)
		})
	}
}

func TestAccepted(t *testing.T) {
	assert.True(t, Accepted("jpeg"))
	assert.True(t, Accepted("png"))
	assert.True(t, Accepted("gif"))
	assert.False(t, Accepted("bmp"))
	assert.False(t, Accepted(""))
}

func TestThumbnailScalesDown(t *testing.T) {
	src := makeJPEG(t, 800, 600)

	thumb, err := Thumbnail(src, 128, 85)
	require.NoError(t, err)

	info, err := Sniff(thumb)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", info.Format)
	assert.Equal(t, 128, info.Width)
	assert.Equal(t, 96, info.Height)
}

func TestThumbnailKeepsSmallImages(t *testing.T) {
	src := makePNG(t, 50, 40)

	thumb, err := Thumbnail(src, 128, 85)
	require.NoError(t, err)

	info, err := Sniff(thumb)
	require.NoError(t, err)
	// small images are re-encoded but not upscaled
	assert.Equal(t, "jpeg", info.Format)
	assert.Equal(t, 50, info.Width)
	assert.Equal(t, 40, info.Height)
}

func TestThumbnailPortrait(t *testing.T) {
	src := makeJPEG(t, 300, 900)

	thumb, err := Thumbnail(src, 90, 85)
	require.NoError(t, err)

	info, err := Sniff(thumb)
	require.NoError(t, err)
	assert.Equal(t, 30, info.Width)
	assert.Equal(t, 90, info.Height)
}

func TestThumbnailRejectsBadInput(t *testing.T) {
	src := makeJPEG(t, 10, 10)

	_, err := Thumbnail([]byte("junk"), 128, 85)
	assert.Error(t, err)

	_, err = Thumbnail(src, 0, 85)
	assert.Error(t, err)

	_, err = Thumbnail(src, 128, 101)
	assert.Error(t, err)
}
