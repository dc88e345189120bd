package vips

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/flatfly/flatfly-api/internal/imaging"
	"github.com/h2non/bimg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalizeRejectsNonImages(t *testing.T) {
	_, err := New().Normalize([]byte("definitely not an image"), imaging.AvatarMaxSide)
	assert.ErrorIs(t, err, imaging.ErrNotImage)

	_, err = New().Normalize(nil, imaging.AvatarMaxSide)
	assert.ErrorIs(t, err, imaging.ErrNotImage)
}

func TestNormalizeBoundsLongestSide(t *testing.T) {
	out, err := New().Normalize(encodePNG(t, 800, 400), imaging.AvatarMaxSide)
	require.NoError(t, err)
	assert.Equal(t, "png", out.Ext)
	assert.Equal(t, "image/png", out.MimeType)

	size, err := bimg.NewImage(out.Data).Size()
	require.NoError(t, err)
	assert.Equal(t, imaging.AvatarMaxSide, size.Width)
	assert.Equal(t, 256, size.Height)
}

func TestNormalizeKeepsSmallImages(t *testing.T) {
	out, err := New().Normalize(encodePNG(t, 100, 60), imaging.ListingMaxSide)
	require.NoError(t, err)

	size, err := bimg.NewImage(out.Data).Size()
	require.NoError(t, err)
	assert.Equal(t, 100, size.Width)
	assert.Equal(t, 60, size.Height)
}
