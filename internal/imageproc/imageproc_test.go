package imageproc

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeJPEG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestDerive(t *testing.T) {
	t.Run("large image is bounded to 1024", func(t *testing.T) {
		d, err := Derive(pngBytes(t, 2048, 1536))
		require.NoError(t, err)

		full := decodeJPEG(t, d.Full)
		assert.Equal(t, 1024, full.Bounds().Dx())
		assert.LessOrEqual(t, full.Bounds().Dy(), 1024)
	})

	t.Run("small image is not upscaled", func(t *testing.T) {
		d, err := Derive(pngBytes(t, 300, 240))
		require.NoError(t, err)

		full := decodeJPEG(t, d.Full)
		assert.Equal(t, 300, full.Bounds().Dx())
		assert.Equal(t, 240, full.Bounds().Dy())
	})

	t.Run("thumbnail is exactly 200x200", func(t *testing.T) {
		for _, dims := range [][2]int{{2048, 1536}, {640, 480}, {480, 640}} {
			d, err := Derive(pngBytes(t, dims[0], dims[1]))
			require.NoError(t, err)

			thumb := decodeJPEG(t, d.Thumb)
			assert.Equal(t, ThumbSize, thumb.Bounds().Dx())
			assert.Equal(t, ThumbSize, thumb.Bounds().Dy())
		}
	})

	t.Run("garbage input fails", func(t *testing.T) {
		d, err := Derive([]byte("not an image"))
		assert.Error(t, err)
		assert.Nil(t, d)
	})
}
