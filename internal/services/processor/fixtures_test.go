package processor

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

// gradient builds a small image with partially transparent pixels so the
// alpha-dropping normalization is observable.
func gradient(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(1, width-1)),
				G: uint8(y * 255 / max(1, height-1)),
				B: 128,
				A: uint8(128 + (x+y)%128),
			})
		}
	}
	return img
}

func encodeFixture(t *testing.T, img image.Image, ext string) []byte {
	t.Helper()

	buf := &bytes.Buffer{}
	var err error
	switch ext {
	case "webp":
		err = nativewebp.Encode(buf, img, &nativewebp.Options{})
	default:
		var format imaging.Format
		format, err = imaging.FormatFromExtension(ext)
		require.NoError(t, err)
		err = imaging.Encode(buf, img, format)
	}
	require.NoError(t, err)
	return buf.Bytes()
}
