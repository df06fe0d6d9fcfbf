package processor

import (
	"bytes"
	"fmt"
	"image"
	"io"

	// Decoders beyond the standard library set.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"
	"github.com/phambaophuc/image-converter/internal/models"
)

// Codec is the decode/encode capability the converter is built on.
type Codec interface {
	DecodeConfig(data []byte) (image.Config, string, error)
	Decode(data []byte) (image.Image, string, error)
	Encode(w io.Writer, img image.Image, format models.Format) error
}

type imageCodec struct{}

// NewCodec decodes every format registered with the image package (jpeg,
// png, gif, bmp, tiff, webp) and encodes the six output formats.
func NewCodec() Codec {
	return imageCodec{}
}

func (imageCodec) DecodeConfig(data []byte) (image.Config, string, error) {
	return image.DecodeConfig(bytes.NewReader(data))
}

func (imageCodec) Decode(data []byte) (image.Image, string, error) {
	return image.Decode(bytes.NewReader(data))
}

func (imageCodec) Encode(w io.Writer, img image.Image, format models.Format) error {
	switch format {
	case models.FormatWebP:
		return nativewebp.Encode(w, img, &nativewebp.Options{})
	case models.FormatJPEG:
		return imaging.Encode(w, img, imaging.JPEG)
	case models.FormatPNG:
		return imaging.Encode(w, img, imaging.PNG)
	case models.FormatBMP:
		return imaging.Encode(w, img, imaging.BMP)
	case models.FormatTIFF:
		return imaging.Encode(w, img, imaging.TIFF)
	case models.FormatGIF:
		return imaging.Encode(w, img, imaging.GIF)
	default:
		return fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, format)
	}
}
