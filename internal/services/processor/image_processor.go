package processor

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/image-converter/internal/models"
)

// DefaultMaxPixels caps decoded images at 64 megapixels, about 256MB as NRGBA.
const DefaultMaxPixels = 64 << 20

// Converter turns one uploaded file into the target format. It holds no
// mutable state and is safe for concurrent use.
type Converter struct {
	codec     Codec
	maxPixels int64
}

type ConverterOptions struct {
	// MaxPixels rejects images whose header declares more pixels than this.
	MaxPixels int64
}

func NewConverter(codec Codec, opts ...ConverterOptions) *Converter {
	if codec == nil {
		codec = NewCodec()
	}
	maxPixels := int64(DefaultMaxPixels)
	if len(opts) > 0 && opts[0].MaxPixels > 0 {
		maxPixels = opts[0].MaxPixels
	}
	return &Converter{codec: codec, maxPixels: maxPixels}
}

// Convert decodes the file, drops alpha and palette information, and encodes
// the result. The returned name is the file's original name.
func (c *Converter) Convert(file models.UploadedFile, format models.Format) ([]byte, string, error) {
	cfg, _, err := c.codec.DecodeConfig(file.Content)
	if err != nil {
		return nil, file.Name, &DecodeError{File: file.Name, Err: err}
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > c.maxPixels {
		return nil, file.Name, &DecodeError{
			File: file.Name,
			Err:  fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, c.maxPixels),
		}
	}

	img, _, err := c.codec.Decode(file.Content)
	if err != nil {
		return nil, file.Name, &DecodeError{File: file.Name, Err: err}
	}

	buffer := &bytes.Buffer{}
	if err := c.codec.Encode(buffer, ToTrueColor(img), format); err != nil {
		return nil, file.Name, &EncodeError{File: file.Name, Format: format, Err: err}
	}

	return buffer.Bytes(), file.Name, nil
}

// ToTrueColor copies img into an opaque 8-bit buffer. Colour channels are
// kept as stored and alpha is forced to fully opaque, so transparency is lost.
func ToTrueColor(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}
