package models

import (
	"errors"
	"fmt"
	"strings"
)

// Format is a supported output encoding.
type Format string

const (
	FormatWebP Format = "webp"
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
	FormatGIF  Format = "gif"
)

// OutputFormats lists the output formats in the order the upload form offers them.
var OutputFormats = []Format{FormatWebP, FormatJPEG, FormatPNG, FormatBMP, FormatTIFF, FormatGIF}

// InputExtensions are the accepted upload extensions, lower case with the leading dot.
// raw is accepted as input but never offered as output.
var InputExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff", ".gif", ".raw"}

var ErrUnsupportedFormat = errors.New("unsupported output format")

// ParseFormat accepts only the lower-case output format names.
func ParseFormat(value string) (Format, error) {
	for _, f := range OutputFormats {
		if string(f) == value {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, value)
}

// Extension is the archive entry extension, without the dot.
func (f Format) Extension() string {
	return string(f)
}

func (f Format) ContentType() string {
	return "image/" + string(f)
}

// Label is the human-readable name used in the upload form.
func (f Format) Label() string {
	if f == FormatWebP {
		return "WebP"
	}
	return strings.ToUpper(string(f))
}
