package processor

import (
	"bytes"
	"errors"
	"image"
	"io"
	"testing"

	"github.com/phambaophuc/image-converter/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverter_AllOutputFormats(t *testing.T) {
	c := NewConverter(nil)
	input := models.UploadedFile{Name: "photo.png", Content: encodeFixture(t, gradient(24, 16), "png")}

	for _, format := range models.OutputFormats {
		t.Run(string(format), func(t *testing.T) {
			data, name, err := c.Convert(input, format)
			require.NoError(t, err)
			assert.Equal(t, "photo.png", name)

			img, decoded, err := image.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, string(format), decoded)
			assert.Equal(t, 24, img.Bounds().Dx())
			assert.Equal(t, 16, img.Bounds().Dy())
		})
	}
}

func TestConverter_AcceptsEveryDecodableInput(t *testing.T) {
	c := NewConverter(nil)
	src := gradient(8, 8)

	for _, ext := range []string{"jpg", "png", "gif", "bmp", "tiff", "webp"} {
		t.Run(ext, func(t *testing.T) {
			file := models.UploadedFile{Name: "in." + ext, Content: encodeFixture(t, src, ext)}
			_, _, err := c.Convert(file, models.FormatPNG)
			assert.NoError(t, err)
		})
	}
}

func TestConverter_DropsAlpha(t *testing.T) {
	c := NewConverter(nil)
	input := models.UploadedFile{Name: "alpha.png", Content: encodeFixture(t, gradient(4, 4), "png")}

	data, _, err := c.Convert(input, models.FormatPNG)
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			assert.Equal(t, uint32(0xffff), a)
		}
	}
}

func TestConverter_Deterministic(t *testing.T) {
	c := NewConverter(nil)
	input := models.UploadedFile{Name: "photo.gif", Content: encodeFixture(t, gradient(20, 10), "gif")}

	for _, format := range models.OutputFormats {
		first, _, err := c.Convert(input, format)
		require.NoError(t, err)
		second, _, err := c.Convert(input, format)
		require.NoError(t, err)
		assert.Equal(t, first, second, string(format))
	}
}

func TestConverter_LosslessRoundTripIsStable(t *testing.T) {
	c := NewConverter(nil)
	input := models.UploadedFile{Name: "a.png", Content: encodeFixture(t, gradient(10, 10), "png")}

	for _, format := range []models.Format{models.FormatPNG, models.FormatBMP, models.FormatTIFF} {
		once, _, err := c.Convert(input, format)
		require.NoError(t, err)
		twice, _, err := c.Convert(models.UploadedFile{Name: "b", Content: once}, format)
		require.NoError(t, err)
		assert.Equal(t, once, twice, string(format))
	}
}

func TestConverter_DecodeError(t *testing.T) {
	c := NewConverter(nil)

	_, name, err := c.Convert(models.UploadedFile{Name: "broken.jpg", Content: []byte("not an image")}, models.FormatPNG)

	assert.Equal(t, "broken.jpg", name)
	assert.ErrorIs(t, err, ErrDecode)
	assert.ErrorIs(t, err, image.ErrFormat)
	assert.Equal(t, "broken.jpg", FileName(err))
}

func TestConverter_EncodeErrorOnOversizedGIF(t *testing.T) {
	c := NewConverter(nil)
	wide := image.NewNRGBA(image.Rect(0, 0, 1<<16, 1))
	input := models.UploadedFile{Name: "wide.png", Content: encodeFixture(t, wide, "png")}

	_, _, err := c.Convert(input, models.FormatGIF)

	var encodeErr *EncodeError
	require.ErrorAs(t, err, &encodeErr)
	assert.Equal(t, "wide.png", encodeErr.File)
	assert.Equal(t, models.FormatGIF, encodeErr.Format)
	assert.ErrorIs(t, err, ErrEncode)
}

func TestConverter_EncodeErrorOnUnknownFormat(t *testing.T) {
	c := NewConverter(nil)
	input := models.UploadedFile{Name: "a.png", Content: encodeFixture(t, gradient(2, 2), "png")}

	_, _, err := c.Convert(input, models.Format("raw"))

	assert.ErrorIs(t, err, ErrEncode)
	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)
}

type stubCodec struct {
	decodeErr error
	config    image.Config
	decodes   *int
}

func (s stubCodec) DecodeConfig([]byte) (image.Config, string, error) {
	if s.config.Width == 0 {
		return image.Config{Width: 1, Height: 1}, "stub", nil
	}
	return s.config, "stub", nil
}

func (s stubCodec) Decode([]byte) (image.Image, string, error) {
	if s.decodes != nil {
		*s.decodes++
	}
	if s.decodeErr != nil {
		return nil, "", s.decodeErr
	}
	return gradient(1, 1), "stub", nil
}

func (s stubCodec) Encode(w io.Writer, _ image.Image, _ models.Format) error {
	_, err := w.Write([]byte("ok"))
	return err
}

func TestConverter_UsesInjectedCodec(t *testing.T) {
	data, _, err := NewConverter(stubCodec{}).Convert(models.UploadedFile{Name: "x.raw"}, models.FormatPNG)
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)

	boom := errors.New("boom")
	_, _, err = NewConverter(stubCodec{decodeErr: boom}).Convert(models.UploadedFile{Name: "x.raw"}, models.FormatPNG)
	assert.ErrorIs(t, err, boom)
}

func TestConverter_RejectsOversizedImage(t *testing.T) {
	c := NewConverter(nil, ConverterOptions{MaxPixels: 100})
	input := models.UploadedFile{Name: "big.png", Content: encodeFixture(t, gradient(20, 20), "png")}

	_, name, err := c.Convert(input, models.FormatJPEG)

	assert.Equal(t, "big.png", name)
	assert.ErrorIs(t, err, ErrDecode)
	assert.ErrorIs(t, err, ErrImageTooLarge)
	assert.Equal(t, "big.png", FileName(err))

	_, _, err = NewConverter(nil, ConverterOptions{MaxPixels: 400}).Convert(input, models.FormatJPEG)
	assert.NoError(t, err)
}

func TestConverter_ChecksDimensionsBeforeDecoding(t *testing.T) {
	decodes := 0
	codec := stubCodec{config: image.Config{Width: 20000, Height: 20000}, decodes: &decodes}

	_, _, err := NewConverter(codec).Convert(models.UploadedFile{Name: "bomb.png"}, models.FormatPNG)

	assert.ErrorIs(t, err, ErrImageTooLarge)
	assert.Zero(t, decodes)
}
