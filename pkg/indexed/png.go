package indexed

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/anthonynsimon/bild/clone"
	"github.com/pkg/errors"
)

// DecodePNG reads an indexed-colour PNG.
func DecodePNG(r io.Reader) (*Image, color.Palette, error) {
	m, err := png.Decode(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "decoding png")
	}

	pm, ok := m.(*image.Paletted)
	if !ok {
		return nil, nil, errors.Errorf("png is %T, not indexed colour", m)
	}

	return FromPaletted(pm), pm.Palette, nil
}

// EncodePNG writes img as an indexed-colour PNG. Palette entries with zero
// alpha end up in the transparency chunk.
func EncodePNG(w io.Writer, img *Image, p color.Palette) error {
	if img.Width == 0 || img.Height == 0 {
		return errors.Errorf("cannot encode %dx%d image", img.Width, img.Height)
	}

	if err := png.Encode(w, img.Paletted(p)); err != nil {
		return errors.Wrap(err, "encoding png")
	}

	return nil
}

// PNGBytes is EncodePNG into a fresh buffer.
func PNGBytes(img *Image, p color.Palette) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img, p); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// DecodeRGBA reads any PNG and normalises it to 8-bit alpha-premultiplied
// RGBA.
func DecodeRGBA(r io.Reader) (*image.RGBA, error) {
	m, err := png.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "decoding png")
	}

	return clone.AsRGBA(m), nil
}
