package indexed

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fromRows(rows ...[]byte) *Image {
	img := New(len(rows[0]), len(rows))
	for y, row := range rows {
		copy(img.Data[y*img.Width:], row)
	}

	return img
}

func TestNewClampsNegativeSizes(t *testing.T) {
	img := New(-1, 4)
	assert.Zero(t, img.Width)
	assert.Empty(t, img.Data)
}

func TestSetAndGet(t *testing.T) {
	img := New(3, 2)

	require.NoError(t, img.SetColorIndex(2, 1, 9))
	assert.Equal(t, uint8(9), img.ColorIndexAt(2, 1))
	assert.Equal(t, byte(9), img.Data[5])

	err := img.SetColorIndex(3, 0, 1)
	assert.True(t, errors.Is(err, ErrOutOfBounds))
	assert.Equal(t, uint8(Transparent), img.ColorIndexAt(-1, 0))
}

func TestBlitKeepsDestinationUnderTransparentSource(t *testing.T) {
	src := fromRows(
		[]byte{0, 5, 0},
		[]byte{6, 0, 7},
	)
	dst := fromRows(
		[]byte{1, 1, 1, 1},
		[]byte{0, 0, 0, 0},
		[]byte{2, 0, 2, 0},
	)

	require.NoError(t, dst.Blit(image.Pt(1, 1), src, src.Bounds()))

	assert.Equal(t, fromRows(
		[]byte{1, 1, 1, 1},
		[]byte{0, 0, 5, 0},
		[]byte{2, 6, 2, 7},
	), dst)
}

func TestBlitRejectsOutOfBounds(t *testing.T) {
	src := New(4, 4)
	dst := New(4, 4)

	assert.Error(t, dst.Blit(image.Pt(1, 0), src, src.Bounds()))
	assert.Error(t, dst.Blit(image.Pt(0, 0), src, image.Rect(2, 2, 6, 3)))
	assert.NoError(t, dst.Blit(image.Pt(2, 2), src, image.Rect(2, 2, 4, 4)))
}

func TestBoundingRectangle(t *testing.T) {
	img := fromRows(
		[]byte{0, 0, 0, 0, 0},
		[]byte{0, 0, 3, 0, 0},
		[]byte{0, 4, 0, 0, 0},
		[]byte{0, 0, 0, 0, 8},
	)

	r, ok := img.BoundingRectangle(img.Bounds())
	require.True(t, ok)
	assert.Equal(t, image.Rect(1, 1, 5, 4), r)

	r, ok = img.BoundingRectangle(image.Rect(0, 0, 3, 3))
	require.True(t, ok)
	assert.Equal(t, image.Rect(1, 1, 3, 3), r)

	_, ok = img.BoundingRectangle(image.Rect(0, 0, 1, 4))
	assert.False(t, ok)
}

func TestBoundingDeltaYRange(t *testing.T) {
	img := fromRows(
		[]byte{0, 0, 0, 0},
		[]byte{0, 0, 0, 0},
		[]byte{0, 1, 0, 0},
		[]byte{0, 0, 0, 0},
		[]byte{0, 0, 2, 0},
		[]byte{0, 0, 0, 0},
	)

	start, end, ok := img.BoundingDeltaYRange(image.Pt(0, 1), 4, 5)
	require.True(t, ok)
	assert.Equal(t, 1, start)
	assert.Equal(t, 4, end)

	_, _, ok = img.BoundingDeltaYRange(image.Pt(3, 0), 1, 6)
	assert.False(t, ok)
}

func TestDrawSquareTileWalk(t *testing.T) {
	const size = 4

	// a diamond 2*size wide and size tall, numbered so every pixel is unique
	src := New(2*size, size)
	for i := range src.Data {
		src.Data[i] = byte(i + 1)
	}

	dst := New(size, size+1)
	require.NoError(t, dst.DrawSquareTile(image.Pt(0, 0), src, image.Pt(0, 0), size))

	// first destination column starts one row down at source column size-1,
	// walking one column left per step and one row down every second step
	assert.Equal(t, src.ColorIndexAt(3, 0), dst.ColorIndexAt(0, 1))
	assert.Equal(t, src.ColorIndexAt(2, 0), dst.ColorIndexAt(0, 2))
	assert.Equal(t, src.ColorIndexAt(1, 1), dst.ColorIndexAt(0, 3))
	assert.Equal(t, src.ColorIndexAt(0, 1), dst.ColorIndexAt(0, 4))

	// after an even column the source moves two columns right and the
	// destination one column right and one row up
	assert.Equal(t, src.ColorIndexAt(5, 0), dst.ColorIndexAt(1, 0))

	// after an odd column the source moves one row down and the destination
	// one column right and one row down
	assert.Equal(t, src.ColorIndexAt(5, 1), dst.ColorIndexAt(2, 1))
}

func TestDrawSquareTileRejectsOverdraw(t *testing.T) {
	src := New(8, 4)
	for i := range src.Data {
		src.Data[i] = 1
	}

	dst := New(4, 5)
	dst.Data[1*dst.Width] = 9

	assert.Error(t, dst.DrawSquareTile(image.Pt(0, 0), src, image.Pt(0, 0), 4))
}

func TestPalettedRoundTrip(t *testing.T) {
	img := fromRows(
		[]byte{0, 1, 2},
		[]byte{3, 0, 255},
	)

	pm := img.Paletted(color.Palette{color.Black})
	assert.Equal(t, img, FromPaletted(pm))

	sub := pm.SubImage(image.Rect(1, 0, 3, 2)).(*image.Paletted)
	assert.Equal(t, fromRows([]byte{1, 2}, []byte{0, 255}), FromPaletted(sub))
}

func TestPNGRoundTrip(t *testing.T) {
	p := make(color.Palette, 256)
	for i := range p {
		p[i] = color.NRGBA{R: uint8(i), G: uint8(i), B: uint8(i), A: 0xff}
	}
	p[0] = color.NRGBA{}

	img := fromRows(
		[]byte{0, 1, 2, 3},
		[]byte{172, 0, 0, 255},
	)

	data, err := PNGBytes(img, p)
	require.NoError(t, err)

	back, backPal, err := DecodePNG(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, img, back)
	require.Len(t, backPal, 256)

	_, _, _, a := backPal[0].RGBA()
	assert.Zero(t, a)

	rgba, err := DecodeRGBA(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 172, G: 172, B: 172, A: 0xff}, rgba.RGBAAt(0, 1))
}

func TestDecodePNGRejectsTruecolour(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))

	_, _, err := DecodePNG(&buf)
	assert.Error(t, err)
}
