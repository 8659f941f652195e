// Package indexed implements rasters of palette indices. Index 0 is
// transparent everywhere in this package: blits and bounding boxes skip it.
package indexed

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// Transparent is the palette index that is never drawn.
const Transparent = 0

// ErrOutOfBounds is returned for accesses outside an image.
var ErrOutOfBounds = errors.New("outside image bounds")

// Image is a width*height raster of palette indices, row by row.
type Image struct {
	Width  int
	Height int
	Data   []byte
}

// New returns a fully transparent image.
func New(width, height int) *Image {
	if width < 0 {
		width = 0
	}

	if height < 0 {
		height = 0
	}

	return &Image{
		Width:  width,
		Height: height,
		Data:   make([]byte, width*height),
	}
}

// Bounds is the rectangle covered by the image, anchored at the origin.
func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.Width, img.Height)
}

func (img *Image) offset(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= img.Width || y >= img.Height {
		return 0, false
	}

	return y*img.Width + x, true
}

// ColorIndexAt returns the index at (x, y), or Transparent outside the image.
func (img *Image) ColorIndexAt(x, y int) uint8 {
	if o, ok := img.offset(x, y); ok {
		return img.Data[o]
	}

	return Transparent
}

// SetColorIndex writes v at (x, y).
func (img *Image) SetColorIndex(x, y int, v uint8) error {
	o, ok := img.offset(x, y)
	if !ok {
		return errors.Wrapf(ErrOutOfBounds, "pixel (%d, %d) of %dx%d image", x, y, img.Width, img.Height)
	}

	img.Data[o] = v

	return nil
}

// Blit copies the non-transparent pixels of sr in src to img with the top-left
// corner of sr landing on dp. Transparent source pixels leave img untouched.
func (img *Image) Blit(dp image.Point, src *Image, sr image.Rectangle) error {
	if !sr.In(src.Bounds()) {
		return errors.Wrapf(ErrOutOfBounds, "source rectangle %v in %v", sr, src.Bounds())
	}

	dr := sr.Sub(sr.Min).Add(dp)
	if !dr.In(img.Bounds()) {
		return errors.Wrapf(ErrOutOfBounds, "destination rectangle %v in %v", dr, img.Bounds())
	}

	for y := 0; y < sr.Dy(); y++ {
		srow := src.Data[(sr.Min.Y+y)*src.Width+sr.Min.X:][:sr.Dx()]
		drow := img.Data[(dr.Min.Y+y)*img.Width+dr.Min.X:][:dr.Dx()]

		for x, v := range srow {
			if v != Transparent {
				drow[x] = v
			}
		}
	}

	return nil
}

// BoundingRectangle is the smallest rectangle within r enclosing every
// non-transparent pixel. It reports false when there is none.
func (img *Image) BoundingRectangle(r image.Rectangle) (image.Rectangle, bool) {
	r = r.Intersect(img.Bounds())

	var (
		bounds image.Rectangle
		found  bool
	)

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.Data[y*img.Width+x] == Transparent {
				continue
			}

			px := image.Rect(x, y, x+1, y+1)
			if !found {
				bounds, found = px, true
				continue
			}

			bounds = bounds.Union(px)
		}
	}

	return bounds, found
}

// BoundingDeltaYRange trims the fully transparent rows off the top and bottom
// of the width*height stripe at p. start and end are row offsets relative to
// p.Y, end exclusive. It reports false when the whole stripe is transparent.
func (img *Image) BoundingDeltaYRange(p image.Point, width, height int) (start, end int, ok bool) {
	r, found := img.BoundingRectangle(image.Rect(p.X, p.Y, p.X+width, p.Y+height))
	if !found {
		return 0, 0, false
	}

	return r.Min.Y - p.Y, r.Max.Y - p.Y, true
}

// DrawSquareTile re-packs the isometric diamond tile of the given size*2 by
// size extent at sp in src into a size*size square at dp. The walk moves
// diagonally through the source: each destination column steps down
// one row per pixel while the source steps one column left per pixel and one
// row down every second pixel, so alternating source rows interleave into
// the destination. A destination pixel written twice is an error.
func (img *Image) DrawSquareTile(dp image.Point, src *Image, sp image.Point, size int) error {
	dp.Y++
	sp.X += size - 1

	for dx := 0; dx < size; dx++ {
		s, d := sp, dp

		for dy := 0; dy < size; dy++ {
			so, ok := src.offset(s.X, s.Y)
			if !ok {
				return errors.Wrapf(ErrOutOfBounds, "square tile source (%d, %d)", s.X, s.Y)
			}

			if v := src.Data[so]; v != Transparent {
				do, ok := img.offset(d.X, d.Y)
				if !ok {
					return errors.Wrapf(ErrOutOfBounds, "square tile destination (%d, %d)", d.X, d.Y)
				}

				if img.Data[do] != Transparent {
					return errors.Errorf("square tile destination (%d, %d) painted twice", d.X, d.Y)
				}

				img.Data[do] = v
			}

			s.X--
			if dy%2 == 1 {
				s.Y++
			}

			d.Y++
		}

		if dx%2 == 0 {
			sp.X += 2
			dp = dp.Add(image.Pt(1, -1))
		} else {
			sp.Y++
			dp = dp.Add(image.Pt(1, 1))
		}
	}

	return nil
}

// Paletted copies the image into an *image.Paletted using p.
func (img *Image) Paletted(p color.Palette) *image.Paletted {
	pm := image.NewPaletted(img.Bounds(), p)
	copy(pm.Pix, img.Data)

	return pm
}

// FromPaletted copies the indices of pm, re-anchored at the origin.
func FromPaletted(pm *image.Paletted) *Image {
	b := pm.Bounds()
	img := New(b.Dx(), b.Dy())

	for y := 0; y < img.Height; y++ {
		copy(img.Data[y*img.Width:][:img.Width], pm.Pix[pm.PixOffset(b.Min.X, b.Min.Y+y):])
	}

	return img
}
