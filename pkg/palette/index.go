package palette

import (
	"image"

	"github.com/gravestench/d2tiled/pkg/indexed"
)

// alpha at or below this is treated as fully transparent
const alphaCutoff = componentMax / 16

// IndexImage maps every pixel of m to its nearest palette entry. Pixels that
// are almost fully transparent become Transparent, and opaque pixels that
// land on the transparent entry are drawn with Black instead.
func (inv *Inverse) IndexImage(m *image.RGBA) *indexed.Image {
	b := m.Bounds()
	out := indexed.New(b.Dx(), b.Dy())

	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			px := m.Pix[m.PixOffset(b.Min.X+x, b.Min.Y+y):]
			r, g, bl, a := px[0], px[1], px[2], px[3]

			idx := uint8(Transparent)

			if a > alphaCutoff {
				r, g, bl = unpremultiply(r, a), unpremultiply(g, a), unpremultiply(bl, a)

				if idx = inv.Lookup(r, g, bl); idx == Transparent {
					idx = Black
				}
			}

			out.Data[y*out.Width+x] = idx
		}
	}

	return out
}

func unpremultiply(c, a uint8) uint8 {
	if a == componentMax {
		return c
	}

	return uint8((int(c)*componentMax + int(a)/2) / int(a))
}
