/*
Package palette handles the 256-colour palettes of the tileset tools.

A palette is stored as 768 bytes of R,G,B triples. The legacy game files keep
their palettes with each triple byte-swapped to B,G,R; Swap converts between
the two in place. Index 0 is always fully transparent and index 172 is the
conventional black.
*/
package palette

import (
	"image/color"

	"github.com/pkg/errors"
)

const (
	NumColors    = 256
	bytesPerRGB  = 3
	Size         = NumColors * bytesPerRGB
	Transparent  = 0
	Black        = 172
	componentMax = 0xff
)

// Palette is 256 R,G,B triples.
type Palette [Size]byte

// RGB is one palette entry.
type RGB struct {
	R, G, B uint8
}

// FromBytes copies a palette out of exactly Size bytes.
func FromBytes(data []byte) (p Palette, err error) {
	if len(data) != Size {
		return p, errors.Errorf("palette must be %d bytes, got %d", Size, len(data))
	}

	copy(p[:], data)

	return p, nil
}

// Swap exchanges the first and third byte of every triple, turning R,G,B
// into B,G,R and back.
func (p *Palette) Swap() {
	for i := 0; i < Size; i += bytesPerRGB {
		p[i], p[i+2] = p[i+2], p[i]
	}
}

// At returns entry i.
func (p *Palette) At(i uint8) RGB {
	o := int(i) * bytesPerRGB
	return RGB{p[o], p[o+1], p[o+2]}
}

// Set replaces entry i.
func (p *Palette) Set(i uint8, c RGB) {
	o := int(i) * bytesPerRGB
	p[o], p[o+1], p[o+2] = c.R, c.G, c.B
}

// Entries lists every entry in index order.
func (p *Palette) Entries() []RGB {
	entries := make([]RGB, NumColors)
	for i := range entries {
		entries[i] = p.At(uint8(i))
	}

	return entries
}

// Color builds the palette used for indexed PNG output: every entry is
// opaque except index 0, which carries the single transparency entry.
func (p *Palette) Color() color.Palette {
	cp := make(color.Palette, NumColors)

	for i := range cp {
		c := p.At(uint8(i))
		cp[i] = color.NRGBA{R: c.R, G: c.G, B: c.B, A: componentMax}
	}

	c := p.At(Transparent)
	cp[Transparent] = color.NRGBA{R: c.R, G: c.G, B: c.B}

	return cp
}

// FromColor converts a decoded PNG palette. Short palettes are padded with
// black entries; palettes with more than 256 entries are rejected.
func FromColor(cp color.Palette) (p Palette, err error) {
	if len(cp) > NumColors {
		return p, errors.Errorf("palette has %d entries, at most %d allowed", len(cp), NumColors)
	}

	for i, c := range cp {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		p.Set(uint8(i), RGB{n.R, n.G, n.B})
	}

	return p, nil
}
