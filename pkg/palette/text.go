package palette

import (
	"bytes"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

type paletteText struct {
	Colors []string `toml:"colors"`
}

// Text renders the palette as a TOML list of hex colours, one per entry.
func (p *Palette) Text() ([]byte, error) {
	doc := paletteText{Colors: make([]string, NumColors)}

	for i := range doc.Colors {
		c := p.At(uint8(i))
		doc.Colors[i] = colorful.Color{
			R: float64(c.R) / componentMax,
			G: float64(c.G) / componentMax,
			B: float64(c.B) / componentMax,
		}.Hex()
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, errors.Wrap(err, "encoding palette")
	}

	return buf.Bytes(), nil
}

// ParseText replaces the palette with the form written by Text.
func (p *Palette) ParseText(text []byte) error {
	var doc paletteText

	if _, err := toml.Decode(string(text), &doc); err != nil {
		return errors.Wrap(err, "decoding palette")
	}

	if len(doc.Colors) != NumColors {
		return errors.Errorf("palette text has %d colours, want %d", len(doc.Colors), NumColors)
	}

	for i, s := range doc.Colors {
		c, err := colorful.Hex(s)
		if err != nil {
			return errors.Wrapf(err, "colour %d", i)
		}

		r, g, b := c.RGB255()
		p.Set(uint8(i), RGB{r, g, b})
	}

	return nil
}
