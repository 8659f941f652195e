package dt1

import (
	"bytes"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Text renders every header field of d as TOML. Block payloads are not part
// of the text form; they travel as pixels in a tile atlas.
func (d *DT1) Text() ([]byte, error) {
	var buf bytes.Buffer

	if err := toml.NewEncoder(&buf).Encode(d); err != nil {
		return nil, errors.Wrap(err, "encoding dt1 text")
	}

	return buf.Bytes(), nil
}

// ParseText loads the form written by Text.
func ParseText(text []byte) (*DT1, error) {
	d := &DT1{}

	if _, err := toml.Decode(string(text), d); err != nil {
		return nil, errors.Wrap(err, "decoding dt1 text")
	}

	for tileIdx, t := range d.Tiles {
		for blockIdx, block := range t.Blocks {
			if !block.Format.Valid() {
				const fmtErr = "tile %d block %d: unknown format tag 0x%04x"
				return nil, errors.Errorf(fmtErr, tileIdx, blockIdx, uint16(block.Format))
			}
		}
	}

	return d, nil
}
