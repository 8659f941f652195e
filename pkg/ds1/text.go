package ds1

import (
	"bytes"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Text renders d as TOML.
func (d *DS1) Text() ([]byte, error) {
	var buf bytes.Buffer

	if err := toml.NewEncoder(&buf).Encode(d); err != nil {
		return nil, errors.Wrap(err, "encoding ds1 text")
	}

	return buf.Bytes(), nil
}

// ParseText loads the form written by Text and checks that the layers
// match the header.
func ParseText(text []byte) (*DS1, error) {
	d := &DS1{}

	if _, err := toml.Decode(string(text), d); err != nil {
		return nil, errors.Wrap(err, "decoding ds1 text")
	}

	if err := d.validate(); err != nil {
		return nil, err
	}

	return d, nil
}
