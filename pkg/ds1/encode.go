package ds1

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"

	"github.com/gravestench/d2tiled/pkg/cursor"
)

// Bytes is Encode into a fresh buffer.
func (d *DS1) Bytes() ([]byte, error) {
	var buf bytes.Buffer

	if err := d.Encode(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Encode writes d in the field order of its version. The counts written
// are the lengths of the lists; the layer list must match the header.
func (d *DS1) Encode(w io.Writer) error {
	if err := d.validate(); err != nil {
		return err
	}

	out := cursor.NewWriter(w)

	out.WriteInt32(d.Version)
	out.WriteInt32(d.XMax)
	out.WriteInt32(d.YMax)

	if hasActIndex(d.Version) {
		out.WriteInt32(d.ActIndex)
	}

	if hasTagType(d.Version) {
		out.WriteInt32(d.TagType)
	}

	if err := d.encodeFiles(out); err != nil {
		return err
	}

	if hasUnknown(d.Version) {
		_, _ = out.Write(d.Unknown[:])
	}

	out.WriteInt32(d.NumWallLayers)

	if hasNumFloors(d.Version) {
		out.WriteInt32(d.NumFloors)
	}

	for _, layer := range d.Layers {
		for _, cell := range layer {
			out.WriteUint32(uint32(cell))
		}
	}

	out.WriteInt32(int32(len(d.Objects)))

	for _, object := range d.Objects {
		out.WriteInt32(object.Type)
		out.WriteInt32(object.ID)
		out.WriteInt32(object.X)
		out.WriteInt32(object.Y)
		out.WriteInt32(object.Flags)
	}

	d.encodeGroups(out)
	d.encodePaths(out)

	return out.Err()
}

func (d *DS1) validate() error {
	if d.Version < MinVersion {
		const fmtErr = "expected a version of at least %d, got %d instead"
		return errors.Wrapf(cursor.ErrVersionMismatch, fmtErr, MinVersion, d.Version)
	}

	if !hasNumFloors(d.Version) && d.NumFloors != 1 {
		return errors.Wrapf(cursor.ErrMalformed, "version %d maps have 1 floor, not %d", d.Version, d.NumFloors)
	}

	if d.XMax < 0 || d.YMax < 0 || d.NumWallLayers < 0 || d.NumFloors < 0 {
		return errors.Wrap(cursor.ErrMalformed, "negative size")
	}

	if len(d.Layers) != d.NumLayers() {
		return errors.Wrapf(cursor.ErrMalformed, "%d layers, header implies %d", len(d.Layers), d.NumLayers())
	}

	for i, layer := range d.Layers {
		if len(layer) != d.NumCells() {
			return errors.Wrapf(cursor.ErrMalformed, "layer %d has %d cells, want %d", i, len(layer), d.NumCells())
		}
	}

	if !hasGroups(d.Version) || !d.HasTagLayer() {
		if len(d.Groups) > 0 {
			return errors.Wrapf(cursor.ErrMalformed, "version %d tag type %d carries no groups", d.Version, d.TagType)
		}
	}

	if !hasPaths(d.Version) && len(d.Paths) > 0 {
		return errors.Wrapf(cursor.ErrMalformed, "version %d carries no paths", d.Version)
	}

	return nil
}

func (d *DS1) encodeFiles(out *cursor.Writer) error {
	encoder := charmap.ISO8859_1.NewEncoder()

	out.WriteInt32(int32(len(d.Files)))

	for i, name := range d.Files {
		raw, err := encoder.Bytes([]byte(name))
		if err != nil {
			return errors.Wrapf(err, "file %d", i)
		}

		if bytes.IndexByte(raw, 0) >= 0 {
			return errors.Wrapf(cursor.ErrMalformed, "file %d: name contains NUL", i)
		}

		_, _ = out.Write(raw)
		out.WriteUint8(0)
	}

	return out.Err()
}

func (d *DS1) encodeGroups(out *cursor.Writer) {
	if !hasGroups(d.Version) || !d.HasTagLayer() {
		return
	}

	if hasGroupPadding(d.Version) {
		out.WriteZeros(4)
	}

	out.WriteInt32(int32(len(d.Groups)))

	for _, group := range d.Groups {
		out.WriteInt32(group.X)
		out.WriteInt32(group.Y)
		out.WriteInt32(group.Width)
		out.WriteInt32(group.Height)

		if hasGroupUnknown(d.Version) {
			out.WriteInt32(group.Unknown)
		}
	}
}

func (d *DS1) encodePaths(out *cursor.Writer) {
	if !hasPaths(d.Version) {
		return
	}

	out.WriteInt32(int32(len(d.Paths)))

	for _, path := range d.Paths {
		out.WriteInt32(int32(len(path.Nodes)))
		out.WriteInt32(path.X)
		out.WriteInt32(path.Y)

		for _, node := range path.Nodes {
			out.WriteInt32(node.X)
			out.WriteInt32(node.Y)

			if hasNodeAction(d.Version) {
				out.WriteInt32(node.Action)
			}
		}
	}
}
