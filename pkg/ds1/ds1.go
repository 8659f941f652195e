/*
Package ds1 reads and writes DS1 maps.

A DS1 file is a version number followed by fields whose presence depends on
that version: the map size, the tile files it draws from, the cell layers,
and the object, group and path lists. Every integer is a little-endian
int32; every cell is a little-endian uint32.
*/
package ds1

import (
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"

	"github.com/gravestench/d2tiled/pkg/cursor"
)

const (
	// MinVersion is the oldest version this package understands.
	MinVersion = 7

	defaultAction  = 1
	shadowLayers   = 1
	trailingZeroes = 4
)

// version gates
func hasActIndex(v int32) bool     { return v >= 8 }
func hasTagType(v int32) bool      { return v >= 10 }
func hasUnknown(v int32) bool      { return v >= 9 && v <= 13 }
func hasNumFloors(v int32) bool    { return v >= 16 }
func hasGroups(v int32) bool       { return v >= 12 }
func hasGroupPadding(v int32) bool { return v >= 18 }
func hasGroupUnknown(v int32) bool { return v >= 13 }
func hasPaths(v int32) bool        { return v >= 14 }
func hasNodeAction(v int32) bool   { return v >= 15 }

// DS1 represents a DS1 map. Fields the version does not carry stay zero.
type DS1 struct {
	Version       int32    `toml:"version"`
	XMax          int32    `toml:"xMax"`
	YMax          int32    `toml:"yMax"`
	ActIndex      int32    `toml:"actIndex"`
	TagType       int32    `toml:"tagType"`
	Files         []string `toml:"files"`
	Unknown       [8]byte  `toml:"unknown"`
	NumWallLayers int32    `toml:"numWallLayers"`
	NumFloors     int32    `toml:"numFloors"`
	Layers        [][]Cell `toml:"layers"`
	Objects       []Object `toml:"object"`
	Groups        []Group  `toml:"group"`
	Paths         []Path   `toml:"path"`
}

// Object is a map object record.
type Object struct {
	Type  int32 `toml:"type"`
	ID    int32 `toml:"id"`
	X     int32 `toml:"x"`
	Y     int32 `toml:"y"`
	Flags int32 `toml:"flags"`
}

// Group is a rectangular region of the tag layer.
type Group struct {
	X       int32 `toml:"x"`
	Y       int32 `toml:"y"`
	Width   int32 `toml:"width"`
	Height  int32 `toml:"height"`
	Unknown int32 `toml:"unknown"`
}

// Path is a list of nodes walked by the object standing at (X, Y).
type Path struct {
	X     int32  `toml:"x"`
	Y     int32  `toml:"y"`
	Nodes []Node `toml:"node"`
}

// Node is one stop of a path.
type Node struct {
	X      int32 `toml:"x"`
	Y      int32 `toml:"y"`
	Action int32 `toml:"action"`
}

// HasTagLayer reports whether the layer list ends with a tag layer.
func (d *DS1) HasTagLayer() bool {
	return d.TagType == 1 || d.TagType == 2
}

// NumLayers is the layer count implied by the header fields.
func (d *DS1) NumLayers() int {
	n := 2*int(d.NumWallLayers) + int(d.NumFloors) + shadowLayers
	if d.HasTagLayer() {
		n++
	}

	return n
}

// NumCells is the cell count of every layer.
func (d *DS1) NumCells() int {
	return int(d.XMax+1) * int(d.YMax+1)
}

// FromBytes loads a DS1 map. Bytes after the last field are not an error;
// their count is returned as trailing.
func FromBytes(fileData []byte) (result *DS1, trailing int, err error) {
	result = &DS1{}
	stream := cursor.New(fileData)

	if err = result.decodeDS1Header(stream); err != nil {
		return nil, 0, errors.Wrap(err, "decoding header")
	}

	if err = result.decodeLayers(stream); err != nil {
		return nil, 0, errors.Wrap(err, "decoding layers")
	}

	if err = result.decodeObjects(stream); err != nil {
		return nil, 0, errors.Wrap(err, "decoding objects")
	}

	if err = result.decodeGroups(stream); err != nil {
		return nil, 0, errors.Wrap(err, "decoding groups")
	}

	if err = result.decodePaths(stream); err != nil {
		return nil, 0, errors.Wrap(err, "decoding paths")
	}

	trailing = stream.Remaining()

	// a lone trailing dword is padding
	if trailing == trailingZeroes {
		stream.ConsumeZeros(trailingZeroes)

		if err = stream.Err(); err != nil {
			return nil, 0, err
		}
	}

	return result, trailing, nil
}

func (d *DS1) decodeDS1Header(stream *cursor.Cursor) error {
	d.Version = stream.Int32()

	if err := stream.Err(); err != nil {
		return err
	}

	if d.Version < MinVersion {
		const fmtErr = "expected a version of at least %d, got %d instead"
		return errors.Wrapf(cursor.ErrVersionMismatch, fmtErr, MinVersion, d.Version)
	}

	d.XMax = stream.Int32()
	d.YMax = stream.Int32()

	if hasActIndex(d.Version) {
		d.ActIndex = stream.Int32()
	}

	if hasTagType(d.Version) {
		d.TagType = stream.Int32()
	}

	if err := d.decodeFiles(stream); err != nil {
		return err
	}

	if hasUnknown(d.Version) {
		stream.ReadInto(d.Unknown[:])
	}

	d.NumWallLayers = stream.Int32()
	d.NumFloors = 1

	if hasNumFloors(d.Version) {
		d.NumFloors = stream.Int32()
	}

	if err := stream.Err(); err != nil {
		return err
	}

	if d.XMax < 0 || d.YMax < 0 || d.NumWallLayers < 0 || d.NumFloors < 0 {
		const fmtErr = "negative size: xMax %d, yMax %d, %d wall layers, %d floors"
		return errors.Wrapf(cursor.ErrMalformed, fmtErr, d.XMax, d.YMax, d.NumWallLayers, d.NumFloors)
	}

	return nil
}

func (d *DS1) decodeFiles(stream *cursor.Cursor) error {
	numFiles := stream.Int32()

	if err := stream.Err(); err != nil {
		return err
	}

	if numFiles < 0 || int(numFiles) > stream.Remaining() {
		return errors.Wrapf(cursor.ErrMalformed, "file count %d", numFiles)
	}

	if numFiles == 0 {
		return nil
	}

	decoder := charmap.ISO8859_1.NewDecoder()
	d.Files = make([]string, numFiles)

	for i := range d.Files {
		raw := stream.Until(0)
		if err := stream.Err(); err != nil {
			return errors.Wrapf(err, "file %d", i)
		}

		name, err := decoder.Bytes(raw)
		if err != nil {
			return errors.Wrapf(err, "file %d", i)
		}

		d.Files[i] = string(name)
	}

	return nil
}

func (d *DS1) decodeLayers(stream *cursor.Cursor) error {
	numLayers, numCells := d.NumLayers(), d.NumCells()

	if numCells > 0 && numLayers > stream.Remaining()/4/numCells {
		return errors.Wrapf(cursor.ErrTruncated, "%d layers of %d cells do not fit", numLayers, numCells)
	}

	d.Layers = make([][]Cell, numLayers)

	for i := range d.Layers {
		raw := stream.Uint32s(numCells)

		if err := stream.Err(); err != nil {
			return errors.Wrapf(err, "layer %d", i)
		}

		layer := make([]Cell, numCells)
		for j, v := range raw {
			layer[j] = Cell(v)
		}

		d.Layers[i] = layer
	}

	return nil
}

func (d *DS1) decodeObjects(stream *cursor.Cursor) error {
	const objectBytes = 5 * 4

	numObjects := stream.Int32()

	if err := stream.Err(); err != nil {
		return err
	}

	if numObjects < 0 || int(numObjects) > stream.Remaining()/objectBytes {
		return errors.Wrapf(cursor.ErrTruncated, "%d objects do not fit", numObjects)
	}

	if numObjects == 0 {
		return nil
	}

	d.Objects = make([]Object, numObjects)

	for i := range d.Objects {
		d.Objects[i] = Object{
			Type:  stream.Int32(),
			ID:    stream.Int32(),
			X:     stream.Int32(),
			Y:     stream.Int32(),
			Flags: stream.Int32(),
		}
	}

	return stream.Err()
}

// groups may be cut short: running out of input where the next group's x
// would start ends the list.
func (d *DS1) decodeGroups(stream *cursor.Cursor) error {
	if !hasGroups(d.Version) || !d.HasTagLayer() {
		return nil
	}

	if hasGroupPadding(d.Version) {
		stream.ConsumeZeros(4)
	}

	numGroups := stream.Int32()

	if err := stream.Err(); err != nil {
		return err
	}

	if numGroups < 0 {
		return errors.Wrapf(cursor.ErrMalformed, "group count %d", numGroups)
	}

	for i := 0; i < int(numGroups); i++ {
		if stream.Remaining() == 0 {
			break
		}

		group := Group{
			X:      stream.Int32(),
			Y:      stream.Int32(),
			Width:  stream.Int32(),
			Height: stream.Int32(),
		}

		if hasGroupUnknown(d.Version) {
			group.Unknown = stream.Int32()
		}

		if err := stream.Err(); err != nil {
			return errors.Wrapf(err, "group %d", i)
		}

		d.Groups = append(d.Groups, group)
	}

	return nil
}

func (d *DS1) decodePaths(stream *cursor.Cursor) error {
	if !hasPaths(d.Version) || stream.Remaining() == 0 {
		return nil
	}

	numPaths := stream.Int32()

	if err := stream.Err(); err != nil {
		return err
	}

	if numPaths < 0 || int(numPaths) > stream.Remaining()/12 {
		return errors.Wrapf(cursor.ErrTruncated, "%d paths do not fit", numPaths)
	}

	if numPaths == 0 {
		return nil
	}

	d.Paths = make([]Path, numPaths)

	for i := range d.Paths {
		if err := d.decodePath(stream, &d.Paths[i]); err != nil {
			return errors.Wrapf(err, "path %d", i)
		}
	}

	return nil
}

func (d *DS1) decodePath(stream *cursor.Cursor, path *Path) error {
	numNodes := stream.Int32()
	path.X = stream.Int32()
	path.Y = stream.Int32()

	if err := stream.Err(); err != nil {
		return err
	}

	if numNodes < 0 || int(numNodes) > stream.Remaining()/8 {
		return errors.Wrapf(cursor.ErrTruncated, "%d nodes do not fit", numNodes)
	}

	if numNodes == 0 {
		return nil
	}

	path.Nodes = make([]Node, numNodes)

	for i := range path.Nodes {
		node := &path.Nodes[i]
		node.X = stream.Int32()
		node.Y = stream.Int32()
		node.Action = defaultAction

		if hasNodeAction(d.Version) {
			node.Action = stream.Int32()
		}
	}

	return stream.Err()
}
