package dt1

// BlockDataFormat represents the format of the block data: the 2-byte tag of
// the block header read as a little-endian int16.
type BlockDataFormat int16

const (
	// BlockFormatIsometric specifies the block format is isometrically encoded
	BlockFormatIsometric BlockDataFormat = 0x0001

	// BlockFormatRLE specifies the block format is RLE encoded
	BlockFormatRLE BlockDataFormat = 0x1001

	// BlockFormatRLEIsometric is RLE data for a block of an isometric tile
	BlockFormatRLEIsometric BlockDataFormat = 0x2005
)

// Valid reports whether f is one of the known tags.
func (f BlockDataFormat) Valid() bool {
	switch f {
	case BlockFormatIsometric, BlockFormatRLE, BlockFormatRLEIsometric:
		return true
	}

	return false
}

// IsRLE reports whether payloads of this format are run-length encoded.
func (f BlockDataFormat) IsRLE() bool {
	return f == BlockFormatRLE || f == BlockFormatRLEIsometric
}

// Block represents a DT1 block
type Block struct {
	X          int16           `toml:"x"`
	Y          int16           `toml:"y"`
	GridX      byte            `toml:"gridX"`
	GridY      byte            `toml:"gridY"`
	Format     BlockDataFormat `toml:"format"`
	Length     int32           `toml:"length"`
	FileOffset int32           `toml:"fileOffset"`

	// EncodedData is the payload as read from the file.
	EncodedData []byte `toml:"-"`
}
