package dt1

import (
	"github.com/pkg/errors"

	"github.com/gravestench/d2tiled/pkg/cursor"
)

const (
	// TileWidth is the pixel width of every tile.
	TileWidth = 160

	// BlockWidth is the pixel width of every block.
	BlockWidth = 32

	// FloorRoofBlockHeight is the block height of floor and roof tiles; their
	// isometric payload paints 15 rows of it.
	FloorRoofBlockHeight = 16

	// WallBlockHeight is the block height of every other tile.
	WallBlockHeight = 32

	// FloorRoofTileHeight is the height of a whole floor or roof diamond.
	FloorRoofTileHeight = 80

	numSubTiles = 25
)

// Tile orientations with a special meaning.
const (
	OrientationFloor = 0
	OrientationRoof  = 15
)

// Tile is a representation of a map tile
type Tile struct {
	Direction  int32 `toml:"direction"`
	RoofHeight int16 `toml:"roofHeight"`
	MaterialFlags
	Height              int32                     `toml:"height"`
	Width               int32                     `toml:"width"`
	Orientation         int32                     `toml:"orientation"`
	MainIndex           int32                     `toml:"mainIndex"`
	SubIndex            int32                     `toml:"subIndex"`
	RarityOrFrameIndex  int32                     `toml:"rarityOrFrameIndex"`
	Unknown             [4]byte                   `toml:"unknown"`
	SubTileFlags        [numSubTiles]SubTileFlags `toml:"subtileFlags"`
	BlockHeadersPointer int32                     `toml:"blockHeadersPointer"`
	BlockDataLength     int32                     `toml:"blockDataLength"`
	AlmostAlwaysZeros   [4]byte                   `toml:"almostAlwaysZeros"`

	// AtlasTop and AtlasHeight locate the tile in a tile atlas: the atlas
	// holds the rows [AtlasTop, AtlasTop+AtlasHeight) of the tile, in block
	// coordinates. They are not part of the binary format.
	AtlasTop    int32 `toml:"atlasTop"`
	AtlasHeight int32 `toml:"atlasHeight"`

	Blocks []*Block `toml:"block"`
}

// AbsHeight is the tile height as a positive number; files store it negated.
func (t *Tile) AbsHeight() int32 {
	if t.Height < 0 {
		return -t.Height
	}

	return t.Height
}

// IsFloorOrRoof reports whether the tile is drawn from 16 pixel tall blocks.
func (t *Tile) IsFloorOrRoof() bool {
	return t.Orientation == OrientationFloor || t.Orientation == OrientationRoof
}

// BlockHeight is the height of the box every block of the tile is drawn in.
func (t *Tile) BlockHeight() int {
	if t.IsFloorOrRoof() {
		return FloorRoofBlockHeight
	}

	return WallBlockHeight
}

// BlockYRange is the vertical extent covered by the tile's block boxes.
func (t *Tile) BlockYRange() (minY, maxY int) {
	if len(t.Blocks) == 0 {
		return 0, 0
	}

	minY, maxY = int(t.Blocks[0].Y), int(t.Blocks[0].Y)

	for _, block := range t.Blocks {
		minY = min(minY, int(block.Y))
		maxY = max(maxY, int(block.Y))
	}

	return minY, maxY + t.BlockHeight()
}

// MaterialFlags are the two bytes after the roof height: a sound index and
// an animation flag.
type MaterialFlags struct {
	SoundIndex uint8 `toml:"soundIndex"`
	IsAnimated bool  `toml:"isAnimated"`
}

// NewMaterialFlags splits the stored little-endian word. The animation byte
// must be 0 or 1.
func NewMaterialFlags(data uint16) (MaterialFlags, error) {
	flags := MaterialFlags{SoundIndex: uint8(data)}

	switch animated := uint8(data >> 8); animated {
	case 0:
	case 1:
		flags.IsAnimated = true
	default:
		return flags, errors.Wrapf(cursor.ErrMalformed, "animation flag is %d", animated)
	}

	return flags, nil
}

// Encode is the inverse of NewMaterialFlags.
func (m MaterialFlags) Encode() uint16 {
	data := uint16(m.SoundIndex)
	if m.IsAnimated {
		data |= 1 << 8
	}

	return data
}

// SubTileFlags describe how one of the 25 sub-tiles of a tile interacts with
// movement and sight.
type SubTileFlags uint8

const (
	SubTileBlockWalk SubTileFlags = 1 << iota
	SubTileBlockLOS
	SubTileBlockJump
	SubTileBlockPlayerWalk
	SubTileUnknown1
	SubTileBlockLight
	SubTileUnknown2
	SubTileUnknown3
)

// NewSubTileFlags wraps a stored flag byte.
func NewSubTileFlags(data byte) SubTileFlags {
	return SubTileFlags(data)
}

// Has reports whether every bit of flag is set.
func (s SubTileFlags) Has(flag SubTileFlags) bool {
	return s&flag == flag
}
