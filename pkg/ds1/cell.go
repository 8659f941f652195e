package ds1

// Cell is one 32-bit word of a layer. Bits 0-7 hold the drawing priority on
// drawing layers and the orientation on orientation layers, bits 8-15 the
// sub index and bits 20-25 the main index.
type Cell uint32

const (
	prop1Mask = 0xff

	// OrientationMask extracts the orientation from an orientation layer cell.
	OrientationMask = 0xff

	// SubIndexMax is the largest sub index a cell can hold.
	SubIndexMax    = 0xff
	subIndexOffset = 8
	subIndexMask   = SubIndexMax << subIndexOffset

	// MainIndexMax is the largest main index a cell can hold.
	MainIndexMax    = 0x3f
	mainIndexOffset = 20
	mainIndexMask   = MainIndexMax << mainIndexOffset
)

// Occupied reports whether the cell draws a tile.
func (c Cell) Occupied() bool {
	return c&prop1Mask != 0
}

// Orientation reads the orientation of an orientation layer cell.
func (c Cell) Orientation() uint8 {
	return uint8(c & OrientationMask)
}

// MainIndex is the main index of the tile drawn by the cell.
func (c Cell) MainIndex() uint8 {
	return uint8(c >> mainIndexOffset & MainIndexMax)
}

// SubIndex is the sub index of the tile drawn by the cell.
func (c Cell) SubIndex() uint8 {
	return uint8(c >> subIndexOffset & SubIndexMax)
}

// WithTileID replaces the main and sub index, keeping every other bit.
// mainIndex is truncated to six bits.
func (c Cell) WithTileID(mainIndex, subIndex uint8) Cell {
	main := Cell(mainIndex) & MainIndexMax

	return c&^(mainIndexMask|subIndexMask) | main<<mainIndexOffset | Cell(subIndex)<<subIndexOffset
}
