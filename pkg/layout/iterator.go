package layout

import "image"

// TilesIterator yields the top-left corner of each tile pushed into a column
// packing of fixed width.
type TilesIterator struct {
	tileWidth int
	columns   TileColumns
}

// NewTilesIterator walks columns tileWidth pixels wide and columnHeight
// pixels tall.
func NewTilesIterator(tileWidth, columnHeight int) *TilesIterator {
	return &TilesIterator{
		tileWidth: tileWidth,
		columns:   TileColumns{FullColumnHeight: columnHeight},
	}
}

// Next places a tile of height h and returns its top-left corner.
func (it *TilesIterator) Next(h int) image.Point {
	prev := it.columns

	it.columns.PushTile(h)

	if it.columns.NumOverflownColumns != prev.NumOverflownColumns {
		return image.Pt(it.columns.NumOverflownColumns*it.tileWidth, 0)
	}

	return image.Pt(prev.NumOverflownColumns*it.tileWidth, prev.LastColumnHeight)
}

// Columns is the packing state after the tiles placed so far.
func (it *TilesIterator) Columns() TileColumns {
	return it.columns
}
