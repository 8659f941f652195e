/*
Package layout packs variable-height tiles into fixed-width vertical columns.

Tiles are stacked top to bottom in the current column. When a tile does not fit
in what is left of the column it starts a new one, and the unused tail of the
previous column is sacrificed. Choose enumerates column heights and picks the
packing whose bounding square, rounded up to a power of two, is smallest.
*/
package layout

import (
	"image"
	"sort"

	"github.com/pkg/errors"
)

// TileColumns is the state of a column packing. LastColumnHeight never
// exceeds FullColumnHeight.
type TileColumns struct {
	FullColumnHeight    int
	NumOverflownColumns int
	LastColumnHeight    int
}

// PushTile appends a tile of height h, which must not exceed
// FullColumnHeight. It returns 0 when the tile fit in the current column,
// otherwise the number of pixels by which the tile overflowed it.
func (tc *TileColumns) PushTile(h int) int {
	tc.LastColumnHeight += h

	d := tc.LastColumnHeight - 1
	q, r := d/tc.FullColumnHeight, d%tc.FullColumnHeight

	if q == 0 {
		return 0
	}

	tc.NumOverflownColumns += q
	tc.LastColumnHeight = h

	return h - r
}

// Dimensions is the size of the image holding every column.
func (tc TileColumns) Dimensions(tileWidth int) image.Point {
	return image.Pt((tc.NumOverflownColumns+1)*tileWidth, tc.FullColumnHeight)
}

// Choose picks the column packing for heights, in order, whose longer side
// rounded up to a power of two is smallest. Ties go to the widest packing and
// then to the earliest candidate. Candidate column heights start at maxHeight
// and grow by step.
func Choose(heights []int, maxHeight, step, tileWidth int) (TileColumns, error) {
	if maxHeight <= 0 || step <= 0 || tileWidth <= 0 {
		const fmtErr = "invalid layout parameters: maxHeight=%d step=%d tileWidth=%d"
		return TileColumns{}, errors.Errorf(fmtErr, maxHeight, step, tileWidth)
	}

	for idx, h := range heights {
		if h < 0 || h > maxHeight {
			return TileColumns{}, errors.Errorf("tile %d: height %d outside [0, %d]", idx, h, maxHeight)
		}
	}

	choices := []TileColumns{{FullColumnHeight: maxHeight}}

	for _, h := range heights {
		choices = append(choices, choices[len(choices)-1])

		// the last candidate is the single growing column; it keeps growing
		// until the tile fits without overflowing
		for i := 0; i < len(choices); i++ {
			result := choices[i].PushTile(h)

			if i != len(choices)-2 {
				continue
			}

			last := len(choices) - 1

			if result == 0 {
				choices = choices[:last]
				continue
			}

			choices[last].FullColumnHeight += step
			choices = append(choices, choices[last])
		}
	}

	sort.SliceStable(choices, func(a, b int) bool {
		da, db := choices[a].Dimensions(tileWidth), choices[b].Dimensions(tileWidth)
		sa, sb := pow2(max(da.X, da.Y)), pow2(max(db.X, db.Y))

		if sa != sb {
			return sa < sb
		}

		return da.X > db.X
	})

	return choices[0], nil
}

func pow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
