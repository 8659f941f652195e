package tileatlas

import (
	"image"
	"math"

	"github.com/pkg/errors"

	"github.com/gravestench/d2tiled/pkg/dt1"
	"github.com/gravestench/d2tiled/pkg/indexed"
	"github.com/gravestench/d2tiled/pkg/layout"
)

// Grid copies the tiles of a Decode atlas into a grid of equal cells, as
// wide as a tile and as tall as the tallest one, with about as many rows as
// columns. It returns the grid and the cell height.
func Grid(d *dt1.DT1, atlas *indexed.Image) (*indexed.Image, int, error) {
	if len(d.Tiles) == 0 {
		return nil, 0, errors.New("no tiles")
	}

	cellHeight := 0
	for _, tile := range d.Tiles {
		cellHeight = max(cellHeight, int(tile.AtlasHeight))
	}

	n := len(d.Tiles)
	cols := int(math.Ceil(math.Sqrt(float64(n) * float64(cellHeight) / dt1.TileWidth)))
	cols = max(cols, 1)
	rows := (n-1)/cols + 1

	grid := indexed.New(cols*dt1.TileWidth, rows*cellHeight)
	points := layout.NewTilesIterator(dt1.TileWidth, atlas.Height)

	for tileIdx, tile := range d.Tiles {
		height := int(tile.AtlasHeight)
		sp := points.Next(height)
		dp := image.Pt(tileIdx%cols*dt1.TileWidth, tileIdx/cols*cellHeight)

		if height == 0 {
			continue
		}

		sr := image.Rect(0, 0, dt1.TileWidth, height).Add(sp)
		if err := grid.Blit(dp, atlas, sr); err != nil {
			return nil, 0, errors.Wrapf(err, "tile %d", tileIdx)
		}
	}

	return grid, cellHeight, nil
}

// squareTileSize is the side of the square a floor diamond is folded into.
const squareTileSize = dt1.TileWidth / 2

// NoisySquare folds every 160x80 floor or roof diamond of a column-packed
// image into an 80x80 square. Neighbouring source rows interleave in the
// square, which gives it its noisy look.
func NoisySquare(src *indexed.Image) (*indexed.Image, error) {
	if src.Height < dt1.FloorRoofTileHeight {
		return nil, errors.Errorf("image of height %d holds no floor tile", src.Height)
	}

	dst := indexed.New(src.Width/2, src.Height+1)

	srcPoints := layout.NewTilesIterator(dt1.TileWidth, src.Height)
	dstPoints := layout.NewTilesIterator(squareTileSize, dst.Height)

	for {
		sp := srcPoints.Next(dt1.FloorRoofTileHeight)
		if sp.X+dt1.TileWidth > src.Width {
			return dst, nil
		}

		if err := dst.DrawSquareTile(dstPoints.Next(squareTileSize), src, sp, squareTileSize); err != nil {
			return nil, err
		}
	}
}

// RhombPack halves the horizontal spacing of the columns of floor or roof
// diamonds and drops every odd column by half a diamond, so that
// neighbouring columns interlock.
func RhombPack(src *indexed.Image) (*indexed.Image, error) {
	if src.Height < dt1.FloorRoofTileHeight {
		return nil, errors.Errorf("image of height %d holds no floor tile", src.Height)
	}

	const halfTile = dt1.FloorRoofTileHeight / 2

	dst := indexed.New(src.Width, src.Height+halfTile)
	points := layout.NewTilesIterator(dt1.TileWidth, src.Height)

	for {
		sp := points.Next(dt1.FloorRoofTileHeight)
		if sp.X+dt1.TileWidth > src.Width {
			return dst, nil
		}

		dp := image.Pt(sp.X/2, sp.Y)
		if points.Columns().NumOverflownColumns%2 == 1 {
			dp.Y += halfTile
		}

		sr := image.Rect(0, 0, dt1.TileWidth, dt1.FloorRoofTileHeight).Add(sp)
		if err := dst.Blit(dp, src, sr); err != nil {
			return nil, err
		}
	}
}
