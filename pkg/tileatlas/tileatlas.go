/*
Package tileatlas draws the tiles of a DT1 into a single indexed image and
turns such an image back into block payloads.

Tiles are stacked in columns 160 pixels wide, in file order, by the packing
of the layout package. Each tile occupies the rows [AtlasTop, AtlasTop +
AtlasHeight) of its block coordinate space; both values are stored on the
tile so that the atlas can be re-encoded without the source DT1.
*/
package tileatlas

import (
	"image"

	"github.com/pkg/errors"

	"github.com/gravestench/d2tiled/pkg/dt1"
	"github.com/gravestench/d2tiled/pkg/indexed"
	"github.com/gravestench/d2tiled/pkg/layout"
)

// HeightStep is the granularity of tile heights and column heights.
const HeightStep = 16

// Options tune Decode.
type Options struct {
	// Zealous trims the fully transparent rows at the top and bottom of each
	// tile instead of keeping every row its block boxes cover.
	Zealous bool
}

type drawnTile struct {
	img  *indexed.Image
	minY int
}

// Decode draws every tile of d into a new atlas. It sets AtlasTop and
// AtlasHeight on each tile and returns the packing it chose.
func Decode(d *dt1.DT1, opts Options) (*indexed.Image, layout.TileColumns, error) {
	drawn := make([]drawnTile, len(d.Tiles))
	heights := make([]int, len(d.Tiles))
	maxHeight := HeightStep

	for tileIdx, tile := range d.Tiles {
		img, minY, err := dt1.DecodeTile(tile)
		if err != nil {
			return nil, layout.TileColumns{}, errors.Wrapf(err, "tile %d", tileIdx)
		}

		drawn[tileIdx] = drawnTile{img: img, minY: minY}

		top, bottom := rowRange(tile, img, minY, opts.Zealous)

		tile.AtlasTop = int32(top)
		tile.AtlasHeight = int32(roundUp(bottom-top, HeightStep))

		heights[tileIdx] = int(tile.AtlasHeight)
		maxHeight = max(maxHeight, heights[tileIdx])
	}

	columns, err := layout.Choose(heights, maxHeight, HeightStep, dt1.TileWidth)
	if err != nil {
		return nil, layout.TileColumns{}, err
	}

	size := columns.Dimensions(dt1.TileWidth)
	atlas := indexed.New(size.X, size.Y)
	points := layout.NewTilesIterator(dt1.TileWidth, columns.FullColumnHeight)

	for tileIdx, tile := range d.Tiles {
		dp := points.Next(heights[tileIdx])

		src := drawn[tileIdx]
		top := int(tile.AtlasTop) - src.minY

		sr := image.Rect(0, top, dt1.TileWidth, top+heights[tileIdx]).Intersect(src.img.Bounds())
		if sr.Empty() {
			continue
		}

		if err = atlas.Blit(dp, src.img, sr); err != nil {
			return nil, layout.TileColumns{}, errors.Wrapf(err, "tile %d", tileIdx)
		}
	}

	return atlas, columns, nil
}

// rowRange is the part of the tile, in block coordinates, that goes into the
// atlas.
func rowRange(tile *dt1.Tile, img *indexed.Image, minY int, zealous bool) (top, bottom int) {
	if !zealous {
		return tile.BlockYRange()
	}

	found := false

	for _, block := range tile.Blocks {
		p := image.Pt(int(block.X), int(block.Y)-minY)

		start, end, ok := img.BoundingDeltaYRange(p, dt1.BlockWidth, tile.BlockHeight())
		if !ok {
			continue
		}

		start, end = start+int(block.Y), end+int(block.Y)

		if !found {
			top, bottom, found = start, end, true
			continue
		}

		top, bottom = min(top, start), max(bottom, end)
	}

	if !found {
		return minY, minY
	}

	return top, bottom
}

// Encode re-encodes every block of d from its place in atlas. The atlas must
// have been laid out by Decode for the same tiles.
func Encode(d *dt1.DT1, atlas *indexed.Image) (dt1.EncodedBlocks, error) {
	if atlas.Height <= 0 {
		return nil, errors.Errorf("atlas of height %d", atlas.Height)
	}

	points := layout.NewTilesIterator(dt1.TileWidth, atlas.Height)
	encoded := make(dt1.EncodedBlocks, len(d.Tiles))

	for tileIdx, tile := range d.Tiles {
		height := int(tile.AtlasHeight)
		if height < 0 || height > atlas.Height {
			return nil, errors.Errorf("tile %d: atlas height %d outside [0, %d]", tileIdx, height, atlas.Height)
		}

		dp := points.Next(height)
		clip := image.Rect(dp.X, dp.Y, dp.X+dt1.TileWidth, dp.Y+height)

		if !clip.In(atlas.Bounds()) {
			return nil, errors.Errorf("tile %d: %v lies outside the %v atlas", tileIdx, clip, atlas.Bounds())
		}

		encoded[tileIdx] = make([][]byte, len(tile.Blocks))

		for blockIdx, block := range tile.Blocks {
			origin := dp.Add(image.Pt(int(block.X), int(block.Y)-int(tile.AtlasTop)))
			box := image.Rect(0, 0, dt1.BlockWidth, tile.BlockHeight()).Add(origin)

			data, err := dt1.EncodeBlock(block.Format, atlas, box, clip)
			if err != nil {
				return nil, errors.Wrapf(err, "tile %d block %d", tileIdx, blockIdx)
			}

			encoded[tileIdx][blockIdx] = data
		}
	}

	return encoded, nil
}

func roundUp(n, step int) int {
	return (n + step - 1) / step * step
}
