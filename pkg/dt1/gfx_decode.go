package dt1

import (
	"image"

	"github.com/pkg/errors"

	"github.com/gravestench/d2tiled/pkg/cursor"
	"github.com/gravestench/d2tiled/pkg/indexed"
)

const (
	isometricDataLength = 256
	isometricRows       = 15
)

var (
	xjump = [isometricRows]int{14, 12, 10, 8, 6, 4, 2, 0, 2, 4, 6, 8, 10, 12, 14}
	nbpix = [isometricRows]int{4, 8, 12, 16, 20, 24, 28, 32, 28, 24, 20, 16, 12, 8, 4}
)

// pixelFunc receives every pixel a payload paints, relative to the block's
// top-left corner.
type pixelFunc func(x, y int, v byte) error

// Decode paints the block into dst with its top-left corner at origin.
// Painted pixels must not use index 0; RLE data skips transparent pixels and
// isometric data has none.
func (block *Block) Decode(dst *indexed.Image, origin image.Point) error {
	return block.walk(func(x, y int, v byte) error {
		if v == indexed.Transparent {
			const fmtErr = "block paints transparent index at (%d, %d)"
			return errors.Wrapf(cursor.ErrMalformed, fmtErr, x, y)
		}

		return dst.SetColorIndex(origin.X+x, origin.Y+y, v)
	})
}

func (block *Block) walk(fn pixelFunc) error {
	if block.Format == BlockFormatIsometric {
		return block.decodeIsometric(fn)
	}

	return block.decodeRunLengthEncoded(fn)
}

/*
the way the data is encoded is in runs of non-blank pixels
in the following diagram, an `x` is an opaque pixel

	  xjump -------|
		           |
		           v
		            xxxx <----- nbpix[0] == 4
		          xxxxxxxx <----- nbpix[1] == 8
		        xxxxxxxxxxxx
		      xxxxxxxxxxxxxxxx
		    xxxxxxxxxxxxxxxxxxxx
		  xxxxxxxxxxxxxxxxxxxxxxxx
		xxxxxxxxxxxxxxxxxxxxxxxxxxxx
	  xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx
		xxxxxxxxxxxxxxxxxxxxxxxxxxxx
		  xxxxxxxxxxxxxxxxxxxxxxxx
		    xxxxxxxxxxxxxxxxxxxx
		      xxxxxxxxxxxxxxxx
		        xxxxxxxxxxxx
		          xxxxxxxx
		            xxxx

`xjump` is the number of pixels from the left edge, for each group of non-blank pixels
the index into xjump is the current row

`nbpix` contains the integer length for runs of non-blank pixels
the index into nbpix is the current row

the payload is exactly 256 bytes, one per pixel of the diamond
*/
func (block *Block) decodeIsometric(fn pixelFunc) error {
	if len(block.EncodedData) != isometricDataLength {
		const fmtErr = "isometric payload is %d bytes, want %d"
		return errors.Wrapf(cursor.ErrMalformed, fmtErr, len(block.EncodedData), isometricDataLength)
	}

	idx := 0

	for y := 0; y < isometricRows; y++ {
		for x := xjump[y]; x < xjump[y]+nbpix[y]; x++ {
			if err := fn(x, y, block.EncodedData[idx]); err != nil {
				return err
			}

			idx++
		}
	}

	return nil
}

// run-length data is a sequence of (xjump, xsolid) byte pairs: skip xjump
// pixels, then paint the next xsolid bytes. a (0, 0) pair ends the row.
func (block *Block) decodeRunLengthEncoded(fn pixelFunc) error {
	data := block.EncodedData

	var x, y, idx int

	for idx < len(data) {
		if idx+1 >= len(data) {
			return errors.Wrapf(cursor.ErrMalformed, "run header cut off at payload byte %d", idx)
		}

		b1, b2 := int(data[idx]), int(data[idx+1])
		idx += 2

		if (b1 | b2) == 0 {
			x = 0
			y++

			continue
		}

		x += b1

		if idx+b2 > len(data) {
			const fmtErr = "run of %d pixels at payload byte %d overruns %d byte payload"
			return errors.Wrapf(cursor.ErrMalformed, fmtErr, b2, idx, len(data))
		}

		for ; b2 > 0; b2-- {
			if err := fn(x, y, data[idx]); err != nil {
				return err
			}

			idx++
			x++
		}
	}

	return nil
}

// DecodeTile paints every block of t into a fresh image TileWidth pixels wide
// and tall enough for all of its block boxes. Block y coordinates are shifted
// so the topmost block box starts at row 0; that shift is returned.
func DecodeTile(t *Tile) (img *indexed.Image, minY int, err error) {
	minY, maxY := t.BlockYRange()

	width := TileWidth
	for _, block := range t.Blocks {
		width = max(width, int(block.X)+BlockWidth)
	}

	img = indexed.New(width, maxY-minY)

	for blockIdx, block := range t.Blocks {
		if err = block.Decode(img, image.Pt(int(block.X), int(block.Y)-minY)); err != nil {
			return nil, 0, errors.Wrapf(err, "block %d", blockIdx)
		}
	}

	return img, minY, nil
}
