package dt1

import (
	"image"

	"github.com/pkg/errors"

	"github.com/gravestench/d2tiled/pkg/cursor"
	"github.com/gravestench/d2tiled/pkg/indexed"
)

// EncodeBlock produces the payload of a block in the given format from the
// box of img. Pixels outside clip are read as transparent, and so are pixels
// of RLE isometric blocks that fall outside the floor diamond.
func EncodeBlock(format BlockDataFormat, img *indexed.Image, box, clip image.Rectangle) ([]byte, error) {
	at := func(x, y int) byte {
		p := box.Min.Add(image.Pt(x, y))
		if !p.In(clip) {
			return indexed.Transparent
		}

		if format == BlockFormatRLEIsometric && !inDiamond(x, y) {
			return indexed.Transparent
		}

		return img.ColorIndexAt(p.X, p.Y)
	}

	switch {
	case format == BlockFormatIsometric:
		return encodeIsometric(at), nil
	case format.IsRLE():
		return encodeRunLengthEncoded(at, box.Dx(), box.Dy()), nil
	}

	return nil, errors.Wrapf(cursor.ErrMalformed, "unknown format tag 0x%04x", uint16(format))
}

func inDiamond(x, y int) bool {
	return y >= 0 && y < isometricRows && x >= xjump[y] && x < xjump[y]+nbpix[y]
}

func encodeIsometric(at func(x, y int) byte) []byte {
	data := make([]byte, 0, isometricDataLength)

	for y := 0; y < isometricRows; y++ {
		for x := xjump[y]; x < xjump[y]+nbpix[y]; x++ {
			data = append(data, at(x, y))
		}
	}

	return data
}

// runs are emitted greedily left to right, and every row, empty or not, is
// closed with a (0, 0) pair.
func encodeRunLengthEncoded(at func(x, y int) byte, width, height int) []byte {
	var data []byte

	for y := 0; y < height; y++ {
		jump := 0

		for x := 0; x < width; {
			if at(x, y) == indexed.Transparent {
				jump++
				x++

				continue
			}

			start := x
			for x < width && at(x, y) != indexed.Transparent {
				x++
			}

			data = append(data, byte(jump), byte(x-start))
			for i := start; i < x; i++ {
				data = append(data, at(i, y))
			}

			jump = 0
		}

		data = append(data, 0, 0)
	}

	return data
}
