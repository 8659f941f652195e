package spriteatlas

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os/exec"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravestench/d2tiled/pkg/frame"
	"github.com/gravestench/d2tiled/pkg/indexed"
)

// stackPacker puts every rectangle below the previous one.
type stackPacker struct {
	sizes []image.Point
}

func (s *stackPacker) Pack(_ context.Context, sizes []image.Point) ([]image.Point, error) {
	s.sizes = sizes

	points := make([]image.Point, len(sizes))
	y := 0

	for i, size := range sizes {
		points[i] = image.Pt(0, y)
		y += size.Y
	}

	return points, nil
}

type shortPacker struct{}

func (shortPacker) Pack(context.Context, []image.Point) ([]image.Point, error) {
	return nil, nil
}

// testSheet is 2x1 cells of 8x4 with a 2x2 sprite at (3, 1) of the second
// cell; the first cell is empty.
func testSheet() Sheet {
	img := indexed.New(16, 4)
	for _, p := range []image.Point{{11, 1}, {12, 1}, {11, 2}, {12, 2}} {
		img.Data[p.Y*img.Width+p.X] = 5
	}

	return Sheet{Image: img, CellSize: image.Pt(8, 4)}
}

func TestPack(t *testing.T) {
	single := indexed.New(2, 2)
	single.Data[3] = 9

	sheets := []Sheet{testSheet(), {Image: single, CellSize: image.Pt(1, 1)}}
	packer := &stackPacker{}

	atlas, err := Pack(context.Background(), sheets, 100, packer)
	require.NoError(t, err)

	assert.Equal(t, []image.Point{{2, 2}, {1, 1}}, packer.sizes)
	assert.Equal(t, image.Rect(0, 0, 2, 3), atlas.Image.Bounds())

	// the empty first cell still consumes gid 100, and so do the three
	// empty cells of the second sheet
	assert.Equal(t, []Def{
		{GID: 101, Rect: image.Rect(0, 0, 2, 2), Offset: image.Pt(8-4+8-11, 4-2+0-1)},
		{GID: 105, Rect: image.Rect(0, 2, 1, 3), Offset: image.Pt(1-4+1-1, 1-2+1-1)},
	}, atlas.Defs)

	assert.Equal(t, uint8(5), atlas.Image.ColorIndexAt(1, 1))
	assert.Equal(t, uint8(9), atlas.Image.ColorIndexAt(0, 2))
	assert.Equal(t, [7]int{101, 0, 0, 2, 2, 1, 1}, atlas.Defs[0].Values())
}

func TestPackErrors(t *testing.T) {
	_, err := Pack(context.Background(), nil, 1, &stackPacker{})
	assert.Error(t, err)

	_, err = Pack(context.Background(), []Sheet{testSheet()}, 1, shortPacker{})
	assert.Error(t, err)

	ragged := testSheet()
	ragged.CellSize = image.Pt(5, 4)

	_, err = Pack(context.Background(), []Sheet{ragged}, 1, &stackPacker{})
	assert.Error(t, err)
}

func TestText(t *testing.T) {
	atlas, err := Pack(context.Background(), []Sheet{testSheet()}, 1, &stackPacker{})
	require.NoError(t, err)

	text, err := atlas.Text(DefaultImageKey)
	require.NoError(t, err)

	var back map[string][][]int
	_, err = toml.Decode(string(text), &back)
	require.NoError(t, err)
	assert.Equal(t, map[string][][]int{DefaultImageKey: {{2, 0, 0, 2, 2, 1, 1}}}, back)
}

func TestParseCellSize(t *testing.T) {
	size, err := ParseCellSize("160x80")
	require.NoError(t, err)
	assert.Equal(t, image.Pt(160, 80), size)

	for _, bad := range []string{"160", "ax80", "160xb", "0x80"} {
		_, err = ParseCellSize(bad)
		assert.Error(t, err, bad)
	}
}

func TestReadSheets(t *testing.T) {
	pal := color.Palette{color.NRGBA{}}
	for i := 1; i < 8; i++ {
		pal = append(pal, color.NRGBA{R: uint8(i * 30), A: 255})
	}

	other := append(color.Palette{}, pal...)
	other[7] = color.NRGBA{G: 255, A: 255}

	encode := func(p color.Palette) []byte {
		data, err := indexed.PNGBytes(testSheet().Image, p)
		require.NoError(t, err)

		return data
	}

	var buf bytes.Buffer
	w := frame.NewWriter(&buf)
	require.NoError(t, w.WriteFrame(encode(pal)))
	require.NoError(t, w.WriteFrame(encode(pal)))

	sheets, got, err := ReadSheets(bytes.NewReader(buf.Bytes()), []image.Point{{8, 4}, {4, 4}})
	require.NoError(t, err)
	require.Len(t, sheets, 2)
	assert.Equal(t, image.Pt(4, 4), sheets[1].CellSize)
	assert.Equal(t, testSheet().Image, sheets[0].Image)
	assert.Len(t, got, 8)

	_, _, err = ReadSheets(bytes.NewReader(buf.Bytes()), []image.Point{{8, 4}, {8, 4}, {8, 4}})
	assert.Error(t, err)

	require.NoError(t, w.WriteFrame(encode(other)))

	_, _, err = ReadSheets(bytes.NewReader(buf.Bytes()), []image.Point{{8, 4}, {8, 4}, {8, 4}})
	assert.Error(t, err)
}

func TestExecPacker(t *testing.T) {
	if _, err := exec.LookPath("awk"); err != nil {
		t.Skip("awk not available")
	}

	packer := ExecPacker{Path: "awk", Args: []string{"{ print 0, y + 0; y += $2 }"}}

	points, err := packer.Pack(context.Background(), []image.Point{{3, 4}, {5, 6}, {1, 1}})
	require.NoError(t, err)
	assert.Equal(t, []image.Point{{0, 0}, {0, 4}, {0, 10}}, points)

	_, err = ExecPacker{Path: "awk", Args: []string{"{ print $1 }"}}.Pack(context.Background(), []image.Point{{3, 4}})
	assert.Error(t, err)
}

func TestParsePoints(t *testing.T) {
	points, err := parsePoints(bytes.NewBufferString("1 2\n\n3 4\n"))
	require.NoError(t, err)
	assert.Equal(t, []image.Point{{1, 2}, {3, 4}}, points)

	_, err = parsePoints(bytes.NewBufferString("1 x\n"))
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "line 1"))
}
