package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/gravestench/d2tiled/pkg/ds1"
	"github.com/gravestench/d2tiled/pkg/dt1"
	"github.com/gravestench/d2tiled/pkg/frame"
	"github.com/gravestench/d2tiled/pkg/indexed"
	"github.com/gravestench/d2tiled/pkg/palette"
)

// run executes the app on input and returns what it wrote to standard
// output and standard error.
func run(t *testing.T, input []byte, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	app := newApp()
	app.Reader = bytes.NewReader(input)
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(append([]string{"d2tiled"}, args...))

	return stdout.String(), stderr.String(), err
}

func testPalette() palette.Palette {
	var p palette.Palette
	for i := 1; i < palette.NumColors; i++ {
		p.Set(uint8(i), palette.RGB{R: uint8(i), G: uint8(255 - i), B: uint8(i / 2)})
	}

	return p
}

func testDT1(t *testing.T) []byte {
	img := indexed.New(dt1.BlockWidth, dt1.WallBlockHeight)
	for i := range img.Data {
		if i%3 != 0 {
			img.Data[i] = byte(i%200 + 1)
		}
	}

	payload, err := dt1.EncodeBlock(dt1.BlockFormatRLE, img, img.Bounds(), img.Bounds())
	require.NoError(t, err)

	d := &dt1.DT1{Tiles: []*dt1.Tile{{
		Orientation: 1,
		Height:      -32,
		Width:       dt1.TileWidth,
		MainIndex:   3,
		Blocks: []*dt1.Block{
			{X: 64, Y: -32, Format: dt1.BlockFormatRLE},
		},
	}}}

	data, err := d.Bytes(dt1.EncodedBlocks{{payload}})
	require.NoError(t, err)

	return data
}

func TestPalSwap(t *testing.T) {
	p := testPalette()

	out, _, err := run(t, p[:], "pal", "swap")
	require.NoError(t, err)

	p.Swap()
	assert.Equal(t, string(p[:]), out)

	_, _, err = run(t, p[:10], "pal", "swap")
	assert.Error(t, err)
}

func TestPalDumpThenLoad(t *testing.T) {
	p := testPalette()

	text, _, err := run(t, p[:], "pal", "dump")
	require.NoError(t, err)
	assert.Contains(t, text, "colors")

	out, _, err := run(t, []byte(text), "pal", "load")
	require.NoError(t, err)
	assert.Equal(t, string(p[:]), out)
}

func TestPNGIndexWithCompressedInverse(t *testing.T) {
	var p palette.Palette
	p.Set(1, palette.RGB{R: 255})

	inv, err := palette.BuildInverse([]palette.RGB{{}, {R: 255}})
	require.NoError(t, err)

	var compressed bytes.Buffer
	require.NoError(t, inv.Compress(&compressed))

	name := filepath.Join(t.TempDir(), "inverse.zst")
	require.NoError(t, os.WriteFile(name, compressed.Bytes(), 0o644))

	m := image.NewRGBA(image.Rect(0, 0, 2, 1))
	m.SetRGBA(0, 0, color.RGBA{R: 240, G: 20, A: 255})

	var input bytes.Buffer
	input.Write(p[:])
	require.NoError(t, png.Encode(&input, m))

	out, _, err := run(t, input.Bytes(), "png", "index", "--inverse", name)
	require.NoError(t, err)

	img, _, err := indexed.DecodePNG(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, palette.Transparent}, img.Data)

	_, _, err = run(t, input.Bytes(), "png", "index")
	assert.Error(t, err)
}

func TestDT1DecodeThenEncode(t *testing.T) {
	p := testPalette()
	data := testDT1(t)

	decoded, stderr, err := run(t, append(append([]byte{}, p[:]...), data...), "--verbose", "dt1", "decode")
	require.NoError(t, err)
	assert.Contains(t, stderr, "[160, 32]")
	assert.Contains(t, stderr, "maxTileHeight = 32, maxAtlasHeight = 32")

	encoded, _, err := run(t, []byte(decoded), "dt1", "encode")
	require.NoError(t, err)
	assert.Equal(t, string(data), encoded)

	grid, stderr, err := run(t, []byte(decoded), "-v", "tiles", "grid")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"tileheight":32`)

	img, _, err := indexed.DecodePNG(strings.NewReader(grid))
	require.NoError(t, err)
	assert.Equal(t, dt1.TileWidth, img.Width)
}

func TestDT1Repack(t *testing.T) {
	data := testDT1(t)

	out, _, err := run(t, data, "dt1", "repack")
	require.NoError(t, err)
	assert.Equal(t, string(data), out)

	_, _, err = run(t, data[:100], "dt1", "repack")
	assert.Error(t, err)
}

func TestDT1StatsSkipsBrokenFiles(t *testing.T) {
	var input bytes.Buffer
	w := frame.NewWriter(&input)
	require.NoError(t, w.WriteFrame(testDT1(t)))
	require.NoError(t, w.WriteFrame([]byte("broken")))

	out, stderr, err := run(t, input.Bytes(), "--verbose", "dt1", "stats")
	require.NoError(t, err)
	assert.Contains(t, stderr, "skipping file 2")
	assert.Len(t, strings.Split(strings.TrimSuffix(out, "\n"), "\n"), 256)
}

func testDS1(t *testing.T) []byte {
	m := &ds1.DS1{
		Version:       7,
		XMax:          1,
		NumWallLayers: 1,
		NumFloors:     1,
		Files:         []string{"floor.dt1"},
		Layers: [][]ds1.Cell{
			{ds1.Cell(1).WithTileID(1, 2), 0},
			{3, 0},
			{ds1.Cell(1).WithTileID(30, 0), ds1.Cell(1).WithTileID(0, 5)},
			{1, 1},
		},
	}

	data, err := m.Bytes()
	require.NoError(t, err)

	return data
}

func TestDS1DecodeThenEncode(t *testing.T) {
	data := testDS1(t)

	text, stderr, err := run(t, data, "--verbose", "ds1", "decode")
	require.NoError(t, err)
	assert.Contains(t, stderr, "v7 0")

	out, _, err := run(t, []byte(text), "ds1", "encode")
	require.NoError(t, err)
	assert.Equal(t, string(data), out)

	out, stderr, err = run(t, []byte("garbage"), "ds1", "decode")
	assert.Error(t, err)
	assert.Empty(t, out)
	assert.Empty(t, stderr)
}

func TestDS1SetFloor(t *testing.T) {
	text, _, err := run(t, testDS1(t), "ds1", "decode")
	require.NoError(t, err)

	out, _, err := run(t, []byte(text), "ds1", "set-floor", "4", "6")
	require.NoError(t, err)

	m, err := ds1.ParseText([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, uint8(4), m.Layers[2][0].MainIndex())
	assert.Equal(t, uint8(6), m.Layers[2][1].SubIndex())

	_, _, err = run(t, []byte(text), "ds1", "set-floor", "x", "6")
	assert.Error(t, err)
}

func TestDS1Layers(t *testing.T) {
	text, _, err := run(t, testDS1(t), "ds1", "decode")
	require.NoError(t, err)

	out, _, err := run(t, []byte(text), "ds1", "layers")
	require.NoError(t, err)
	assert.Equal(t, "\ub302\u3164,\n\n"+"\uae30\uac05,\n\n", out)
}

func TestDS1Stats(t *testing.T) {
	var input bytes.Buffer
	w := frame.NewWriter(&input)
	require.NoError(t, w.WriteFrame(testDS1(t)))
	require.NoError(t, w.WriteFrame(testDS1(t)))

	out, _, err := run(t, input.Bytes(), "ds1", "stats", "--skip-floor-layers")
	require.NoError(t, err)
	assert.Equal(t, "[3, 1, 2]\t2\n", out)

	out, _, err = run(t, input.Bytes(), "ds1", "stats", "--component", "sub-index")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "\n0\t2\n2\t2\n5\t2\n"), out)

	_, _, err = run(t, input.Bytes(), "ds1", "stats", "--component", "colour")
	assert.Error(t, err)
}

func TestFrameCatThenSplit(t *testing.T) {
	dir := t.TempDir()

	a, b := filepath.Join(dir, "a"), filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(a, []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("beta"), 0o644))

	list := filepath.Join(dir, "list")
	require.NoError(t, os.WriteFile(list, []byte(b+"\n"), 0o644))

	out, _, err := run(t, nil, "frame", "cat", "--list", list, a)
	require.NoError(t, err)
	assert.Equal(t, "5\nalpha4\nbeta", out)

	x, y := filepath.Join(dir, "x"), filepath.Join(dir, "y")

	rest, _, err := run(t, []byte(out+"tail"), "frame", "split", x, y)
	require.NoError(t, err)
	assert.Equal(t, "tail", rest)

	got, err := os.ReadFile(y)
	require.NoError(t, err)
	assert.Equal(t, "beta", string(got))

	_, _, err = run(t, nil, "frame", "cat")
	assert.Error(t, err)
}
