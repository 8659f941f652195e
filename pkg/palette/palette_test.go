package palette

import (
	"bytes"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPalette() Palette {
	var p Palette
	for i := 0; i < NumColors; i++ {
		p.Set(uint8(i), RGB{uint8(i), uint8(255 - i), uint8(i * 7)})
	}

	return p
}

func TestSwap(t *testing.T) {
	p := testPalette()
	p.Swap()

	assert.Equal(t, RGB{3 * 7, 252, 3}, p.At(3))

	p.Swap()
	assert.Equal(t, testPalette(), p)
}

func TestFromBytes(t *testing.T) {
	_, err := FromBytes(make([]byte, Size-1))
	assert.Error(t, err)

	src := testPalette()
	p, err := FromBytes(src[:])
	require.NoError(t, err)
	assert.Equal(t, src, p)
}

func TestColorMarksIndexZeroTransparent(t *testing.T) {
	p := testPalette()
	cp := p.Color()

	require.Len(t, cp, NumColors)

	_, _, _, a := cp[Transparent].RGBA()
	assert.Zero(t, a)

	_, _, _, a = cp[Black].RGBA()
	assert.Equal(t, uint32(0xffff), a)

	back, err := FromColor(cp)
	require.NoError(t, err)
	assert.Equal(t, p, back)
}

func TestFromColorTooLong(t *testing.T) {
	_, err := FromColor(make(color.Palette, NumColors+1))
	assert.Error(t, err)
}

func TestTextRoundTrip(t *testing.T) {
	p := testPalette()

	text, err := p.Text()
	require.NoError(t, err)
	assert.Contains(t, string(text), `"#01fe07"`)

	var back Palette
	require.NoError(t, back.ParseText(text))
	assert.Equal(t, p, back)

	assert.Error(t, back.ParseText([]byte(`colors = ["#000000"]`)))
}

func TestInverseToy(t *testing.T) {
	entries := []RGB{{0, 0, 0}, {255, 255, 255}}

	inv, err := BuildInverse(entries)
	require.NoError(t, err)

	assert.Equal(t, uint8(0), inv.Lookup(0, 0, 0))
	assert.Equal(t, uint8(1), inv.Lookup(255, 255, 255))
	assert.Equal(t, uint8(0), inv.Lookup(127, 127, 127))

	// 128 is one step closer to 255 than to 0
	assert.Equal(t, uint8(1), inv.Lookup(128, 128, 128))
}

func TestInverseTiesGoToEarliestEntry(t *testing.T) {
	entries := []RGB{{0, 0, 0}, {254, 254, 254}}

	inv, err := BuildInverse(entries)
	require.NoError(t, err)

	assert.Equal(t, uint8(0), inv.Lookup(127, 127, 127))

	entries[0], entries[1] = entries[1], entries[0]
	inv, err = BuildInverse(entries)
	require.NoError(t, err)

	assert.Equal(t, uint8(0), inv.Lookup(127, 127, 127))
}

func TestInverseMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	entries := make([]RGB, 6)
	for i := range entries {
		entries[i] = RGB{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256))}
	}

	inv, err := BuildInverse(entries)
	require.NoError(t, err)

	for i := 0; i < 2000; i++ {
		_, err := inv.Validate(entries, rng)
		require.NoError(t, err)
	}

	// a sparse sweep of the whole cube
	for r := 0; r < 256; r += 17 {
		for g := 0; g < 256; g += 13 {
			for b := 0; b < 256; b += 11 {
				c := RGB{uint8(r), uint8(g), uint8(b)}
				require.Equal(t, Nearest(entries, c), inv.Lookup(c.R, c.G, c.B), "at %v", c)
			}
		}
	}
}

func TestBuildInverseRejectsBadPalettes(t *testing.T) {
	_, err := BuildInverse(nil)
	assert.Error(t, err)

	_, err = BuildInverse(make([]RGB, NumColors+1))
	assert.Error(t, err)
}

func TestInverseFromBytes(t *testing.T) {
	_, err := InverseFromBytes(make([]byte, 10))
	assert.Error(t, err)

	data := make([]byte, CubeVolume)
	data[cubeIndex(1, 2, 3)] = 9

	inv, err := InverseFromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, uint8(9), inv.Lookup(1, 2, 3))
}

func TestCompressedInverse(t *testing.T) {
	inv, err := BuildInverse([]RGB{{0, 0, 0}, {255, 255, 255}, {200, 10, 10}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, inv.Compress(&buf))
	assert.Less(t, buf.Len(), CubeVolume/100)

	back, err := ReadInverse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, inv, back)

	raw, err := ReadInverse(inv[:])
	require.NoError(t, err)
	assert.Equal(t, inv, raw)

	_, err = ReadInverse(append(bytes.Clone(zstdMagic), 1, 2, 3))
	assert.Error(t, err)
}

func TestQuantize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 30), G: 40, B: uint8(y * 30), A: 255})
		}
	}

	for _, m := range Methods {
		t.Run(string(m), func(t *testing.T) {
			p, err := Quantize(img, m)
			require.NoError(t, err)

			assert.Equal(t, RGB{}, p.At(Transparent))

			opaque := 0
			for _, e := range p.Entries()[1:] {
				if e != (RGB{}) {
					opaque++
				}
			}

			assert.NotZero(t, opaque)
		})
	}

	_, err := Quantize(img, "octree")
	assert.Error(t, err)
}

func TestIndexImage(t *testing.T) {
	inv, err := BuildInverse([]RGB{{0, 0, 0}, {255, 0, 0}})
	require.NoError(t, err)

	m := image.NewRGBA(image.Rect(0, 0, 3, 1))
	m.SetRGBA(0, 0, color.RGBA{A: 255})
	m.SetRGBA(1, 0, color.RGBA{R: 250, G: 10, A: 255})
	m.SetRGBA(2, 0, color.RGBA{R: 10, A: 10})

	out := inv.IndexImage(m)

	assert.Equal(t, []byte{Black, 1, Transparent}, out.Data)
}

func TestUnpremultiply(t *testing.T) {
	assert.Equal(t, uint8(200), unpremultiply(200, 255))
	assert.Equal(t, uint8(255), unpremultiply(128, 128))
	assert.Equal(t, uint8(100), unpremultiply(50, 128))
}
