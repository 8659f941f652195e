package palette

import (
	"bytes"
	"io"
	"math"
	"math/rand"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

const (
	cubeSide = 256

	// CubeVolume is the number of entries in an inverse palette.
	CubeVolume = cubeSide * cubeSide * cubeSide
)

// Inverse maps every RGB triple to the index of its nearest palette entry
// under squared euclidean distance.
type Inverse [CubeVolume]byte

func cubeIndex(r, g, b uint8) int {
	return int(r)<<16 | int(g)<<8 | int(b)
}

// BuildInverse computes the inverse of entries, which may hold at most 256
// colours. Ties go to the earliest entry.
//
// Distances are propagated incrementally as in S. W. Thomas, "Efficient
// Inverse Color Map Computation" (1991): walking b from 0 to 255 the squared
// distance (b-pb)² changes by 2b+1-2pb, so each entry touches the cube with
// additions only.
func BuildInverse(entries []RGB) (*Inverse, error) {
	if len(entries) == 0 || len(entries) > NumColors {
		return nil, errors.Errorf("inverse palette needs 1 to %d entries, got %d", NumColors, len(entries))
	}

	inv := new(Inverse)

	best := make([]int32, CubeVolume)
	for j := range best {
		best[j] = math.MaxInt32
	}

	for i, c := range entries {
		pr, pg, pb := int32(c.R), int32(c.G), int32(c.B)

		rdist := pr*pr + pg*pg + pb*pb
		rinc, ginc, binc := 1-2*pr, 1-2*pg, 1-2*pb

		j := 0

		for r, rxx := 0, rinc; r < cubeSide; r, rxx = r+1, rxx+2 {
			gdist := rdist

			for g, gxx := 0, ginc; g < cubeSide; g, gxx = g+1, gxx+2 {
				bdist := gdist

				for b, bxx := 0, binc; b < cubeSide; b, bxx = b+1, bxx+2 {
					if bdist < best[j] {
						best[j] = bdist
						inv[j] = byte(i)
					}

					j++
					bdist += bxx
				}

				gdist += gxx
			}

			rdist += rxx
		}
	}

	return inv, nil
}

// InverseFromBytes views a serialized inverse palette.
func InverseFromBytes(data []byte) (*Inverse, error) {
	if len(data) != CubeVolume {
		return nil, errors.Errorf("inverse palette must be %d bytes, got %d", CubeVolume, len(data))
	}

	return (*Inverse)(data), nil
}

// Lookup returns the index of the entry nearest to (r, g, b).
func (inv *Inverse) Lookup(r, g, b uint8) uint8 {
	return inv[cubeIndex(r, g, b)]
}

// Validate checks the table against a brute force search for one random
// colour, which it returns.
func (inv *Inverse) Validate(entries []RGB, rng *rand.Rand) (RGB, error) {
	test := RGB{uint8(rng.Intn(cubeSide)), uint8(rng.Intn(cubeSide)), uint8(rng.Intn(cubeSide))}

	nearest := Nearest(entries, test)
	if got := inv.Lookup(test.R, test.G, test.B); got != nearest {
		const fmtErr = "inverse palette disagrees at %v: table has %d, nearest is %d"
		return test, errors.Errorf(fmtErr, test, got, nearest)
	}

	return test, nil
}

// Nearest finds the entry closest to c by brute force. Ties go to the
// earliest entry.
func Nearest(entries []RGB, c RGB) uint8 {
	bestDist, bestIdx := int32(math.MaxInt32), 0

	for i, e := range entries {
		if d := sqDist(e, c); d < bestDist {
			bestDist, bestIdx = d, i
		}
	}

	return uint8(bestIdx)
}

func sqDist(a, b RGB) int32 {
	dr, dg, db := int32(a.R)-int32(b.R), int32(a.G)-int32(b.G), int32(a.B)-int32(b.B)
	return dr*dr + dg*dg + db*db
}

// zstdMagic opens every zstd frame.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Compress writes the table as a single zstd frame.
func (inv *Inverse) Compress(w io.Writer) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return errors.Wrap(err, "creating zstd encoder")
	}

	if _, err = enc.Write(inv[:]); err != nil {
		_ = enc.Close()
		return errors.Wrap(err, "compressing inverse palette")
	}

	return errors.Wrap(enc.Close(), "compressing inverse palette")
}

// ReadInverse loads a table written raw or by Compress.
func ReadInverse(data []byte) (*Inverse, error) {
	if !bytes.HasPrefix(data, zstdMagic) {
		return InverseFromBytes(data)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating zstd decoder")
	}

	defer dec.Close()

	raw, err := dec.DecodeAll(data, make([]byte, 0, CubeVolume))
	if err != nil {
		return nil, errors.Wrap(err, "decompressing inverse palette")
	}

	return InverseFromBytes(raw)
}
