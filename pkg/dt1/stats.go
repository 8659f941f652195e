package dt1

import (
	"fmt"
	"io"
	"sort"
)

// IndexFrequency counts how often every palette index is painted.
type IndexFrequency [256]int

// Add counts every pixel painted by the blocks of d. Nothing is counted when
// a block fails to decode.
func (f *IndexFrequency) Add(d *DT1) error {
	var counts IndexFrequency

	for _, t := range d.Tiles {
		for _, block := range t.Blocks {
			err := block.walk(func(_, _ int, v byte) error {
				counts[v]++
				return nil
			})
			if err != nil {
				return err
			}
		}
	}

	for i, n := range counts {
		f[i] += n
	}

	return nil
}

// WriteTo lists "index\tcount" lines, least used index first.
func (f *IndexFrequency) WriteTo(w io.Writer) (int64, error) {
	indices := make([]int, len(f))
	for i := range indices {
		indices[i] = i
	}

	sort.SliceStable(indices, func(a, b int) bool {
		return f[indices[a]] < f[indices[b]]
	})

	var total int64

	for _, i := range indices {
		n, err := fmt.Fprintf(w, "%d\t%d\n", i, f[i])
		total += int64(n)

		if err != nil {
			return total, err
		}
	}

	return total, nil
}
