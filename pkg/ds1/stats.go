package ds1

import (
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"
)

// TileID identifies a tile by orientation, main index and sub index.
type TileID [3]uint8

func (id TileID) String() string {
	return fmt.Sprintf("[%d, %d, %d]", id[0], id[1], id[2])
}

// TileIDFrequency counts the occupied cells drawing every tile.
type TileIDFrequency map[TileID]int

// Add counts the occupied cells of the layers filter admits.
func (f TileIDFrequency) Add(d *DS1, filter LayerFilter) {
	d.eachTileLayer(filter, func(i int, wall bool) {
		for j, cell := range d.Layers[i] {
			if cell.Occupied() {
				f[TileID{d.orientationAt(i, j, wall), cell.MainIndex(), cell.SubIndex()}]++
			}
		}
	})
}

// WriteTo lists "[orientation, main, sub]\tcount" lines, least used first.
func (f TileIDFrequency) WriteTo(w io.Writer) (int64, error) {
	ids := make([]TileID, 0, len(f))
	for id := range f {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(a, b int) bool {
		if f[ids[a]] != f[ids[b]] {
			return f[ids[a]] < f[ids[b]]
		}

		return lessTileID(ids[a], ids[b])
	})

	var total int64

	for _, id := range ids {
		n, err := fmt.Fprintf(w, "%s\t%d\n", id, f[id])
		total += int64(n)

		if err != nil {
			return total, err
		}
	}

	return total, nil
}

func lessTileID(a, b TileID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}

	return false
}

// Component is one field of a cell's tile ID.
type Component string

const (
	ComponentOrientation Component = "orientation"
	ComponentMainIndex   Component = "main-index"
	ComponentSubIndex    Component = "sub-index"
)

// Components lists the accepted components.
var Components = []Component{ComponentOrientation, ComponentMainIndex, ComponentSubIndex}

// ComponentFrequency counts the values one component takes over the
// occupied cells.
type ComponentFrequency struct {
	component Component
	counts    []int
}

// NewComponentFrequency returns an empty count for component.
func NewComponentFrequency(component Component) (*ComponentFrequency, error) {
	var maxValue int

	switch component {
	case ComponentOrientation:
		maxValue = OrientationMask
	case ComponentMainIndex:
		maxValue = MainIndexMax
	case ComponentSubIndex:
		maxValue = SubIndexMax
	default:
		return nil, errors.Errorf("unknown cell component %q", component)
	}

	return &ComponentFrequency{component: component, counts: make([]int, maxValue+1)}, nil
}

// Add counts the occupied cells of the layers filter admits.
func (f *ComponentFrequency) Add(d *DS1, filter LayerFilter) {
	d.eachTileLayer(filter, func(i int, wall bool) {
		for j, cell := range d.Layers[i] {
			if !cell.Occupied() {
				continue
			}

			switch f.component {
			case ComponentOrientation:
				f.counts[d.orientationAt(i, j, wall)]++
			case ComponentMainIndex:
				f.counts[cell.MainIndex()]++
			case ComponentSubIndex:
				f.counts[cell.SubIndex()]++
			}
		}
	})
}

// Count is the number of cells seen with the given value.
func (f *ComponentFrequency) Count(value int) int {
	if value < 0 || value >= len(f.counts) {
		return 0
	}

	return f.counts[value]
}

// WriteTo lists "value\tcount" lines for every possible value, least used
// first.
func (f *ComponentFrequency) WriteTo(w io.Writer) (int64, error) {
	values := make([]int, len(f.counts))
	for i := range values {
		values[i] = i
	}

	sort.SliceStable(values, func(a, b int) bool {
		return f.counts[values[a]] < f.counts[values[b]]
	})

	var total int64

	for _, v := range values {
		n, err := fmt.Fprintf(w, "%d\t%d\n", v, f.counts[v])
		total += int64(n)

		if err != nil {
			return total, err
		}
	}

	return total, nil
}
