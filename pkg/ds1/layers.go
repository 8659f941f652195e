package ds1

import (
	"github.com/pkg/errors"
)

// FloorOrientation is the orientation of every floor tile.
const FloorOrientation = 0

// LayerFilter selects drawing layers.
type LayerFilter struct {
	SkipWallLayers  bool
	SkipFloorLayers bool
}

// numDrawingLayers counts the wall, orientation and floor layers: everything
// before the shadow and tag layers.
func (d *DS1) numDrawingLayers() int {
	n := len(d.Layers) - shadowLayers
	if d.HasTagLayer() {
		n--
	}

	return max(n, 0)
}

func (d *DS1) isWallLayer(i int) bool {
	return i < 2*int(d.NumWallLayers)
}

// eachTileLayer calls fn with the index of every wall and floor layer that
// filter admits. Orientation layers are never visited.
func (d *DS1) eachTileLayer(filter LayerFilter, fn func(i int, wall bool)) {
	for i := 0; i < d.numDrawingLayers(); i++ {
		wall := d.isWallLayer(i)

		switch {
		case wall && i%2 == 1:
			continue
		case wall && filter.SkipWallLayers:
			continue
		case !wall && filter.SkipFloorLayers:
			continue
		}

		fn(i, wall)
	}
}

// orientationAt is the orientation of the tile drawn by cell j of tile
// layer i: the paired orientation layer for walls, FloorOrientation
// otherwise.
func (d *DS1) orientationAt(i, j int, wall bool) uint8 {
	if wall && i+1 < len(d.Layers) {
		return d.Layers[i+1][j].Orientation()
	}

	return FloorOrientation
}

// floorLayers are the layers between the wall pairs and the shadow layer.
func (d *DS1) floorLayers() [][]Cell {
	first := min(2*int(d.NumWallLayers), d.numDrawingLayers())

	return d.Layers[first:d.numDrawingLayers()]
}

// SetFloor gives every occupied floor cell the tile ID (mainIndex, subIndex).
func (d *DS1) SetFloor(mainIndex, subIndex uint8) error {
	if mainIndex > MainIndexMax {
		return errors.Errorf("main index %d exceeds %d", mainIndex, MainIndexMax)
	}

	for _, layer := range d.floorLayers() {
		for j, cell := range layer {
			if cell.Occupied() {
				layer[j] = cell.WithTileID(mainIndex, subIndex)
			}
		}
	}

	return nil
}

type extent struct {
	min, max int
}

func (e *extent) add(v int) {
	e.min = min(e.min, v)
	e.max = max(e.max, v)
}

func (e extent) isEnd(v int) bool {
	return v == e.min || v == e.max
}

// RuleFloor rewrites the edge cells of the first floor layer to the main
// index mainIndex. Among the occupied cells, other than the corners (0, 0)
// and (xMax, yMax), a cell topmost or bottommost in its column takes its x
// as sub index, and a cell leftmost or rightmost in its row takes its y.
// Cells that are both, or neither, are left alone.
func (d *DS1) RuleFloor(mainIndex uint8) error {
	if mainIndex > MainIndexMax {
		return errors.Errorf("main index %d exceeds %d", mainIndex, MainIndexMax)
	}

	floors := d.floorLayers()
	if len(floors) == 0 {
		return errors.New("map has no floor layer")
	}

	floor := floors[0]
	width, height := int(d.XMax)+1, int(d.YMax)+1

	columns := make([]extent, width)
	rows := make([]extent, height)

	for i := range columns {
		columns[i] = extent{min: height, max: -1}
	}

	for i := range rows {
		rows[i] = extent{min: width, max: -1}
	}

	corner := func(x, y int) bool {
		return (x == 0 && y == 0) || (x == width-1 && y == height-1)
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if floor[y*width+x].Occupied() && !corner(x, y) {
				columns[x].add(y)
				rows[y].add(x)
			}
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			cell := &floor[y*width+x]

			switch vertical, horizontal := columns[x].isEnd(y), rows[y].isEnd(x); {
			case vertical && !horizontal:
				*cell = cell.WithTileID(mainIndex, uint8(x))
			case horizontal && !vertical:
				*cell = cell.WithTileID(mainIndex, uint8(y))
			}
		}
	}

	return nil
}
