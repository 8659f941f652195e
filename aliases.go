package d2tiled

import (
	"github.com/gravestench/d2tiled/pkg/ds1"
	"github.com/gravestench/d2tiled/pkg/dt1"
)

type (
	DT1             = dt1.DT1
	Tile            = dt1.Tile
	Block           = dt1.Block
	MaterialFlags   = dt1.MaterialFlags
	SubTileFlags    = dt1.SubTileFlags
	BlockDataFormat = dt1.BlockDataFormat

	DS1  = ds1.DS1
	Cell = ds1.Cell
)

// DT1FromBytes parses a DT1 tileset.
func DT1FromBytes(fileData []byte) (result *DT1, err error) {
	return dt1.FromBytes(fileData)
}

// DS1FromBytes parses a DS1 map and reports how many bytes followed it.
func DS1FromBytes(fileData []byte) (result *DS1, trailing int, err error) {
	return ds1.FromBytes(fileData)
}

// NewSubTileFlags wraps a stored sub-tile flag byte.
func NewSubTileFlags(data byte) SubTileFlags {
	return dt1.NewSubTileFlags(data)
}

// NewMaterialFlags splits a stored material word into its fields.
func NewMaterialFlags(data uint16) (MaterialFlags, error) {
	return dt1.NewMaterialFlags(data)
}
