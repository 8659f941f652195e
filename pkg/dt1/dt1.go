/*
Package dt1 reads and writes DT1 tilesets.

A DT1 file is a 276 byte header, a table of 96 byte tile headers, and for every
tile a table of 20 byte block headers followed by the block payloads. Block
payloads are pixel data in one of two encodings: a fixed 256 byte isometric
diamond, or rows of run-length encoded spans.
*/
package dt1

import (
	"github.com/pkg/errors"

	"github.com/gravestench/d2tiled/pkg/cursor"
)

const (
	expectedV1, expectedV2 = 7, 6

	headerBytes      = 276
	tileHeaderBytes  = 96
	blockHeaderBytes = 20
)

// FromBytes loads a DT1 record. Block payloads are kept as sub-slices of
// fileData.
func FromBytes(fileData []byte) (result *DT1, err error) {
	result = &DT1{}
	stream := cursor.New(fileData)

	numTiles, err := result.decodeDT1Header(stream)
	if err != nil {
		return nil, errors.Wrap(err, "decoding header")
	}

	if err = result.decodeDT1Body(stream, numTiles); err != nil {
		return nil, err
	}

	if stream.Remaining() != 0 {
		const fmtErr = "%d bytes after the last block payload"
		return nil, errors.Wrapf(cursor.ErrMalformed, fmtErr, stream.Remaining())
	}

	return result, nil
}

// DT1 represents a DT1 file.
type DT1 struct {
	FileHeader FileHeader `toml:"fileHeader"`
	Tiles      []*Tile    `toml:"tile"`
}

// FileHeader holds the fixed fields at the start of the file. The tile count
// is implied by the tile list.
type FileHeader struct {
	Version            [2]int32 `toml:"version"`
	TileHeadersPointer int32    `toml:"tileHeadersPointer"`
}

func (d *DT1) decodeDT1Header(stream *cursor.Cursor) (numTiles int32, err error) {
	const (
		zeroBytes = 260
	)

	if err = d.decodeDT1Version(stream); err != nil {
		return 0, err
	}

	stream.ConsumeZeros(zeroBytes)

	numTiles = stream.Int32()
	d.FileHeader.TileHeadersPointer = stream.Int32()

	stream.ExpectPosition(int(d.FileHeader.TileHeadersPointer), "tile headers")

	if err = stream.Err(); err != nil {
		return 0, err
	}

	if numTiles < 0 || int(numTiles) > stream.Remaining()/tileHeaderBytes {
		return 0, errors.Wrapf(cursor.ErrTruncated, "%d tile headers do not fit", numTiles)
	}

	return numTiles, nil
}

func (d *DT1) decodeDT1Version(stream *cursor.Cursor) error {
	ver1 := stream.Int32()
	ver2 := stream.Int32()

	if err := stream.Err(); err != nil {
		return err
	}

	d.FileHeader.Version = [2]int32{ver1, ver2}

	if ver1 != expectedV1 || ver2 != expectedV2 {
		const fmtErr = "expected to have a version of %d.%d, got %d.%d instead"
		return errors.Wrapf(cursor.ErrVersionMismatch, fmtErr, expectedV1, expectedV2, ver1, ver2)
	}

	return nil
}

func (d *DT1) decodeDT1Body(stream *cursor.Cursor, numTiles int32) error {
	if err := d.decodeTilesStage1(stream, numTiles); err != nil {
		return errors.Wrap(err, "decoding tile headers")
	}

	if err := d.decodeTilesStage2(stream); err != nil {
		return err
	}

	return nil
}

func (d *DT1) decodeTilesStage1(stream *cursor.Cursor, numTiles int32) error {
	const (
		zeros1Bytes = 4
		zeros2Bytes = 7
		zeros3Bytes = 4
		zeros4Bytes = 4
	)

	d.Tiles = make([]*Tile, numTiles)

	// errors are sticky, so we only check once per tile
	for tileIdx := range d.Tiles {
		newTile := &Tile{}

		newTile.Direction = stream.Int32()
		newTile.RoofHeight = stream.Int16()

		materials, err := NewMaterialFlags(stream.Uint16())
		if err != nil {
			stream.Fail(errors.Wrapf(err, "tile %d", tileIdx))
		}

		newTile.MaterialFlags = materials

		newTile.Height = stream.Int32()
		newTile.Width = stream.Int32()

		stream.ConsumeZeros(zeros1Bytes)

		newTile.Orientation = stream.Int32()
		newTile.MainIndex = stream.Int32()
		newTile.SubIndex = stream.Int32()
		newTile.RarityOrFrameIndex = stream.Int32()

		stream.ReadInto(newTile.Unknown[:])

		for i := range newTile.SubTileFlags {
			newTile.SubTileFlags[i] = NewSubTileFlags(stream.Uint8())
		}

		stream.ConsumeZeros(zeros2Bytes)

		newTile.BlockHeadersPointer = stream.Int32()
		newTile.BlockDataLength = stream.Int32()
		numBlocks := stream.Int32()

		stream.ConsumeZeros(zeros3Bytes)
		stream.ReadInto(newTile.AlmostAlwaysZeros[:])
		stream.ConsumeZeros(zeros4Bytes)

		if err := stream.Err(); err != nil {
			return errors.Wrapf(err, "tile %d", tileIdx)
		}

		if numBlocks < 0 || int(numBlocks) > stream.Len()/blockHeaderBytes {
			return errors.Wrapf(cursor.ErrMalformed, "tile %d: block count %d", tileIdx, numBlocks)
		}

		newTile.Blocks = make([]*Block, numBlocks)

		d.Tiles[tileIdx] = newTile
	}

	return nil
}

func (d *DT1) decodeTilesStage2(stream *cursor.Cursor) error {
	for tileIdx := range d.Tiles {
		if err := d.Tiles[tileIdx].decodeBlockHeaders(stream); err != nil {
			return errors.Wrapf(err, "decoding tile %d block headers", tileIdx)
		}

		if err := d.Tiles[tileIdx].decodeBlockBodies(stream); err != nil {
			return errors.Wrapf(err, "decoding tile %d block data", tileIdx)
		}
	}

	return nil
}

func (t *Tile) decodeBlockHeaders(stream *cursor.Cursor) error {
	const (
		zeros1Bytes = 2
		zeros2Bytes = 2
	)

	stream.ExpectPosition(int(t.BlockHeadersPointer), "block headers")

	for blockIdx := range t.Blocks {
		block := &Block{}

		block.X = stream.Int16()
		block.Y = stream.Int16()

		stream.ConsumeZeros(zeros1Bytes)

		block.GridX = stream.Uint8()
		block.GridY = stream.Uint8()
		block.Format = BlockDataFormat(stream.Int16())
		block.Length = stream.Int32()

		stream.ConsumeZeros(zeros2Bytes)

		block.FileOffset = stream.Int32()

		if err := stream.Err(); err != nil {
			return errors.Wrapf(err, "block %d", blockIdx)
		}

		if !block.Format.Valid() {
			return errors.Wrapf(cursor.ErrMalformed, "block %d: unknown format tag 0x%04x", blockIdx, uint16(block.Format))
		}

		t.Blocks[blockIdx] = block
	}

	return nil
}

func (t *Tile) decodeBlockBodies(stream *cursor.Cursor) error {
	var total int64

	for blockIdx, block := range t.Blocks {
		encodedData, err := stream.Slice(int(t.BlockHeadersPointer)+int(block.FileOffset), int(block.Length))
		if err != nil {
			return errors.Wrapf(err, "block %d", blockIdx)
		}

		if block.Format == BlockFormatIsometric && len(encodedData) != isometricDataLength {
			const fmtErr = "block %d: isometric payload is %d bytes, want %d"
			return errors.Wrapf(cursor.ErrMalformed, fmtErr, blockIdx, len(encodedData), isometricDataLength)
		}

		block.EncodedData = encodedData
		total += int64(block.Length)
	}

	if total != int64(t.BlockDataLength) {
		const fmtErr = "block lengths sum to %d, tile declares %d"
		return errors.Wrapf(cursor.ErrMalformed, fmtErr, total, t.BlockDataLength)
	}

	stream.Skip(int(total))

	return stream.Err()
}
