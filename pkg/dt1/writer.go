package dt1

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/gravestench/d2tiled/pkg/cursor"
)

// BlockSource supplies the payload written for every block.
type BlockSource interface {
	BlockData(t *Tile, tileIdx, blockIdx int) ([]byte, error)
}

// RawBlocks re-emits the payloads kept by FromBytes.
type RawBlocks struct{}

// BlockData implements BlockSource.
func (RawBlocks) BlockData(t *Tile, _, blockIdx int) ([]byte, error) {
	return t.Blocks[blockIdx].EncodedData, nil
}

// EncodedBlocks holds fresh payloads indexed by tile, then block.
type EncodedBlocks [][][]byte

// BlockData implements BlockSource.
func (e EncodedBlocks) BlockData(_ *Tile, tileIdx, blockIdx int) ([]byte, error) {
	if tileIdx >= len(e) || blockIdx >= len(e[tileIdx]) {
		return nil, errors.Errorf("no payload for tile %d block %d", tileIdx, blockIdx)
	}

	return e[tileIdx][blockIdx], nil
}

// Bytes is Encode into a fresh buffer.
func (d *DT1) Bytes(src BlockSource) ([]byte, error) {
	var buf bytes.Buffer

	if err := d.Encode(&buf, src); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Encode writes d with the payloads of src. Lengths, offsets and pointers
// are recomputed from the payloads and stored back into d before anything
// is written, so d describes the output afterwards.
func (d *DT1) Encode(w io.Writer, src BlockSource) error {
	if err := d.layout(src); err != nil {
		return err
	}

	out := cursor.NewWriter(w)

	d.encodeHeader(out)

	for _, t := range d.Tiles {
		t.encodeHeader(out)
	}

	for tileIdx, t := range d.Tiles {
		out.ExpectPosition(int(t.BlockHeadersPointer), "block headers")

		for _, block := range t.Blocks {
			block.encodeHeader(out)
		}

		for _, block := range t.Blocks {
			_, _ = out.Write(block.EncodedData)
		}

		if err := out.Err(); err != nil {
			return errors.Wrapf(err, "encoding tile %d", tileIdx)
		}
	}

	return out.Err()
}

func (d *DT1) layout(src BlockSource) error {
	d.FileHeader.Version = [2]int32{expectedV1, expectedV2}
	d.FileHeader.TileHeadersPointer = headerBytes

	pointer := headerBytes + tileHeaderBytes*len(d.Tiles)

	for tileIdx, t := range d.Tiles {
		offset := blockHeaderBytes * len(t.Blocks)
		headers := offset

		for blockIdx, block := range t.Blocks {
			data, err := src.BlockData(t, tileIdx, blockIdx)
			if err != nil {
				return errors.Wrapf(err, "tile %d block %d", tileIdx, blockIdx)
			}

			if block.Format == BlockFormatIsometric && len(data) != isometricDataLength {
				const fmtErr = "tile %d block %d: isometric payload is %d bytes"
				return errors.Wrapf(cursor.ErrMalformed, fmtErr, tileIdx, blockIdx, len(data))
			}

			block.EncodedData = data
			block.Length = int32(len(data))
			block.FileOffset = int32(offset)
			offset += len(data)
		}

		t.BlockHeadersPointer = int32(pointer)
		t.BlockDataLength = int32(offset - headers)
		pointer += offset
	}

	return nil
}

func (d *DT1) encodeHeader(out *cursor.Writer) {
	const zeroBytes = 260

	out.WriteInt32(d.FileHeader.Version[0])
	out.WriteInt32(d.FileHeader.Version[1])
	out.WriteZeros(zeroBytes)
	out.WriteInt32(int32(len(d.Tiles)))
	out.WriteInt32(d.FileHeader.TileHeadersPointer)
}

func (t *Tile) encodeHeader(out *cursor.Writer) {
	out.WriteInt32(t.Direction)
	out.WriteInt16(t.RoofHeight)
	out.WriteUint16(t.MaterialFlags.Encode())
	out.WriteInt32(t.Height)
	out.WriteInt32(t.Width)
	out.WriteZeros(4)
	out.WriteInt32(t.Orientation)
	out.WriteInt32(t.MainIndex)
	out.WriteInt32(t.SubIndex)
	out.WriteInt32(t.RarityOrFrameIndex)
	_, _ = out.Write(t.Unknown[:])

	for _, flags := range t.SubTileFlags {
		out.WriteUint8(uint8(flags))
	}

	out.WriteZeros(7)
	out.WriteInt32(t.BlockHeadersPointer)
	out.WriteInt32(t.BlockDataLength)
	out.WriteInt32(int32(len(t.Blocks)))
	out.WriteZeros(4)
	_, _ = out.Write(t.AlmostAlwaysZeros[:])
	out.WriteZeros(4)
}

func (block *Block) encodeHeader(out *cursor.Writer) {
	out.WriteInt16(block.X)
	out.WriteInt16(block.Y)
	out.WriteZeros(2)
	out.WriteUint8(block.GridX)
	out.WriteUint8(block.GridY)
	out.WriteInt16(int16(block.Format))
	out.WriteInt32(block.Length)
	out.WriteZeros(2)
	out.WriteInt32(block.FileOffset)
}
