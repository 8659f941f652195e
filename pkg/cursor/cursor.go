// Package cursor provides typed little-endian reads and writes over in-memory
// buffers, the shared plumbing of the DT1 and DS1 codecs.
package cursor

import (
	"bytes"
	"encoding/binary"

	"github.com/gravestench/bitstream"
	"github.com/pkg/errors"
)

const (
	int8Bytes  = 1
	int16Bytes = 2
	int32Bytes = 4
)

// Cursor reads from a byte buffer. Errors are sticky: once a read fails every
// later read returns a zero value and Err reports the first failure.
type Cursor struct {
	data   []byte
	stream *bitstream.Reader
	pos    int
	err    error
}

// New returns a cursor positioned at the start of data.
func New(data []byte) *Cursor {
	return &Cursor{
		data:   data,
		stream: bitstream.ReaderFromBytes(data...),
	}
}

// Err returns the first error encountered, if any.
func (c *Cursor) Err() error {
	return c.err
}

// Position is the offset of the next byte to be read.
func (c *Cursor) Position() int {
	return c.pos
}

// Len is the size of the underlying buffer.
func (c *Cursor) Len() int {
	return len(c.data)
}

// Remaining is the number of bytes left after the current position.
func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

// Fail records err unless an earlier error is already recorded.
func (c *Cursor) Fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// ExpectPosition fails with ErrMalformed unless the cursor is at pos.
func (c *Cursor) ExpectPosition(pos int, what string) {
	if c.err == nil && c.pos != pos {
		c.err = errors.Wrapf(ErrMalformed, "%s: expected offset %d, cursor at %d", what, pos, c.pos)
	}
}

func (c *Cursor) ensure(n int) bool {
	if c.err != nil {
		return false
	}

	if n < 0 || c.Remaining() < n {
		c.err = errors.Wrapf(ErrTruncated, "need %d bytes at offset %d, %d remaining", n, c.pos, c.Remaining())
		return false
	}

	return true
}

func (c *Cursor) advance(n int, err error) {
	if err != nil {
		c.Fail(errors.Wrapf(ErrTruncated, "reading %d bytes at offset %d: %v", n, c.pos, err))
	}

	c.pos += n
}

// Int16 reads a little-endian int16.
func (c *Cursor) Int16() int16 {
	if !c.ensure(int16Bytes) {
		return 0
	}

	v, err := c.stream.Next(int16Bytes).Bytes().AsInt16()
	c.advance(int16Bytes, err)

	return v
}

// Uint16 reads a little-endian uint16.
func (c *Cursor) Uint16() uint16 {
	if !c.ensure(int16Bytes) {
		return 0
	}

	v, err := c.stream.Next(int16Bytes).Bytes().AsUInt16()
	c.advance(int16Bytes, err)

	return v
}

// Int32 reads a little-endian int32.
func (c *Cursor) Int32() int32 {
	if !c.ensure(int32Bytes) {
		return 0
	}

	v, err := c.stream.Next(int32Bytes).Bytes().AsInt32()
	c.advance(int32Bytes, err)

	return v
}

// Uint32 reads a little-endian uint32.
func (c *Cursor) Uint32() uint32 {
	return uint32(c.Int32())
}

// Uint8 reads a single byte.
func (c *Cursor) Uint8() uint8 {
	if !c.ensure(int8Bytes) {
		return 0
	}

	v, err := c.stream.Next(int8Bytes).Bytes().AsByte()
	c.advance(int8Bytes, err)

	return v
}

// Bytes reads the next n bytes into a new slice.
func (c *Cursor) Bytes(n int) []byte {
	if !c.ensure(n) {
		return nil
	}

	if n == 0 {
		return []byte{}
	}

	v, err := c.stream.Next(n).Bytes().AsBytes()
	c.advance(n, err)

	return v
}

// ReadInto fills dst with the next len(dst) bytes. Pass arr[:] to fill a
// fixed-size array.
func (c *Cursor) ReadInto(dst []byte) {
	copy(dst, c.Bytes(len(dst)))
}

// Skip advances n bytes without inspecting them.
func (c *Cursor) Skip(n int) {
	c.Bytes(n)
}

// ConsumeZeros advances n bytes and fails with ErrMalformed if any was non-zero.
func (c *Cursor) ConsumeZeros(n int) {
	start := c.pos

	for i, b := range c.Bytes(n) {
		if b != 0 {
			c.Fail(errors.Wrapf(ErrMalformed, "expected %d zero bytes at offset %d, found 0x%02x at %d", n, start, b, start+i))
			return
		}
	}
}

// Uint32s reads n little-endian uint32 values with a single bulk read.
func (c *Cursor) Uint32s(n int) []uint32 {
	if n < 0 || n > c.Remaining()/int32Bytes {
		c.ensure(-1)
		return nil
	}

	raw := c.Bytes(n * int32Bytes)
	if raw == nil {
		return nil
	}

	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(raw[i*int32Bytes:])
	}

	return out
}

// Until reads up to and including the next occurrence of delim, returning the
// bytes before it.
func (c *Cursor) Until(delim byte) []byte {
	if c.err != nil {
		return nil
	}

	idx := bytes.IndexByte(c.data[c.pos:], delim)
	if idx < 0 {
		c.err = errors.Wrapf(ErrTruncated, "no terminator 0x%02x after offset %d", delim, c.pos)
		return nil
	}

	raw := c.Bytes(idx + 1)
	if raw == nil {
		return nil
	}

	return raw[:idx]
}

// Slice returns a view of n bytes at an absolute offset without moving the
// cursor.
func (c *Cursor) Slice(offset, n int) ([]byte, error) {
	if offset < 0 || n < 0 || offset > len(c.data) || len(c.data)-offset < n {
		return nil, errors.Wrapf(ErrMalformed, "range [%d, %d) outside buffer of %d bytes", offset, offset+n, len(c.data))
	}

	return c.data[offset : offset+n : offset+n], nil
}
