package cursor

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Writer mirrors Cursor for output. Like Cursor its errors are sticky, so a
// run of writes can be checked once at the end.
type Writer struct {
	w   io.Writer
	n   int
	err error
}

// NewWriter returns a Writer emitting to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first error encountered, if any.
func (w *Writer) Err() error {
	return w.err
}

// Position is the number of bytes written so far.
func (w *Writer) Position() int {
	return w.n
}

// ExpectPosition fails with ErrMalformed unless exactly pos bytes were written.
func (w *Writer) ExpectPosition(pos int, what string) {
	if w.err == nil && w.n != pos {
		w.err = errors.Wrapf(ErrMalformed, "%s: expected offset %d, writer at %d", what, pos, w.n)
	}
}

func (w *Writer) put(v interface{}, size int) {
	if w.err != nil {
		return
	}

	if err := binary.Write(w.w, binary.LittleEndian, v); err != nil {
		w.err = errors.Wrapf(err, "writing %d bytes at offset %d", size, w.n)
		return
	}

	w.n += size
}

// WriteInt16 writes a little-endian int16.
func (w *Writer) WriteInt16(v int16) { w.put(v, int16Bytes) }

// WriteUint16 writes a little-endian uint16.
func (w *Writer) WriteUint16(v uint16) { w.put(v, int16Bytes) }

// WriteInt32 writes a little-endian int32.
func (w *Writer) WriteInt32(v int32) { w.put(v, int32Bytes) }

// WriteUint32 writes a little-endian uint32.
func (w *Writer) WriteUint32(v uint32) { w.put(v, int32Bytes) }

// WriteUint8 writes a single byte.
func (w *Writer) WriteUint8(v uint8) { w.put(v, int8Bytes) }

// WriteUint32s writes every value as a little-endian uint32.
func (w *Writer) WriteUint32s(v []uint32) { w.put(v, len(v)*int32Bytes) }

// Write writes p verbatim. It implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}

	n, err := w.w.Write(p)
	w.n += n

	if err != nil {
		w.err = errors.Wrapf(err, "writing %d bytes at offset %d", len(p), w.n)
	}

	return n, w.err
}

// WriteZeros writes n zero bytes.
func (w *Writer) WriteZeros(n int) {
	if n > 0 {
		_, _ = w.Write(make([]byte, n))
	}
}
