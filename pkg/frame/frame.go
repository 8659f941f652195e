// Package frame implements length-prefixed frames: an ASCII decimal length
// on its own line (LF, optionally preceded by CR) followed by exactly that
// many payload bytes.
package frame

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrFrame is returned when a length line cannot be parsed.
var ErrFrame = errors.New("malformed frame header")

// Reader reads frames. Bytes after the last frame read stay available
// through Read.
type Reader struct {
	r *bufio.Reader
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Read reads unframed bytes.
func (r *Reader) Read(p []byte) (int, error) {
	return r.r.Read(p)
}

// Len reads the next length line. It returns io.EOF at a clean end of input.
func (r *Reader) Len() (int64, error) {
	line, err := r.r.ReadString('\n')

	switch {
	case err == io.EOF && line == "":
		return 0, io.EOF
	case err == io.EOF:
		return 0, errors.Wrapf(ErrFrame, "length line %q has no newline", line)
	case err != nil:
		return 0, errors.Wrap(err, "reading length line")
	}

	text := strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil || n < 0 {
		return 0, errors.Wrapf(ErrFrame, "length line %q", text)
	}

	return n, nil
}

// Next reads a whole frame. It returns io.EOF at a clean end of input.
func (r *Reader) Next() ([]byte, error) {
	n, err := r.Len()
	if err != nil {
		return nil, err
	}

	payload, err := io.ReadAll(io.LimitReader(r.r, n))
	if err != nil {
		return nil, errors.Wrap(err, "reading frame")
	}

	if int64(len(payload)) != n {
		return nil, errors.Wrapf(io.ErrUnexpectedEOF, "frame of %d bytes ends after %d", n, len(payload))
	}

	return payload, nil
}

// CopyNext streams the next frame into w.
func (r *Reader) CopyNext(w io.Writer) error {
	n, err := r.Len()
	if err != nil {
		return err
	}

	copied, err := io.CopyN(w, r.r, n)
	if err == io.EOF {
		return errors.Wrapf(io.ErrUnexpectedEOF, "frame of %d bytes ends after %d", n, copied)
	}

	return errors.Wrap(err, "copying frame")
}

// Each calls fn with every frame until the input ends.
func (r *Reader) Each(fn func(payload []byte) error) error {
	for {
		payload, err := r.Next()
		if err == io.EOF {
			return nil
		}

		if err != nil {
			return err
		}

		if err = fn(payload); err != nil {
			return err
		}
	}
}

// Writer writes frames.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer emitting to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteFrame writes p as one frame.
func (w *Writer) WriteFrame(p []byte) error {
	if _, err := fmt.Fprintf(w.w, "%d\n", len(p)); err != nil {
		return errors.Wrap(err, "writing length line")
	}

	_, err := w.w.Write(p)

	return errors.Wrap(err, "writing frame")
}

// CopyFrame writes the n bytes read from r as one frame.
func (w *Writer) CopyFrame(r io.Reader, n int64) error {
	if _, err := fmt.Fprintf(w.w, "%d\n", n); err != nil {
		return errors.Wrap(err, "writing length line")
	}

	copied, err := io.CopyN(w.w, r, n)
	if err == io.EOF {
		return errors.Wrapf(io.ErrUnexpectedEOF, "source of %d bytes ends after %d", n, copied)
	}

	return errors.Wrap(err, "writing frame")
}
