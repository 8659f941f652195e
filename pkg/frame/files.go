package frame

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Cat writes every named file to w as one frame.
func Cat(w io.Writer, names []string) error {
	fw := NewWriter(w)

	for _, name := range names {
		if err := catFile(fw, name); err != nil {
			return err
		}
	}

	return nil
}

func catFile(fw *Writer, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return errors.WithStack(err)
	}

	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.Wrap(fw.CopyFrame(f, info.Size()), name)
}

// Names reads one file name per line, ignoring a trailing CR and blank
// lines.
func Names(r io.Reader) ([]string, error) {
	var names []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if name := strings.TrimSuffix(scanner.Text(), "\r"); name != "" {
			names = append(names, name)
		}
	}

	return names, errors.Wrap(scanner.Err(), "reading file names")
}

// Split writes the frames of r to the named files, one frame per file in
// order, then copies whatever follows the last of them to rest.
func Split(r io.Reader, names []string, rest io.Writer) error {
	fr := NewReader(r)

	for _, name := range names {
		if err := splitFile(fr, name); err != nil {
			return err
		}
	}

	_, err := io.Copy(rest, fr)

	return errors.Wrap(err, "copying unframed rest")
}

func splitFile(fr *Reader, name string) error {
	f, err := os.Create(name)
	if err != nil {
		return errors.WithStack(err)
	}

	err = fr.CopyNext(f)
	if err == io.EOF {
		err = errors.Wrapf(io.ErrUnexpectedEOF, "no frame left")
	}

	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	return errors.Wrap(err, name)
}
