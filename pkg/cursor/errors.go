package cursor

import "github.com/pkg/errors"

// Error kinds shared by the binary codecs. Callers wrap them with context and
// test for them with errors.Is.
var (
	// ErrVersionMismatch means the input's version is outside the accepted set.
	ErrVersionMismatch = errors.New("version mismatch")

	// ErrMalformed means a structural check failed: a zero run held a non-zero
	// byte, a counted section disagreed with its declared length, or a tag had
	// an unknown value.
	ErrMalformed = errors.New("malformed structure")

	// ErrTruncated means the input ended before a required field.
	ErrTruncated = errors.New("truncated input")
)
