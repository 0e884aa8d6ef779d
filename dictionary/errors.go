package dictionary

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrEncoding is matched by every *EncodingError.
	ErrEncoding = errors.New("encoding error")

	// ErrMalformedEntry is returned when a compressed entry cannot be
	// applied to the word it belongs to.
	ErrMalformedEntry = errors.New("malformed dictionary entry")

	// ErrFeatures is returned for an unusable metadata descriptor.
	ErrFeatures = errors.New("invalid dictionary features")
)

// EncodingError reports bytes or text that cannot be converted under the
// dictionary's declared encoding.
type EncodingError struct {
	Encoding string
	Data     []byte
	Err      error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("dictionary: cannot convert %q as %s: %v", e.Data, e.Encoding, e.Err)
}

// Is makes errors.Is(err, ErrEncoding) true for any EncodingError.
func (e *EncodingError) Is(target error) bool {
	return target == ErrEncoding
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}
