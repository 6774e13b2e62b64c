package encdec

import (
	"errors"
	"fmt"
)

var (
	// ErrLength indicates that a buffer was too short: the encode target could
	// not hold the value, or the decode source ended before a field's bytes
	// were available. It is also returned when a length does not fit the
	// integer type that must carry it.
	ErrLength = errors.New("encdec: buffer length")

	// ErrUtf8 indicates that the bytes of a text field are not valid UTF-8.
	ErrUtf8 = errors.New("encdec: invalid utf-8")

	// ErrDirective indicates a defect in a record schema, such as a tagged
	// field referencing a sibling that does not exist. It is only returned
	// while a schema is built, never while encoding or decoding.
	ErrDirective = errors.New("encdec: invalid field directive")

	// ErrTrailingData is returned by DecodeExact when non-zero bytes are found
	// after the end of the decoded value.
	ErrTrailingData = errors.New("encdec: non-zero trailing data found after decoding")

	// ErrNilIO indicates that a frame reader or writer was created over a nil
	// io.Reader/io.Writer or without a codec.
	ErrNilIO = errors.New("encdec: nil io.Reader/io.Writer or codec")

	// ErrSizeTooSmall indicates a buffer size smaller than bufio accepts.
	ErrSizeTooSmall = errors.New("encdec: buffer size smaller than 16 conflicts with bufio")

	// ErrInvalidWrite indicates that an io.Writer returned an invalid count from Write.
	ErrInvalidWrite = errors.New("encdec: writer returned invalid count from Write")
)

// Error records which field of which record failed and at what offset of the
// buffer the field started. Err is the underlying error, typically ErrLength
// or ErrUtf8, possibly wrapped by a nested record.
type Error struct {
	Record string
	Field  string
	Offset int
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s.%s at offset %d: %v", e.Record, e.Field, e.Offset, e.Err)
}

// Unwrap allows errors.Is(err, ErrLength) through any number of nested records.
func (e *Error) Unwrap() error {
	return e.Err
}

// directiveError reports a schema definition defect for one field.
func directiveError(record, field, format string, args ...any) error {
	return fmt.Errorf("%w: %s.%s: %s", ErrDirective, record, field, fmt.Sprintf(format, args...))
}
