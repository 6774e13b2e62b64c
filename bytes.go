package encdec

import (
	"bytes"
	"unicode/utf8"
	"unsafe"
)

// RawBytes is the codec for variable-length byte fields. It carries no length
// of its own: Decode is greedy and consumes the whole buffer, so a RawBytes
// field is normally tagged by a sibling (Length) or wrapped in Prefixed.
// Borrowed decodes return sub-slices of the input with their capacity clipped,
// so appending to them never overwrites the input.
type RawBytes struct{}

// Text is the codec for variable-length UTF-8 text fields. Borrowed decodes
// return a string that aliases the input buffer without copying; the input
// must not be modified while the string is in use. Use DecodeOwned for an
// independent copy.
type Text struct{}

var (
	Bytes = RawBytes{}
	Str   = Text{}
)

func (RawBytes) EncodeLen(v []byte) (int, error) {
	return len(v), nil
}

func (RawBytes) Encode(v []byte, buf []byte) (int, error) {
	if len(buf) < len(v) {
		return 0, ErrLength
	}
	return copy(buf, v), nil
}

func (c RawBytes) Decode(buf []byte) ([]byte, int, error) {
	v, err := c.DecodeLen(buf, len(buf))
	return v, len(buf), err
}

func (c RawBytes) DecodeOwned(buf []byte) ([]byte, int, error) {
	v, err := c.DecodeLenOwned(buf, len(buf))
	return v, len(buf), err
}

func (RawBytes) DecodeLen(buf []byte, n int) ([]byte, error) {
	if n < 0 || len(buf) < n {
		return nil, ErrLength
	}
	return buf[:n:n], nil
}

func (RawBytes) DecodeLenOwned(buf []byte, n int) ([]byte, error) {
	if n < 0 || len(buf) < n {
		return nil, ErrLength
	}
	return bytes.Clone(buf[:n:n]), nil
}

func (Text) EncodeLen(v string) (int, error) {
	return len(v), nil
}

func (Text) Encode(v string, buf []byte) (int, error) {
	if len(buf) < len(v) {
		return 0, ErrLength
	}
	return copy(buf, v), nil
}

func (c Text) Decode(buf []byte) (string, int, error) {
	v, err := c.DecodeLen(buf, len(buf))
	if err != nil {
		return "", 0, err
	}
	return v, len(buf), nil
}

func (c Text) DecodeOwned(buf []byte) (string, int, error) {
	v, err := c.DecodeLenOwned(buf, len(buf))
	if err != nil {
		return "", 0, err
	}
	return v, len(buf), nil
}

func (Text) DecodeLen(buf []byte, n int) (string, error) {
	b, err := textBytes(buf, n)
	if err != nil || n == 0 {
		return "", err
	}
	return unsafe.String(unsafe.SliceData(b), n), nil
}

func (Text) DecodeLenOwned(buf []byte, n int) (string, error) {
	b, err := textBytes(buf, n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// textBytes bounds-checks and validates the first n bytes of buf.
func textBytes(buf []byte, n int) ([]byte, error) {
	if n < 0 || len(buf) < n {
		return nil, ErrLength
	}
	b := buf[:n]
	if !utf8.Valid(b) {
		return nil, ErrUtf8
	}
	return b, nil
}
