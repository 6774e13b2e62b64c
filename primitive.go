package encdec

import "unsafe"

// FixedInt is the set of integer types that have a fixed wire width.
// The platform dependent int, uint and uintptr are deliberately absent.
type FixedInt interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Int is the little-endian codec for a fixed-width integer type. It is
// stateless; the zero value is ready to use.
type Int[T FixedInt] struct{}

// Codecs for the built-in fixed-width integers.
var (
	Uint8  = Int[uint8]{}
	Uint16 = Int[uint16]{}
	Uint32 = Int[uint32]{}
	Uint64 = Int[uint64]{}
	Int8   = Int[int8]{}
	Int16  = Int[int16]{}
	Int32  = Int[int32]{}
	Int64  = Int[int64]{}
)

// Width returns the encoded size of T: 1, 2, 4 or 8 bytes.
func (Int[T]) Width() int {
	var v T
	return int(unsafe.Sizeof(v))
}

// EncodeLen always returns Width.
func (c Int[T]) EncodeLen(T) (int, error) {
	return c.Width(), nil
}

func (c Int[T]) Encode(v T, buf []byte) (int, error) {
	w := c.Width()
	if len(buf) < w {
		return 0, ErrLength
	}
	u := uint64(v)
	switch w {
	case 1:
		buf[0] = byte(u)
	case 2:
		le.PutUint16(buf, uint16(u))
	case 4:
		le.PutUint32(buf, uint32(u))
	default:
		le.PutUint64(buf, u)
	}
	return w, nil
}

func (c Int[T]) Decode(buf []byte) (T, int, error) {
	w := c.Width()
	if len(buf) < w {
		return 0, 0, ErrLength
	}
	var u uint64
	switch w {
	case 1:
		u = uint64(buf[0])
	case 2:
		u = uint64(le.Uint16(buf))
	case 4:
		u = uint64(le.Uint32(buf))
	default:
		u = le.Uint64(buf)
	}
	// Converting truncates to the width of T, restoring the sign of signed types.
	return T(u), w, nil
}

// DecodeOwned is Decode: integers never borrow.
func (c Int[T]) DecodeOwned(buf []byte) (T, int, error) {
	return c.Decode(buf)
}

func (Int[T]) FromLen(n int) (T, error) {
	if !fits[T](n) {
		return 0, ErrLength
	}
	return T(n), nil
}

func (Int[T]) ToLen(v T) (int, error) {
	n := int(v)
	if v < 0 || n < 0 || T(n) != v {
		return 0, ErrLength
	}
	return n, nil
}
