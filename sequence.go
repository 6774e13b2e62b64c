package encdec

import "fmt"

// ArrayCodec is a codec for exactly N elements of T, laid out back to back
// with no count on the wire.
type ArrayCodec[T any] struct {
	elem Codec[T]
	n    int
}

// Array returns a fixed-count codec for n elements of elem. A negative n
// yields a codec whose every operation fails with ErrLength.
func Array[T any](elem Codec[T], n int) *ArrayCodec[T] {
	return &ArrayCodec[T]{elem: elem, n: n}
}

// Len returns the element count.
func (c *ArrayCodec[T]) Len() int { return c.n }

// EncodeLen sums the encoded length of every element. A value holding a
// different number of elements than the array fails with ErrLength.
func (c *ArrayCodec[T]) EncodeLen(v []T) (int, error) {
	if c.n < 0 || len(v) != c.n {
		return 0, ErrLength
	}
	return encodeLenAll(c.elem, v)
}

// Encode checks the whole array fits in buf before writing any element.
func (c *ArrayCodec[T]) Encode(v []T, buf []byte) (int, error) {
	n, err := c.EncodeLen(v)
	if err != nil {
		return 0, err
	}
	if len(buf) < n {
		return 0, ErrLength
	}
	return encodeAll(c.elem, v, buf)
}

func (c *ArrayCodec[T]) Decode(buf []byte) ([]T, int, error) {
	if c.n < 0 {
		return nil, 0, ErrLength
	}
	out := make([]T, c.n)
	n, err := decodeInto(c.elem.Decode, out, buf)
	if err != nil {
		return nil, 0, err
	}
	return out, n, nil
}

func (c *ArrayCodec[T]) DecodeOwned(buf []byte) ([]T, int, error) {
	od, ok := ownedDecoder(Decoder[T](c.elem))
	if !ok {
		return nil, 0, notOwned(c.elem)
	}
	if c.n < 0 {
		return nil, 0, ErrLength
	}
	out := make([]T, c.n)
	n, err := decodeInto(od.DecodeOwned, out, buf)
	if err != nil {
		return nil, 0, err
	}
	return out, n, nil
}

func (c *ArrayCodec[T]) decodesOwned() bool {
	_, ok := ownedDecoder(Decoder[T](c.elem))
	return ok
}

// SeqCodec is a codec for a growable sequence of T. Encode concatenates the
// elements; Decode is greedy and keeps decoding until the buffer is exactly
// exhausted, so elements must be self-delimiting.
type SeqCodec[T any] struct {
	elem Codec[T]
}

// Seq returns a greedy sequence codec over elem.
func Seq[T any](elem Codec[T]) *SeqCodec[T] {
	return &SeqCodec[T]{elem: elem}
}

func (c *SeqCodec[T]) EncodeLen(v []T) (int, error) {
	return encodeLenAll(c.elem, v)
}

func (c *SeqCodec[T]) Encode(v []T, buf []byte) (int, error) {
	n, err := c.EncodeLen(v)
	if err != nil {
		return 0, err
	}
	if len(buf) < n {
		return 0, ErrLength
	}
	return encodeAll(c.elem, v, buf)
}

// Decode consumes all of buf. An element that would extend past the end of
// buf surfaces as that element's own error, normally ErrLength.
func (c *SeqCodec[T]) Decode(buf []byte) ([]T, int, error) {
	return decodeGreedy(c.elem.Decode, buf)
}

func (c *SeqCodec[T]) DecodeOwned(buf []byte) ([]T, int, error) {
	od, ok := ownedDecoder(Decoder[T](c.elem))
	if !ok {
		return nil, 0, notOwned(c.elem)
	}
	return decodeGreedy(od.DecodeOwned, buf)
}

// DecodeLen decodes the sequence held by exactly the first n bytes of buf.
func (c *SeqCodec[T]) DecodeLen(buf []byte, n int) ([]T, error) {
	if n < 0 || len(buf) < n {
		return nil, ErrLength
	}
	v, _, err := c.Decode(buf[:n])
	return v, err
}

func (c *SeqCodec[T]) DecodeLenOwned(buf []byte, n int) ([]T, error) {
	if n < 0 || len(buf) < n {
		return nil, ErrLength
	}
	v, _, err := c.DecodeOwned(buf[:n])
	return v, err
}

func (c *SeqCodec[T]) decodesOwned() bool {
	_, ok := ownedDecoder(Decoder[T](c.elem))
	return ok
}

// RefCodec encodes a *T as the T it points to. A nil pointer encodes as the
// zero value of T; Decode always returns a freshly allocated T.
type RefCodec[T any] struct {
	elem Codec[T]
}

// Ref returns a reference codec over elem.
func Ref[T any](elem Codec[T]) *RefCodec[T] {
	return &RefCodec[T]{elem: elem}
}

func (c *RefCodec[T]) EncodeLen(v *T) (int, error) {
	return c.elem.EncodeLen(deref(v))
}

func (c *RefCodec[T]) Encode(v *T, buf []byte) (int, error) {
	return c.elem.Encode(deref(v), buf)
}

func (c *RefCodec[T]) Decode(buf []byte) (*T, int, error) {
	v, n, err := c.elem.Decode(buf)
	if err != nil {
		return nil, 0, err
	}
	return &v, n, nil
}

func (c *RefCodec[T]) DecodeOwned(buf []byte) (*T, int, error) {
	od, ok := ownedDecoder(Decoder[T](c.elem))
	if !ok {
		return nil, 0, notOwned(c.elem)
	}
	v, n, err := od.DecodeOwned(buf)
	if err != nil {
		return nil, 0, err
	}
	return &v, n, nil
}

func (c *RefCodec[T]) decodesOwned() bool {
	_, ok := ownedDecoder(Decoder[T](c.elem))
	return ok
}

func deref[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

func notOwned(c any) error {
	return fmt.Errorf("%w: element codec %T cannot decode owned values", ErrDirective, c)
}

// --- Shared element loops ---

func encodeLenAll[T any](elem Encoder[T], v []T) (int, error) {
	total := 0
	for i := range v {
		n, err := elem.EncodeLen(v[i])
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func encodeAll[T any](elem Encoder[T], v []T, buf []byte) (int, error) {
	off := 0
	for i := range v {
		n, err := elem.Encode(v[i], buf[off:])
		off += n
		if err != nil {
			return off, err
		}
	}
	return off, nil
}

// decodeInto fills out element by element, stopping at the first error.
func decodeInto[T any](dec func([]byte) (T, int, error), out []T, buf []byte) (int, error) {
	off := 0
	for i := range out {
		v, n, err := dec(buf[off:])
		if err != nil {
			return 0, err
		}
		out[i] = v
		off += n
	}
	return off, nil
}

// decodeGreedy decodes elements until buf is exhausted. An element that
// consumes nothing would loop forever and is reported as ErrLength.
func decodeGreedy[T any](dec func([]byte) (T, int, error), buf []byte) ([]T, int, error) {
	var out []T
	off := 0
	for off < len(buf) {
		v, n, err := dec(buf[off:])
		if err != nil {
			return nil, 0, err
		}
		if n == 0 {
			return nil, 0, ErrLength
		}
		out = append(out, v)
		off += n
	}
	return out, off, nil
}
