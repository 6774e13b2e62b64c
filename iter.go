package encdec

import (
	"io"
	"iter"
)

// DecodeIter walks a buffer of concatenated, self-delimiting values.
//
// Next returns io.EOF once the cursor sits exactly at the end of the buffer.
// If a value cannot be decoded, that error is latched and returned by every
// later call, so iteration always terminates. A DecodeIter is not safe for
// concurrent use.
type DecodeIter[T any] struct {
	dec Decoder[T]
	buf []byte
	off int
	err error // first error encountered.
}

// NewDecodeIter returns an iterator decoding values of T from buf with dec.
func NewDecodeIter[T any](dec Decoder[T], buf []byte) *DecodeIter[T] {
	return &DecodeIter[T]{dec: dec, buf: buf}
}

// Next decodes the value at the cursor and advances past it.
func (it *DecodeIter[T]) Next() (T, error) {
	var zero T
	if it.err != nil {
		return zero, it.err
	}
	if it.off == len(it.buf) {
		return zero, io.EOF
	}
	v, n, err := it.dec.Decode(it.buf[it.off:])
	if err == nil && n == 0 {
		err = ErrLength
	}
	if err != nil {
		it.err = err
		return zero, err
	}
	it.off += n
	return v, nil
}

// Offset returns the number of bytes consumed so far.
func (it *DecodeIter[T]) Offset() int { return it.off }

// Err returns the latched decode error, if any.
func (it *DecodeIter[T]) Err() error { return it.err }

// Clone returns a new iterator over the same buffer. The clone starts at the
// beginning of the buffer, not at the current position of it.
func (it *DecodeIter[T]) Clone() *DecodeIter[T] {
	return NewDecodeIter(it.dec, it.buf)
}

// All returns an iterator over the remaining values. A decode error is
// yielded once, after which iteration stops.
func (it *DecodeIter[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, err := it.Next()
			if err == io.EOF {
				return
			}
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

// EncodeSeq encodes every value produced by items back to back into buf,
// returning the total number of bytes written. It stops at the first error.
func EncodeSeq[T any](enc Encoder[T], items iter.Seq[T], buf []byte) (int, error) {
	off := 0
	for v := range items {
		n, err := enc.Encode(v, buf[off:])
		off += n
		if err != nil {
			return off, err
		}
	}
	return off, nil
}
