package encdec

import (
	"bytes"
	"fmt"
	"io"
)

// Marshal allocates exactly EncodeLen(v) bytes and encodes v into them.
func Marshal[T any](enc Encoder[T], v T) ([]byte, error) {
	size, err := enc.EncodeLen(v)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	n, err := enc.Encode(v, buf)
	if err != nil {
		return nil, err
	}
	if n != size {
		return nil, fmt.Errorf("%w: expected to write %d bytes, but wrote %d", ErrLength, size, n)
	}
	return buf, nil
}

// DecodeExact decodes a value from data and rejects anything after it other
// than zero padding. Trailing data errors go through the error conversion of
// schemas built with WithError.
//
// Ensure no unexpected trailing data remains: a codec that stops early on a
// malformed payload must not be mistaken for a complete parse.
func DecodeExact[T any](dec Decoder[T], data []byte) (T, error) {
	v, n, err := dec.Decode(data)
	if err != nil {
		return v, err
	}
	if err := CheckTrailingZeros(data[n:]); err != nil {
		var zero T
		return zero, convertErr(dec, err)
	}
	return v, nil
}

// errorConverter is implemented by schemas built with WithError.
type errorConverter interface {
	convertErr(err error) error
}

// convertErr passes err through the record error conversion of c, if any.
func convertErr(c any, err error) error {
	if ec, ok := c.(errorConverter); ok {
		return ec.convertErr(err)
	}
	return err
}

// EncodeTo encodes v into a pooled buffer and writes it to w in one call.
func EncodeTo[T any](w io.Writer, enc Encoder[T], v T) (int64, error) {
	if w == nil {
		return 0, ErrNilIO
	}
	size, err := enc.EncodeLen(v)
	if err != nil {
		return 0, err
	}
	bp := getEncodeBuf(size)
	defer putEncodeBuf(bp)

	k, err := enc.Encode(v, *bp)
	if err != nil {
		return 0, err
	}
	n, err := w.Write((*bp)[:k])
	if err != nil {
		return int64(n), err
	}
	if n < k {
		return int64(n), io.ErrShortWrite
	}
	return int64(n), nil
}

// DecodeFrom reads r to EOF and decodes one value from the bytes read, as
// DecodeExact does. The read buffer is pooled, so only owned decodes are
// accepted.
//
// WARNING: This is NOT a streaming implementation. Use FrameReader for
// streams of values.
func DecodeFrom[T any](r io.Reader, dec OwnedDecoder[T]) (T, int64, error) {
	var zero T
	if r == nil {
		return zero, 0, ErrNilIO
	}
	buf := bytesBufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bytesBufPool.Put(buf)

	n, err := buf.ReadFrom(r)
	if err != nil {
		return zero, n, err
	}
	data := buf.Bytes()
	v, k, err := dec.DecodeOwned(data)
	if err != nil {
		return zero, n, err
	}
	if err := CheckTrailingZeros(data[k:]); err != nil {
		return zero, n, convertErr(dec, err)
	}
	return v, n, nil
}

// Own gives c an owned decode by passing every borrowed result through
// clone. It adapts codecs that only implement Decoder for owned schemas.
func Own[T any](c Codec[T], clone func(T) T) OwnedCodec[T] {
	return &ownedCodec[T]{Codec: c, clone: clone}
}

type ownedCodec[T any] struct {
	Codec[T]
	clone func(T) T
}

func (c *ownedCodec[T]) DecodeOwned(buf []byte) (T, int, error) {
	v, n, err := c.Decode(buf)
	if err != nil {
		return v, 0, err
	}
	return c.clone(v), n, nil
}
