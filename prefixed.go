package encdec

import "fmt"

// PrefixedCodec writes a body preceded by its encoded length, carried by the
// integer type P. It is self-delimiting: decode reads the prefix and then
// exactly that many body bytes, whatever follows in the buffer.
type PrefixedCodec[P FixedInt, T any] struct {
	prefix Int[P]
	body   Codec[T]
}

// Prefixed returns a length-prefixed codec for body using prefix for the length.
//
//	Prefixed(Uint8, Bytes) // [len u8][len bytes]
func Prefixed[P FixedInt, T any](prefix Int[P], body Codec[T]) *PrefixedCodec[P, T] {
	return &PrefixedCodec[P, T]{prefix: prefix, body: body}
}

func (c *PrefixedCodec[P, T]) EncodeLen(v T) (int, error) {
	n, err := c.body.EncodeLen(v)
	if err != nil {
		return 0, err
	}
	if _, err := c.prefix.FromLen(n); err != nil {
		return 0, err
	}
	return c.prefix.Width() + n, nil
}

// Encode writes len(body) cast to P, then the body. A body longer than P can
// express fails with ErrLength before anything is written.
func (c *PrefixedCodec[P, T]) Encode(v T, buf []byte) (int, error) {
	n, err := c.body.EncodeLen(v)
	if err != nil {
		return 0, err
	}
	p, err := c.prefix.FromLen(n)
	if err != nil {
		return 0, err
	}
	if len(buf) < c.prefix.Width()+n {
		return 0, ErrLength
	}
	k, err := c.prefix.Encode(p, buf)
	if err != nil {
		return 0, err
	}
	m, err := c.body.Encode(v, buf[k:k+n])
	if err != nil {
		return k, err
	}
	return k + m, nil
}

func (c *PrefixedCodec[P, T]) Decode(buf []byte) (T, int, error) {
	var zero T
	window, k, err := c.window(buf)
	if err != nil {
		return zero, 0, err
	}
	v, err := decodeWindow(Decoder[T](c.body), window)
	if err != nil {
		return zero, 0, err
	}
	return v, k + len(window), nil
}

func (c *PrefixedCodec[P, T]) DecodeOwned(buf []byte) (T, int, error) {
	var zero T
	window, k, err := c.window(buf)
	if err != nil {
		return zero, 0, err
	}
	var v T
	if td, ok := ownedTaggedDecoder(Decoder[T](c.body)); ok {
		v, err = td.DecodeLenOwned(window, len(window))
	} else if od, ok := ownedDecoder(Decoder[T](c.body)); ok {
		v, _, err = od.DecodeOwned(window)
	} else {
		err = fmt.Errorf("%w: prefixed body %T cannot decode owned values", ErrDirective, c.body)
	}
	if err != nil {
		return zero, 0, err
	}
	return v, k + len(window), nil
}

func (c *PrefixedCodec[P, T]) decodesOwned() bool {
	_, ok := ownedDecoder(Decoder[T](c.body))
	return ok
}

// window reads the prefix and returns the body bytes it announces along
// with the prefix width.
func (c *PrefixedCodec[P, T]) window(buf []byte) ([]byte, int, error) {
	p, k, err := c.prefix.Decode(buf)
	if err != nil {
		return nil, 0, err
	}
	n, err := c.prefix.ToLen(p)
	if err != nil {
		return nil, 0, err
	}
	if len(buf)-k < n {
		return nil, 0, ErrLength
	}
	return buf[k : k+n], k, nil
}

// decodeWindow decodes a value that spans all of window.
func decodeWindow[T any](dec Decoder[T], window []byte) (T, error) {
	if td, ok := dec.(TaggedDecoder[T]); ok {
		return td.DecodeLen(window, len(window))
	}
	v, _, err := dec.Decode(window)
	return v, err
}
