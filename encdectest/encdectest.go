// Package encdectest provides assertions for codec implementations.
package encdectest

import (
	"bytes"

	"github.com/stretchr/testify/require"

	"github.com/oy3o/encdec"
)

type tHelper interface {
	Helper()
}

func helper(t require.TestingT) {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
}

// RoundTrip encodes v into a buffer of exactly EncodeLen(v) bytes, decodes it
// back and requires the decoded value to equal v. It returns the encoding.
func RoundTrip[T any](t require.TestingT, c encdec.Codec[T], v T) []byte {
	helper(t)
	buf := encode(t, c, v)

	got, n, err := c.Decode(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n, "decode must consume what encode wrote")
	require.Equal(t, v, got)
	return buf
}

// RoundTripOwned is RoundTrip for owned decodes. It also overwrites the
// encoding after decoding and requires the decoded value to be unaffected.
func RoundTripOwned[T any](t require.TestingT, c encdec.OwnedCodec[T], v T) []byte {
	helper(t)
	buf := encode(t, c, v)

	got, n, err := c.DecodeOwned(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n, "decode must consume what encode wrote")

	scratch := bytes.Clone(buf)
	for i := range buf {
		buf[i] ^= 0xff
	}
	require.Equal(t, v, got, "owned values must not share memory with the input")
	copy(buf, scratch)
	return buf
}

// Layout requires v to encode to exactly want.
func Layout[T any](t require.TestingT, c encdec.Encoder[T], v T, want []byte) {
	helper(t)
	require.Equal(t, want, encode(t, c, v))
}

// EncodeOverrun requires encoding v into every buffer shorter than
// EncodeLen(v) to fail with ErrLength without writing past the buffer.
func EncodeOverrun[T any](t require.TestingT, c encdec.Encoder[T], v T) {
	helper(t)
	size, err := c.EncodeLen(v)
	require.NoError(t, err)

	for k := 0; k < size; k++ {
		guard := bytes.Repeat([]byte{0xa5}, size+1)
		_, err := c.Encode(v, guard[:k:k])
		require.ErrorIs(t, err, encdec.ErrLength, "buffer of %d bytes", k)
		require.Equal(t, bytes.Repeat([]byte{0xa5}, size+1-k), guard[k:], "write past a %d byte buffer", k)
	}
}

// DecodeOverrun requires decoding every proper prefix of the encoding of v to
// fail with ErrLength. It only holds for self-delimiting codecs, whose last
// field is not greedy.
func DecodeOverrun[T any](t require.TestingT, c encdec.Codec[T], v T) {
	helper(t)
	buf := encode(t, c, v)
	for k := 0; k < len(buf); k++ {
		_, n, err := c.Decode(buf[:k])
		require.ErrorIs(t, err, encdec.ErrLength, "prefix of %d bytes", k)
		require.Zero(t, n)
	}
}

func encode[T any](t require.TestingT, c encdec.Encoder[T], v T) []byte {
	helper(t)
	size, err := c.EncodeLen(v)
	require.NoError(t, err)

	buf := make([]byte, size)
	n, err := c.Encode(v, buf)
	require.NoError(t, err)
	require.Equal(t, size, n, "EncodeLen must equal the bytes written")
	return buf
}
