package encdec

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingWriter accepts at most limit bytes per call.
type failingWriter struct {
	limit int
	err   error
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if len(p) > w.limit {
		return w.limit, w.err
	}
	return len(p), nil
}

func TestMarshal(t *testing.T) {
	data, err := Marshal[header](headerCodec, header{A: 0x10, B: 0xabcd, C: 0x11})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x10, 0xcd, 0xab, 0x11}, data)

	codec, err := blobDef().Build()
	require.NoError(t, err)
	_, err = Marshal[blob](codec, blob{A: make([]byte, 256)})
	assert.ErrorIs(t, err, ErrLength)
}

func TestDecodeExact(t *testing.T) {
	t.Run("ZeroPadding", func(t *testing.T) {
		v, err := DecodeExact[header](headerCodec, []byte{1, 2, 0, 3, 0, 0})
		require.NoError(t, err)
		assert.Equal(t, header{A: 1, B: 2, C: 3}, v)
	})

	t.Run("TrailingData", func(t *testing.T) {
		v, err := DecodeExact[header](headerCodec, []byte{1, 2, 0, 3, 0x01, 0x02})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTrailingData)
		assert.Contains(t, err.Error(), "non-zero byte")
		assert.Equal(t, header{}, v)
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := DecodeExact[header](headerCodec, []byte{1, 2})
		assert.ErrorIs(t, err, ErrLength)
	})
}

func TestEncodeTo(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var buf bytes.Buffer
		n, err := EncodeTo[header](&buf, headerCodec, header{A: 1, B: 2, C: 3})
		require.NoError(t, err)
		assert.EqualValues(t, 4, n)
		assert.Equal(t, []byte{1, 2, 0, 3}, buf.Bytes())
	})

	t.Run("ShortWrite", func(t *testing.T) {
		n, err := EncodeTo[header](&failingWriter{limit: 2}, headerCodec, header{})
		assert.ErrorIs(t, err, io.ErrShortWrite)
		assert.EqualValues(t, 2, n)
	})

	t.Run("WriterError", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := EncodeTo[header](&failingWriter{limit: 0, err: boom}, headerCodec, header{})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("NilWriter", func(t *testing.T) {
		_, err := EncodeTo[header](nil, headerCodec, header{})
		assert.ErrorIs(t, err, ErrNilIO)
	})
}

func TestDecodeFrom(t *testing.T) {
	codec, err := labelDef().BuildOwned()
	require.NoError(t, err)

	v, n, err := DecodeFrom[label](bytes.NewReader([]byte{2, 0, 'h', 'i', 0}), codec)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
	assert.Equal(t, "hi", v.Name)

	_, _, err = DecodeFrom[label](bytes.NewReader([]byte{2, 0, 'h'}), codec)
	assert.ErrorIs(t, err, ErrLength)

	_, _, err = DecodeFrom[label](nil, codec)
	assert.ErrorIs(t, err, ErrNilIO)
}

// encoderDecoder joins separately built halves into a Codec.
type encoderDecoder[T any] struct {
	Encoder[T]
	Decoder[T]
}

func TestFromOwned(t *testing.T) {
	type rec struct {
		N uint8
		B []byte
	}
	codec, err := NewSchema[rec]("rec",
		Field("n", func(r *rec) *uint8 { return &r.N }, Uint8),
		Field("b", func(r *rec) *[]byte { return &r.B },
			Codec[[]byte](encoderDecoder[[]byte]{Encoder: Bytes, Decoder: FromOwned[[]byte](Bytes)})),
	).Build()
	require.NoError(t, err)

	in := []byte{2, 'o', 'k'}
	got, n, err := codec.Decode(in)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	in[1] = 'n'
	assert.Equal(t, []byte("ok"), got.B, "decodes through an owned decoder never borrow")

	data, err := Marshal[rec](codec, got)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 'o', 'k'}, data)
}
