package encdec

import (
	"io"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeIter(t *testing.T) {
	data := []byte{1, 0, 2, 0, 3, 0}

	t.Run("Next", func(t *testing.T) {
		it := NewDecodeIter[uint16](Uint16, data)
		for _, want := range []uint16{1, 2, 3} {
			v, err := it.Next()
			require.NoError(t, err)
			assert.Equal(t, want, v)
		}
		assert.Equal(t, 6, it.Offset())

		_, err := it.Next()
		assert.ErrorIs(t, err, io.EOF)
		assert.NoError(t, it.Err(), "a clean end is not latched")
	})

	t.Run("LatchesFirstError", func(t *testing.T) {
		it := NewDecodeIter[uint16](Uint16, []byte{1, 0, 2})
		_, err := it.Next()
		require.NoError(t, err)

		_, err = it.Next()
		require.ErrorIs(t, err, ErrLength)
		assert.Equal(t, 2, it.Offset())

		_, again := it.Next()
		assert.Equal(t, err, again, "the latched error should not change")
		assert.Equal(t, err, it.Err())
	})

	t.Run("CloneRestarts", func(t *testing.T) {
		it := NewDecodeIter[uint16](Uint16, data)
		_, _ = it.Next()
		_, _ = it.Next()

		c := it.Clone()
		assert.Zero(t, c.Offset())
		v, err := c.Next()
		require.NoError(t, err)
		assert.Equal(t, uint16(1), v)
		assert.Equal(t, 4, it.Offset(), "the original is unaffected")
	})

	t.Run("All", func(t *testing.T) {
		var got []uint16
		for v, err := range NewDecodeIter[uint16](Uint16, data).All() {
			require.NoError(t, err)
			got = append(got, v)
		}
		assert.Equal(t, []uint16{1, 2, 3}, got)
	})

	t.Run("AllStopsAtError", func(t *testing.T) {
		var errs int
		var got []uint16
		for v, err := range NewDecodeIter[uint16](Uint16, []byte{1, 0, 9}).All() {
			if err != nil {
				errs++
				continue
			}
			got = append(got, v)
		}
		assert.Equal(t, 1, errs)
		assert.Equal(t, []uint16{1}, got)
	})

	t.Run("Records", func(t *testing.T) {
		it := NewDecodeIter[header](headerCodec, []byte{1, 2, 0, 3, 4, 5, 0, 6})
		v, err := it.Next()
		require.NoError(t, err)
		assert.Equal(t, header{1, 2, 3}, v)
		v, err = it.Next()
		require.NoError(t, err)
		assert.Equal(t, header{4, 5, 6}, v)
	})
}

func TestEncodeSeq(t *testing.T) {
	buf := make([]byte, 8)
	n, err := EncodeSeq[uint16](Uint16, slices.Values([]uint16{1, 2, 3}), buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 2, 0, 3, 0}, buf[:n])

	n, err = EncodeSeq[uint16](Uint16, slices.Values([]uint16{1, 2, 3, 4, 5}), buf)
	assert.ErrorIs(t, err, ErrLength)
	assert.Equal(t, 8, n, "values written before the failure are counted")
}
