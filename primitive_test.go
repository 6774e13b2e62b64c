package encdec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntLayout(t *testing.T) {
	buf := make([]byte, 8)

	n, err := Uint16.Encode(0xabcd, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xcd, 0xab}, buf[:n])

	n, err = Uint32.Encode(0xDDEEFF00, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xFF, 0xEE, 0xDD}, buf[:n])

	n, err = Uint64.Encode(0x0102030405060708, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}, buf[:n])

	n, err = Int16.Encode(-2, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xfe, 0xff}, buf[:n])
}

func TestIntRoundTrip(t *testing.T) {
	buf := make([]byte, 8)

	t.Run("Signed", func(t *testing.T) {
		for _, v := range []int32{0, 1, -1, 1 << 30, -1 << 31} {
			n, err := Int32.Encode(v, buf)
			require.NoError(t, err)
			got, read, err := Int32.Decode(buf[:n])
			require.NoError(t, err)
			assert.Equal(t, 4, read)
			assert.Equal(t, v, got)
		}
	})

	t.Run("Int8", func(t *testing.T) {
		_, err := Int8.Encode(-128, buf)
		require.NoError(t, err)
		got, _, err := Int8.DecodeOwned(buf)
		require.NoError(t, err)
		assert.Equal(t, int8(-128), got)
	})

	t.Run("Int64", func(t *testing.T) {
		_, err := Int64.Encode(-42, buf)
		require.NoError(t, err)
		got, _, err := Int64.Decode(buf)
		require.NoError(t, err)
		assert.Equal(t, int64(-42), got)
	})
}

func TestIntShortBuffer(t *testing.T) {
	_, err := Uint32.Encode(1, make([]byte, 3))
	assert.ErrorIs(t, err, ErrLength)

	_, n, err := Uint64.Decode(make([]byte, 7))
	assert.ErrorIs(t, err, ErrLength)
	assert.Zero(t, n)

	_, _, err = Uint8.Decode(nil)
	assert.ErrorIs(t, err, ErrLength)
}

func TestIntWidth(t *testing.T) {
	assert.Equal(t, 1, Uint8.Width())
	assert.Equal(t, 2, Int16.Width())
	assert.Equal(t, 4, Uint32.Width())
	assert.Equal(t, 8, Int64.Width())

	n, err := Uint16.EncodeLen(7)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestIntLengthConversion(t *testing.T) {
	t.Run("FromLen", func(t *testing.T) {
		v, err := Uint8.FromLen(255)
		require.NoError(t, err)
		assert.Equal(t, uint8(255), v)

		_, err = Uint8.FromLen(256)
		assert.ErrorIs(t, err, ErrLength)

		_, err = Int8.FromLen(128)
		assert.ErrorIs(t, err, ErrLength)

		_, err = Uint32.FromLen(-1)
		assert.ErrorIs(t, err, ErrLength)
	})

	t.Run("ToLen", func(t *testing.T) {
		n, err := Uint16.ToLen(0xffff)
		require.NoError(t, err)
		assert.Equal(t, 0xffff, n)

		_, err = Int16.ToLen(-1)
		assert.ErrorIs(t, err, ErrLength)

		_, err = Uint64.ToLen(1 << 63)
		assert.ErrorIs(t, err, ErrLength)
	})
}

func TestCheckTrailingZeros(t *testing.T) {
	assert.NoError(t, CheckTrailingZeros(nil))
	assert.NoError(t, CheckTrailingZeros(make([]byte, 16)))

	err := CheckTrailingZeros([]byte{0, 0, 1})
	require.ErrorIs(t, err, ErrTrailingData)
	assert.Contains(t, err.Error(), "offset 2")

	err = CheckTrailingZeros(make([]byte, MAX_PADDING+1))
	assert.ErrorIs(t, err, ErrTrailingData)
}
