package frames

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oy3o/encdec"
	"github.com/oy3o/encdec/encdectest"
)

func sampleTelemetry() Telemetry {
	return Telemetry{
		Header:  Header{Version: 1, Seq: 0x0102, Flags: 0x80},
		Serial:  [4]byte{0xde, 0xad, 0xbe, 0xef},
		NameLen: 4,
		Name:    "pump",
		Taken:   0x0000018f00000001,
		Drift:   -3,
		Readings: []Reading{
			{Channel: 1, Value: 250},
			{Channel: 2, Value: -40},
		},
	}
}

func TestHeader(t *testing.T) {
	v := Header{Version: 0x10, Seq: 0xabcd, Flags: 0x11}
	encdectest.Layout[Header](t, HeaderCodec, v, []byte{0x10, 0xcd, 0xab, 0x11})
	encdectest.RoundTripOwned[Header](t, HeaderCodec, v)
	encdectest.EncodeOverrun[Header](t, HeaderCodec, v)
	encdectest.DecodeOverrun[Header](t, HeaderCodec, v)
}

func TestBlob(t *testing.T) {
	buf := make([]byte, 8)
	n, err := BlobCodec.Encode(Blob{Len: 0, Data: []byte{0xa1, 0xa2, 0xa3}}, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 0xa1, 0xa2, 0xa3}, buf[:n])

	got, _, err := BlobCodec.Decode(buf[:n])
	require.NoError(t, err)
	assert.Equal(t, Blob{Len: 3, Data: []byte{0xa1, 0xa2, 0xa3}}, got)

	encdectest.RoundTripOwned[Blob](t, OwnedBlobCodec, Blob{Len: 2, Data: []byte{7, 8}})
	encdectest.DecodeOverrun[Blob](t, BlobCodec, Blob{Len: 2, Data: []byte{7, 8}})
}

func TestTelemetry(t *testing.T) {
	v := sampleTelemetry()
	data := encdectest.RoundTrip[Telemetry](t, TelemetryCodec, v)
	encdectest.RoundTripOwned[Telemetry](t, OwnedTelemetryCodec, v)
	encdectest.EncodeOverrun[Telemetry](t, TelemetryCodec, v)

	want := []byte{
		1, 0x02, 0x01, 0x80, // header
		0xde, 0xad, 0xbe, 0xef, // serial
		4, 'p', 'u', 'm', 'p', // name
		0xff, 0, 0, 0x01, 0x8f, 0, 0, 0, 0x01, // taken, big-endian behind its marker
		5, 0, // drift, zigzag
		1, 250, 0, 0, 0, // readings
		2, 0xd8, 0xff, 0xff, 0xff,
	}
	assert.Equal(t, want, data)

	assert.Equal(t, []encdec.FieldInfo{
		{Name: "header", Strategy: encdec.StrategyDefault},
		{Name: "serial", Strategy: encdec.StrategyDefault},
		{Name: "name_len", Strategy: encdec.StrategyLengthOf},
		{Name: "name", Strategy: encdec.StrategyLength},
		{Name: "taken", Strategy: encdec.StrategyFunctions},
		{Name: "drift", Strategy: encdec.StrategyModule},
		{Name: "readings", Strategy: encdec.StrategyDefault},
	}, TelemetryCodec.Fields())
}

func TestTelemetryErrors(t *testing.T) {
	data, err := encdec.Marshal[Telemetry](TelemetryCodec, sampleTelemetry())
	require.NoError(t, err)

	t.Run("BadStamp", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[13] = 0
		_, _, err := TelemetryCodec.Decode(bad)
		require.ErrorIs(t, err, ErrStamp)
		e, ok := encdec.AsError(err)
		require.True(t, ok)
		assert.Equal(t, "taken", e.Field)
		assert.Equal(t, 13, e.Offset)
	})

	t.Run("RaggedReadings", func(t *testing.T) {
		_, _, err := TelemetryCodec.Decode(data[:len(data)-1])
		require.ErrorIs(t, err, encdec.ErrLength)
		e, ok := encdec.AsError(err)
		require.True(t, ok)
		assert.Equal(t, "readings", e.Field)
	})

	t.Run("BadName", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[9] = 0xff
		_, _, err := TelemetryCodec.Decode(bad)
		assert.ErrorIs(t, err, encdec.ErrUtf8)
	})

	t.Run("NameTooLong", func(t *testing.T) {
		v := sampleTelemetry()
		v.Name = string(make([]byte, 256))
		_, err := TelemetryCodec.EncodeLen(v)
		assert.ErrorIs(t, err, encdec.ErrLength)
	})
}

func TestZigzag(t *testing.T) {
	buf := make([]byte, 2)
	for _, tc := range []struct {
		v    int16
		wire uint16
	}{
		{0, 0}, {-1, 1}, {1, 2}, {-2, 3}, {32767, 65534}, {-32768, 65535},
	} {
		_, err := Zigzag16.Encode(tc.v, buf)
		require.NoError(t, err)
		w, _, err := encdec.Uint16.Decode(buf)
		require.NoError(t, err)
		assert.Equal(t, tc.wire, w, "value %d", tc.v)

		got, _, err := Zigzag16.DecodeOwned(buf)
		require.NoError(t, err)
		assert.Equal(t, tc.v, got)
	}
}

func TestEnvelope(t *testing.T) {
	t.Run("Reading", func(t *testing.T) {
		v := Envelope[Reading]{Kind: KindReading, Payload: Reading{Channel: 3, Value: 1}}
		encdectest.Layout[Envelope[Reading]](t, ReadingEnvelope, v, []byte{1, 5, 0, 3, 1, 0, 0, 0})
		encdectest.RoundTrip[Envelope[Reading]](t, ReadingEnvelope, v)
		encdectest.DecodeOverrun[Envelope[Reading]](t, ReadingEnvelope, v)
	})

	t.Run("Telemetry", func(t *testing.T) {
		v := Envelope[Telemetry]{Kind: KindTelemetry, Payload: sampleTelemetry()}
		data := encdectest.RoundTrip[Envelope[Telemetry]](t, TelemetryEnvelope, v)

		// The prefix bounds the greedy readings, so trailing bytes are left alone.
		got, n, err := TelemetryEnvelope.Decode(append(data, 0xee, 0xee))
		require.NoError(t, err)
		assert.Equal(t, len(data), n)
		assert.Equal(t, v, got)
	})

	t.Run("ErrorsAreFrameErrors", func(t *testing.T) {
		cases := []struct {
			name string
			in   []byte
			code Code
		}{
			{"Empty", nil, CodeTruncated},
			{"ShortPayload", []byte{1, 5, 0, 3}, CodeTruncated},
			{"PayloadUnderrun", []byte{1, 2, 0, 3, 1}, CodeTruncated},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, _, err := ReadingEnvelope.Decode(tc.in)
				var fe *FrameError
				require.True(t, errors.As(err, &fe))
				assert.Equal(t, tc.code, fe.Code)
				assert.ErrorIs(t, err, encdec.ErrLength)
			})
		}
	})

	t.Run("TrailingDataIsFrameError", func(t *testing.T) {
		_, err := encdec.DecodeExact[Envelope[Reading]](ReadingEnvelope, []byte{1, 5, 0, 3, 1, 0, 0, 0, 0xee})
		var fe *FrameError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, CodeTrailing, fe.Code)
		assert.Equal(t, "trailing", fe.Code.String())
		assert.ErrorIs(t, err, encdec.ErrTrailingData)
	})

	t.Run("PayloadErrorsAreConverted", func(t *testing.T) {
		data, err := encdec.Marshal[Envelope[Telemetry]](TelemetryEnvelope, Envelope[Telemetry]{Payload: sampleTelemetry()})
		require.NoError(t, err)
		data[3+13] = 0

		_, _, err = TelemetryEnvelope.Decode(data)
		var fe *FrameError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, CodeBadStamp, fe.Code)
		assert.Contains(t, err.Error(), "frame bad_stamp")
	})

	t.Run("EncodeErrors", func(t *testing.T) {
		_, err := ReadingEnvelope.Encode(Envelope[Reading]{}, make([]byte, 4))
		var fe *FrameError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, CodeTruncated, fe.Code)
	})
}

func FuzzTelemetryDecode(f *testing.F) {
	data, err := encdec.Marshal[Telemetry](TelemetryCodec, sampleTelemetry())
	require.NoError(f, err)
	f.Add(data)
	f.Add([]byte{})
	f.Add([]byte{1, 2, 3, 4, 5, 6, 7, 8, 0xff})

	f.Fuzz(func(t *testing.T, in []byte) {
		v, n, err := OwnedTelemetryCodec.Decode(in)
		if err != nil {
			return
		}
		// Whatever decodes must encode back to the same bytes.
		out, err := encdec.Marshal[Telemetry](TelemetryCodec, v)
		require.NoError(t, err)
		assert.Equal(t, in[:n], out)
	})
}
