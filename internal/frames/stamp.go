package frames

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/oy3o/encdec"
)

// stampMarker precedes every timestamp on the wire.
const stampMarker = 0xff

const stampSize = 9

// ErrStamp reports a timestamp without its marker byte.
var ErrStamp = errors.New("frames: missing timestamp marker")

// Timestamps are the one big-endian value in a frame; devices copy them
// verbatim from their RTC. They are bound to Telemetry.Taken as function
// overrides.
func stampLen(uint64) (int, error) { return stampSize, nil }

func encodeStamp(v uint64, buf []byte) (int, error) {
	if len(buf) < stampSize {
		return 0, encdec.ErrLength
	}
	buf[0] = stampMarker
	binary.BigEndian.PutUint64(buf[1:], v)
	return stampSize, nil
}

func decodeStamp(buf []byte) (uint64, int, error) {
	if len(buf) < stampSize {
		return 0, 0, encdec.ErrLength
	}
	if buf[0] != stampMarker {
		return 0, 0, fmt.Errorf("%w: got 0x%02x", ErrStamp, buf[0])
	}
	return binary.BigEndian.Uint64(buf[1:]), stampSize, nil
}

// zigzag16 stores an int16 as a zigzag encoded uint16, keeping small negative
// drifts small on the wire.
type zigzag16 struct{}

// Zigzag16 is the codec module for signed drift values.
var Zigzag16 encdec.OwnedCodec[int16] = zigzag16{}

func (zigzag16) EncodeLen(int16) (int, error) { return 2, nil }

func (zigzag16) Encode(v int16, buf []byte) (int, error) {
	return encdec.Uint16.Encode(uint16(v<<1)^uint16(v>>15), buf)
}

func (zigzag16) Decode(buf []byte) (int16, int, error) {
	u, n, err := encdec.Uint16.Decode(buf)
	if err != nil {
		return 0, 0, err
	}
	return int16(u>>1) ^ -int16(u&1), n, nil
}

func (z zigzag16) DecodeOwned(buf []byte) (int16, int, error) {
	return z.Decode(buf)
}
