package encdec

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/exp/constraints"
)

// le is the only byte order on the wire.
var le = binary.LittleEndian

// Ptr is a helper function to create a pointer to a value, making test and
// record setup cleaner.
func Ptr[T any](v T) *T { return &v }

// fits reports whether the non-negative length n survives a round trip
// through P.
func fits[P constraints.Integer](n int) bool {
	if n < 0 {
		return false
	}
	p := P(n)
	return p >= 0 && int(p) == n
}

// MAX_PADDING defines the maximum number of trailing bytes to check.
// Anything larger is considered a framing error rather than padding.
const MAX_PADDING = 1024 // 1KB

// CheckTrailingZeros verifies that the bytes left over after a decode are all
// zero. This is critical for parsers to ensure the entire expected payload was
// consumed and no garbage data follows.
func CheckTrailingZeros(rest []byte) error {
	if len(rest) > MAX_PADDING {
		return fmt.Errorf("%w: %d bytes exceed maximum expected padding of %d bytes", ErrTrailingData, len(rest), MAX_PADDING)
	}
	for i, b := range rest {
		if b != 0 {
			return fmt.Errorf("%w: found non-zero byte 0x%02x at offset %d", ErrTrailingData, b, i)
		}
	}
	return nil
}
