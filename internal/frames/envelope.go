package frames

import (
	"errors"
	"fmt"

	"github.com/oy3o/encdec"
)

// Envelope carries one payload of type P behind a kind byte. The payload is
// length-prefixed so receivers can skip kinds they do not know.
type Envelope[P any] struct {
	Kind    uint8 `yaml:"kind"`
	Payload P     `yaml:"payload"`
}

// Code classifies a frame failure for device diagnostics.
type Code uint8

const (
	CodeInvalid Code = iota + 1
	CodeTruncated
	CodeBadText
	CodeBadStamp
	CodeTrailing
)

func (c Code) String() string {
	switch c {
	case CodeTruncated:
		return "truncated"
	case CodeBadText:
		return "bad_text"
	case CodeBadStamp:
		return "bad_stamp"
	case CodeTrailing:
		return "trailing"
	default:
		return "invalid"
	}
}

// FrameError is the error type of envelope codecs.
type FrameError struct {
	Code Code
	Err  error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %s: %v", e.Code, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }

// toFrameError classifies err. It is total: unknown errors become CodeInvalid.
func toFrameError(err error) *FrameError {
	code := CodeInvalid
	switch {
	case errors.Is(err, encdec.ErrLength):
		code = CodeTruncated
	case errors.Is(err, encdec.ErrUtf8):
		code = CodeBadText
	case errors.Is(err, ErrStamp):
		code = CodeBadStamp
	case errors.Is(err, encdec.ErrTrailingData):
		code = CodeTrailing
	}
	return &FrameError{Code: code, Err: err}
}

// NewEnvelopeCodec builds the envelope codec for payloads encoded by payload.
// Every failure, including those of the payload codec, is reported as a
// *FrameError.
//
//	[kind u8][len u16][payload: len bytes]
func NewEnvelopeCodec[P any](payload encdec.Codec[P]) (*encdec.Schema[Envelope[P]], error) {
	return encdec.NewSchema[Envelope[P]]("Envelope",
		encdec.Field("kind", func(e *Envelope[P]) *uint8 { return &e.Kind }, encdec.Uint8),
		encdec.Field("payload", func(e *Envelope[P]) *P { return &e.Payload },
			encdec.Codec[P](encdec.Prefixed(encdec.Uint16, payload))),
	).Build(encdec.WithError(toFrameError))
}

// Envelope kinds.
const (
	KindReading   uint8 = 1
	KindTelemetry uint8 = 2
)

var (
	ReadingEnvelope   = mustEnvelope(encdec.Codec[Reading](ReadingCodec))
	TelemetryEnvelope = mustEnvelope(encdec.Codec[Telemetry](OwnedTelemetryCodec))
)

func mustEnvelope[P any](payload encdec.Codec[P]) *encdec.Schema[Envelope[P]] {
	c, err := NewEnvelopeCodec(payload)
	if err != nil {
		panic(err)
	}
	return c
}
