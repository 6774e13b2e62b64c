package encdec

// Encoder is implemented by codecs that can write values of type T into a
// caller-supplied buffer.
type Encoder[T any] interface {
	// EncodeLen reports the exact number of bytes Encode writes for v.
	EncodeLen(v T) (int, error)

	// Encode writes v at the start of buf and returns the number of bytes
	// written. It fails with ErrLength if buf is too short and never writes
	// past len(buf).
	Encode(v T, buf []byte) (int, error)
}

// Decoder is implemented by codecs that can read values of type T.
// The returned value may reference buf (a borrowed view); it is only valid
// for as long as buf is left untouched.
type Decoder[T any] interface {
	// Decode reads a value from the start of buf and returns it together
	// with the number of bytes consumed.
	Decode(buf []byte) (T, int, error)
}

// OwnedDecoder is the borrow-free form of Decoder. Values returned by
// DecodeOwned never share memory with buf.
type OwnedDecoder[T any] interface {
	DecodeOwned(buf []byte) (T, int, error)
}

// TaggedDecoder decodes a value whose length is supplied from outside,
// usually by a sibling field. Exactly n bytes are consumed.
type TaggedDecoder[T any] interface {
	DecodeLen(buf []byte, n int) (T, error)
}

// OwnedTaggedDecoder is the borrow-free form of TaggedDecoder.
type OwnedTaggedDecoder[T any] interface {
	DecodeLenOwned(buf []byte, n int) (T, error)
}

// LengthCodec is implemented by codecs of integer types that can carry a
// byte length, either as the length source of a tagged field or as the
// derived value of a length-of field.
type LengthCodec[T any] interface {
	// FromLen converts a byte length into T, failing with ErrLength if it
	// does not fit.
	FromLen(n int) (T, error)
	// ToLen converts v into a byte length, failing with ErrLength if v is
	// negative or too large.
	ToLen(v T) (int, error)
}

// Codec aggregates encoding and borrowed decoding.
// A type implementing Codec is a complete, self-sizing binary codec for T.
type Codec[T any] interface {
	Encoder[T]
	Decoder[T]
}

// OwnedCodec is a Codec whose decoded values are independent copies.
type OwnedCodec[T any] interface {
	Codec[T]
	OwnedDecoder[T]
}

// FromOwned turns any owned decoder into a Decoder. Its decodes never borrow.
func FromOwned[T any](d OwnedDecoder[T]) Decoder[T] {
	return fromOwned[T]{d}
}

type fromOwned[T any] struct {
	d OwnedDecoder[T]
}

func (f fromOwned[T]) Decode(buf []byte) (T, int, error)      { return f.d.DecodeOwned(buf) }
func (f fromOwned[T]) DecodeOwned(buf []byte) (T, int, error) { return f.d.DecodeOwned(buf) }

// ownership is implemented by composite codecs whose owned decode depends on
// the codecs they wrap.
type ownership interface {
	decodesOwned() bool
}

// ownedDecoder returns the owned form of c, if c has one.
func ownedDecoder[T any](c Decoder[T]) (OwnedDecoder[T], bool) {
	od, ok := c.(OwnedDecoder[T])
	if !ok {
		return nil, false
	}
	if o, ok := c.(ownership); ok && !o.decodesOwned() {
		return nil, false
	}
	return od, true
}

// ownedTaggedDecoder returns the owned tagged form of c, if c has one.
func ownedTaggedDecoder[T any](c Decoder[T]) (OwnedTaggedDecoder[T], bool) {
	od, ok := c.(OwnedTaggedDecoder[T])
	if !ok {
		return nil, false
	}
	if o, ok := c.(ownership); ok && !o.decodesOwned() {
		return nil, false
	}
	return od, true
}

// Statically assert that the built-in codecs implement their contracts.
var (
	_ OwnedCodec[uint16]           = Uint16
	_ LengthCodec[int32]           = Int32
	_ OwnedCodec[[]byte]           = Bytes
	_ TaggedDecoder[[]byte]        = Bytes
	_ OwnedTaggedDecoder[[]byte]   = Bytes
	_ OwnedCodec[string]           = Str
	_ TaggedDecoder[string]        = Str
	_ OwnedTaggedDecoder[string]   = Str
	_ OwnedCodec[[]uint8]          = (*ArrayCodec[uint8])(nil)
	_ OwnedCodec[[]uint8]          = (*SeqCodec[uint8])(nil)
	_ OwnedTaggedDecoder[[]uint8]  = (*SeqCodec[uint8])(nil)
	_ OwnedCodec[*uint8]           = (*RefCodec[uint8])(nil)
	_ OwnedCodec[[]byte]           = (*PrefixedCodec[uint8, []byte])(nil)
	_ Codec[struct{}]              = (*Schema[struct{}])(nil)
	_ OwnedCodec[struct{}]         = (*OwnedSchema[struct{}])(nil)
	_ OwnedDecoder[uint8]          = fromOwned[uint8]{}
)
