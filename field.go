package encdec

// Strategy identifies how a field is encoded and decoded. It is chosen once,
// when the schema is built.
type Strategy uint8

const (
	// StrategyDefault uses the field codec unmodified.
	StrategyDefault Strategy = iota
	// StrategyLength takes the field's byte length from a sibling field.
	StrategyLength
	// StrategyLengthOf derives the field's value from the encoded length of
	// a sibling field.
	StrategyLengthOf
	// StrategyModule replaces the field codec entirely.
	StrategyModule
	// StrategyFunctions replaces individual codec operations.
	StrategyFunctions
)

var strategyNames = [...]string{
	StrategyDefault:   "default",
	StrategyLength:    "length",
	StrategyLengthOf:  "length_of",
	StrategyModule:    "with",
	StrategyFunctions: "functions",
}

func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return "unknown"
}

// Function overrides for a single field.
type (
	EncodeFunc[T any]    func(v T, buf []byte) (int, error)
	EncodeLenFunc[T any] func(v T) (int, error)
	DecodeFunc[T any]    func(buf []byte) (T, int, error)
)

// FieldDef is a record field as seen by the schema compiler. It is
// implemented by the values returned from Field and ArrayField.
type FieldDef[R any] interface {
	// FieldName returns the name used by sibling directives and errors.
	FieldName() string

	resolve(rs *resolver[R]) (plan[R], Strategy, error)
	lengthSource() func(*R) (int, error)
	derivesLength() bool
}

// plan is the resolved encode/decode strategy of one field. Every plan
// shares its length logic between encodeLen and encode.
type plan[R any] interface {
	encodeLen(r *R) (int, error)
	encode(r *R, buf []byte) (int, error)
	decode(r *R, buf []byte) (int, error)
}

// resolver carries the schema-wide context needed to resolve one field.
type resolver[R any] struct {
	record string
	owned  bool
	defs   []FieldDef[R]
	index  map[string]int
	pos    int
	links  []func(plans []plan[R])
}

// FieldSpec describes one record field: an accessor into the record, the
// codec of the field type and at most one directive.
type FieldSpec[R, T any] struct {
	name     string
	ref      func(*R) *T
	codec    Codec[T]
	length   string
	lengthOf string
	module   Codec[T]
	enc      EncodeFunc[T]
	encLen   EncodeLenFunc[T]
	dec      DecodeFunc[T]
}

// Field declares a record field. ref returns a pointer to the field inside
// the record; codec is the codec of the field type, used unless a directive
// replaces it.
//
//	Field("seq", func(h *Header) *uint16 { return &h.Seq }, Uint16)
func Field[R, T any](name string, ref func(*R) *T, codec Codec[T]) *FieldSpec[R, T] {
	return &FieldSpec[R, T]{name: name, ref: ref, codec: codec}
}

// Length makes the field's byte length come from the integer field sibling,
// which must be declared earlier in the record. The field codec must
// implement TaggedDecoder.
func (f *FieldSpec[R, T]) Length(sibling string) *FieldSpec[R, T] {
	f.length = sibling
	return f
}

// LengthOf makes the field carry the encoded length of target. The value is
// recomputed on every encode; whatever the record holds is ignored.
func (f *FieldSpec[R, T]) LengthOf(target string) *FieldSpec[R, T] {
	f.lengthOf = target
	return f
}

// With replaces the field codec with module for every operation.
func (f *FieldSpec[R, T]) With(module Codec[T]) *FieldSpec[R, T] {
	f.module = module
	return f
}

// Enc overrides the encode operation.
func (f *FieldSpec[R, T]) Enc(fn EncodeFunc[T]) *FieldSpec[R, T] {
	f.enc = fn
	return f
}

// EncLen overrides the encoded length operation.
func (f *FieldSpec[R, T]) EncLen(fn EncodeLenFunc[T]) *FieldSpec[R, T] {
	f.encLen = fn
	return f
}

// Dec overrides the decode operation. In an owned schema fn must return
// values that share no memory with its input.
func (f *FieldSpec[R, T]) Dec(fn DecodeFunc[T]) *FieldSpec[R, T] {
	f.dec = fn
	return f
}

func (f *FieldSpec[R, T]) FieldName() string { return f.name }

func (f *FieldSpec[R, T]) derivesLength() bool { return f.lengthOf != "" }

func (f *FieldSpec[R, T]) lengthSource() func(*R) (int, error) {
	lc, ok := f.codec.(LengthCodec[T])
	if !ok {
		return nil
	}
	ref := f.ref
	return func(r *R) (int, error) {
		return lc.ToLen(*ref(r))
	}
}

// resolve picks the field strategy. Precedence: module, then functions, then
// the length directives, then the default codec.
func (f *FieldSpec[R, T]) resolve(rs *resolver[R]) (plan[R], Strategy, error) {
	custom := f.module != nil || f.enc != nil || f.encLen != nil || f.dec != nil
	switch {
	case f.ref == nil:
		return nil, 0, directiveError(rs.record, f.name, "nil field accessor")
	case f.length != "" && f.lengthOf != "":
		return nil, 0, directiveError(rs.record, f.name, "length and length_of are mutually exclusive")
	case custom && (f.length != "" || f.lengthOf != ""):
		return nil, 0, directiveError(rs.record, f.name, "custom codecs cannot be combined with length directives")
	}

	switch {
	case f.module != nil:
		dec, err := decodeFunc(rs, f.name, f.module)
		if err != nil {
			return nil, 0, err
		}
		return &codecPlan[R, T]{ref: f.ref, encLen: f.module.EncodeLen, enc: f.module.Encode, dec: dec}, StrategyModule, nil
	case custom:
		return f.resolveFunctions(rs)
	case f.length != "":
		return f.resolveTagged(rs)
	case f.lengthOf != "":
		return f.resolveLengthOf(rs)
	}

	if f.codec == nil {
		return nil, 0, directiveError(rs.record, f.name, "no codec")
	}
	dec, err := decodeFunc(rs, f.name, f.codec)
	if err != nil {
		return nil, 0, err
	}
	return &codecPlan[R, T]{ref: f.ref, encLen: f.codec.EncodeLen, enc: f.codec.Encode, dec: dec}, StrategyDefault, nil
}

// resolveFunctions fills operations left unset from the field codec.
func (f *FieldSpec[R, T]) resolveFunctions(rs *resolver[R]) (plan[R], Strategy, error) {
	p := &codecPlan[R, T]{ref: f.ref, encLen: f.encLen, enc: f.enc, dec: f.dec}
	if (p.encLen == nil || p.enc == nil || p.dec == nil) && f.codec == nil {
		return nil, 0, directiveError(rs.record, f.name, "no codec for the operations not overridden")
	}
	if p.encLen == nil {
		p.encLen = f.codec.EncodeLen
	}
	if p.enc == nil {
		p.enc = f.codec.Encode
	}
	if p.dec == nil {
		dec, err := decodeFunc(rs, f.name, f.codec)
		if err != nil {
			return nil, 0, err
		}
		p.dec = dec
	}
	return p, StrategyFunctions, nil
}

func (f *FieldSpec[R, T]) resolveTagged(rs *resolver[R]) (plan[R], Strategy, error) {
	idx, ok := rs.index[f.length]
	switch {
	case !ok:
		return nil, 0, directiveError(rs.record, f.name, "length sibling %q is not a field", f.length)
	case idx >= rs.pos:
		return nil, 0, directiveError(rs.record, f.name, "length sibling %q must be declared before the field", f.length)
	case f.codec == nil:
		return nil, 0, directiveError(rs.record, f.name, "no codec")
	}
	length := rs.defs[idx].lengthSource()
	if length == nil {
		return nil, 0, directiveError(rs.record, f.name, "length sibling %q is not an integer field", f.length)
	}

	p := &taggedPlan[R, T]{ref: f.ref, codec: f.codec, length: length}
	if rs.owned {
		td, ok := ownedTaggedDecoder(Decoder[T](f.codec))
		if !ok {
			return nil, 0, directiveError(rs.record, f.name, "codec %T cannot decode an owned tagged length", f.codec)
		}
		p.dec = td.DecodeLenOwned
	} else {
		td, ok := f.codec.(TaggedDecoder[T])
		if !ok {
			return nil, 0, directiveError(rs.record, f.name, "codec %T cannot decode a tagged length", f.codec)
		}
		p.dec = td.DecodeLen
	}
	return p, StrategyLength, nil
}

func (f *FieldSpec[R, T]) resolveLengthOf(rs *resolver[R]) (plan[R], Strategy, error) {
	idx, ok := rs.index[f.lengthOf]
	switch {
	case !ok:
		return nil, 0, directiveError(rs.record, f.name, "length_of target %q is not a field", f.lengthOf)
	case idx == rs.pos:
		return nil, 0, directiveError(rs.record, f.name, "length_of cannot target the field itself")
	case rs.defs[idx].derivesLength():
		return nil, 0, directiveError(rs.record, f.name, "length_of target %q is itself a length_of field", f.lengthOf)
	case f.codec == nil:
		return nil, 0, directiveError(rs.record, f.name, "no codec")
	}
	lc, ok := f.codec.(LengthCodec[T])
	if !ok {
		return nil, 0, directiveError(rs.record, f.name, "codec %T cannot carry a length", f.codec)
	}
	dec, err := decodeFunc(rs, f.name, f.codec)
	if err != nil {
		return nil, 0, err
	}

	p := &lengthOfPlan[R, T]{ref: f.ref, codec: f.codec, lc: lc, dec: dec}
	rs.links = append(rs.links, func(plans []plan[R]) { p.target = plans[idx] })
	return p, StrategyLengthOf, nil
}

// decodeFunc picks the decode operation of c matching the schema mode. In
// owned mode c must have an owned form; borrow-only codecs can be lifted
// with Own.
func decodeFunc[R, T any](rs *resolver[R], field string, c Codec[T]) (DecodeFunc[T], error) {
	if !rs.owned {
		return c.Decode, nil
	}
	if od, ok := ownedDecoder(Decoder[T](c)); ok {
		return od.DecodeOwned, nil
	}
	return nil, directiveError(rs.record, field, "codec %T cannot decode owned values (wrap it with Own)", c)
}

// ArrayFieldSpec describes a fixed-count array field such as [4]byte. The
// element count is the length of the slice ref returns for a zero record.
type ArrayFieldSpec[R, T any] struct {
	name string
	ref  func(*R) []T
	elem Codec[T]
}

// ArrayField declares a Go array field, bound through a slice of it.
//
//	ArrayField("serial", func(t *Telemetry) []byte { return t.Serial[:] }, Uint8)
func ArrayField[R, T any](name string, ref func(*R) []T, elem Codec[T]) *ArrayFieldSpec[R, T] {
	return &ArrayFieldSpec[R, T]{name: name, ref: ref, elem: elem}
}

func (f *ArrayFieldSpec[R, T]) FieldName() string { return f.name }

func (f *ArrayFieldSpec[R, T]) derivesLength() bool { return false }

func (f *ArrayFieldSpec[R, T]) lengthSource() func(*R) (int, error) { return nil }

func (f *ArrayFieldSpec[R, T]) resolve(rs *resolver[R]) (plan[R], Strategy, error) {
	if f.ref == nil || f.elem == nil {
		return nil, 0, directiveError(rs.record, f.name, "nil field accessor or element codec")
	}
	var zero R
	arr := Array(f.elem, len(f.ref(&zero)))
	dec, err := decodeFunc(rs, f.name, Codec[[]T](arr))
	if err != nil {
		return nil, 0, err
	}
	return &arrayPlan[R, T]{ref: f.ref, arr: arr, dec: dec}, StrategyDefault, nil
}

// --- Plans ---

type codecPlan[R, T any] struct {
	ref    func(*R) *T
	encLen EncodeLenFunc[T]
	enc    EncodeFunc[T]
	dec    DecodeFunc[T]
}

func (p *codecPlan[R, T]) encodeLen(r *R) (int, error) { return p.encLen(*p.ref(r)) }

func (p *codecPlan[R, T]) encode(r *R, buf []byte) (int, error) { return p.enc(*p.ref(r), buf) }

func (p *codecPlan[R, T]) decode(r *R, buf []byte) (int, error) {
	v, n, err := p.dec(buf)
	if err != nil {
		return 0, err
	}
	*p.ref(r) = v
	return n, nil
}

type taggedPlan[R, T any] struct {
	ref    func(*R) *T
	codec  Encoder[T]
	length func(*R) (int, error)
	dec    func(buf []byte, n int) (T, error)
}

func (p *taggedPlan[R, T]) encodeLen(r *R) (int, error) { return p.codec.EncodeLen(*p.ref(r)) }

func (p *taggedPlan[R, T]) encode(r *R, buf []byte) (int, error) { return p.codec.Encode(*p.ref(r), buf) }

// decode reads exactly as many bytes as the already decoded sibling says.
func (p *taggedPlan[R, T]) decode(r *R, buf []byte) (int, error) {
	n, err := p.length(r)
	if err != nil {
		return 0, err
	}
	v, err := p.dec(buf, n)
	if err != nil {
		return 0, err
	}
	*p.ref(r) = v
	return n, nil
}

type lengthOfPlan[R, T any] struct {
	ref    func(*R) *T
	codec  Encoder[T]
	lc     LengthCodec[T]
	target plan[R]
	dec    DecodeFunc[T]
}

// derive computes the value written on the wire from the target field.
func (p *lengthOfPlan[R, T]) derive(r *R) (T, error) {
	n, err := p.target.encodeLen(r)
	if err != nil {
		var zero T
		return zero, err
	}
	return p.lc.FromLen(n)
}

func (p *lengthOfPlan[R, T]) encodeLen(r *R) (int, error) {
	v, err := p.derive(r)
	if err != nil {
		return 0, err
	}
	return p.codec.EncodeLen(v)
}

func (p *lengthOfPlan[R, T]) encode(r *R, buf []byte) (int, error) {
	v, err := p.derive(r)
	if err != nil {
		return 0, err
	}
	return p.codec.Encode(v, buf)
}

func (p *lengthOfPlan[R, T]) decode(r *R, buf []byte) (int, error) {
	v, n, err := p.dec(buf)
	if err != nil {
		return 0, err
	}
	*p.ref(r) = v
	return n, nil
}

type arrayPlan[R, T any] struct {
	ref func(*R) []T
	arr *ArrayCodec[T]
	dec DecodeFunc[[]T]
}

func (p *arrayPlan[R, T]) encodeLen(r *R) (int, error) { return p.arr.EncodeLen(p.ref(r)) }

func (p *arrayPlan[R, T]) encode(r *R, buf []byte) (int, error) { return p.arr.Encode(p.ref(r), buf) }

// decode fills the array in place once every element decoded.
func (p *arrayPlan[R, T]) decode(r *R, buf []byte) (int, error) {
	v, n, err := p.dec(buf)
	if err != nil {
		return 0, err
	}
	copy(p.ref(r), v)
	return n, nil
}
