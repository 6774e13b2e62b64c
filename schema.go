package encdec

import (
	"errors"
	"fmt"
)

// Definition is an uncompiled record schema: the ordered fields of R. Build
// resolves every field directive once and returns a codec for R.
type Definition[R any] struct {
	name   string
	fields []FieldDef[R]
}

// NewSchema declares the wire layout of record type R. Fields are encoded
// and decoded in the order given.
//
//	var HeaderCodec = encdec.NewSchema[Header]("Header",
//		encdec.Field("seq", func(h *Header) *uint16 { return &h.Seq }, encdec.Uint16),
//		encdec.Field("flags", func(h *Header) *uint8 { return &h.Flags }, encdec.Uint8),
//	).MustBuild()
func NewSchema[R any](name string, fields ...FieldDef[R]) *Definition[R] {
	return &Definition[R]{name: name, fields: fields}
}

// Option configures a schema at build time.
type Option func(*options)

type options struct {
	convert func(error) error
}

// WithError installs conv as the error type of the record. Every error the
// compiled record returns, including those of nested codecs and generic
// parameters, is first wrapped in *Error and then passed through conv, so
// callers receive E uniformly. conv must not return nil.
func WithError[E error](conv func(error) E) Option {
	return func(o *options) {
		o.convert = func(err error) error { return conv(err) }
	}
}

// Build compiles the definition into a codec whose decodes borrow from the
// input buffer.
func (d *Definition[R]) Build(opts ...Option) (*Schema[R], error) {
	return d.build(false, opts)
}

// BuildOwned compiles the definition into a codec whose decodes never share
// memory with the input buffer. Every field codec and module must support
// owned decodes; decode functions set with Dec are trusted to return owned
// values.
func (d *Definition[R]) BuildOwned(opts ...Option) (*OwnedSchema[R], error) {
	s, err := d.build(true, opts)
	if err != nil {
		return nil, err
	}
	return &OwnedSchema[R]{Schema: s}, nil
}

// MustBuild is like Build but panics on a definition error. It is intended
// for package-level codec variables.
func (d *Definition[R]) MustBuild(opts ...Option) *Schema[R] {
	s, err := d.Build(opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// MustBuildOwned is like BuildOwned but panics on a definition error.
func (d *Definition[R]) MustBuildOwned(opts ...Option) *OwnedSchema[R] {
	s, err := d.BuildOwned(opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func (d *Definition[R]) build(owned bool, opts []Option) (*Schema[R], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	rs := &resolver[R]{
		record: d.name,
		owned:  owned,
		defs:   d.fields,
		index:  make(map[string]int, len(d.fields)),
	}
	for i, f := range d.fields {
		if f == nil {
			return nil, fmt.Errorf("%w: %s: field %d is nil", ErrDirective, d.name, i)
		}
		name := f.FieldName()
		if name == "" {
			return nil, fmt.Errorf("%w: %s: field %d has no name", ErrDirective, d.name, i)
		}
		if _, dup := rs.index[name]; dup {
			return nil, directiveError(d.name, name, "duplicate field name")
		}
		rs.index[name] = i
	}

	s := &Schema[R]{
		name:    d.name,
		convert: o.convert,
		fields:  make([]compiledField[R], len(d.fields)),
	}
	plans := make([]plan[R], len(d.fields))
	for i, f := range d.fields {
		rs.pos = i
		p, strategy, err := f.resolve(rs)
		if err != nil {
			return nil, err
		}
		plans[i] = p
		s.fields[i] = compiledField[R]{name: f.FieldName(), strategy: strategy, plan: p}
		logger().Debug("field resolved",
			"record", d.name,
			"field", f.FieldName(),
			"strategy", strategy.String(),
		)
	}
	for _, link := range rs.links {
		link(plans)
	}

	logger().Debug("schema compiled", "record", d.name, "fields", len(plans), "owned", owned)
	return s, nil
}

type compiledField[R any] struct {
	name     string
	strategy Strategy
	plan     plan[R]
}

// FieldInfo describes a compiled field.
type FieldInfo struct {
	Name     string
	Strategy Strategy
}

// Schema is a compiled record codec. It is immutable and safe for concurrent
// use, and is itself a Codec[R], so records nest inside other records and
// sequences. Decoded values may borrow from the input buffer.
type Schema[R any] struct {
	name    string
	convert func(error) error
	fields  []compiledField[R]
}

// Name returns the record name given to NewSchema.
func (s *Schema[R]) Name() string { return s.name }

// Fields lists the compiled fields in wire order.
func (s *Schema[R]) Fields() []FieldInfo {
	out := make([]FieldInfo, len(s.fields))
	for i, f := range s.fields {
		out[i] = FieldInfo{Name: f.name, Strategy: f.strategy}
	}
	return out
}

// EncodeLen returns the encoded size of v, field by field, using the same
// plans as Encode.
func (s *Schema[R]) EncodeLen(v R) (int, error) {
	total := 0
	for i := range s.fields {
		n, err := s.fields[i].plan.encodeLen(&v)
		if err != nil {
			return 0, s.fail(i, total, err)
		}
		total += n
	}
	return total, nil
}

// Encode writes the fields of v in order. It stops at the first failing field
// and returns the bytes written before it; those bytes are left in buf.
func (s *Schema[R]) Encode(v R, buf []byte) (int, error) {
	off := 0
	for i := range s.fields {
		n, err := s.fields[i].plan.encode(&v, buf[off:])
		if err == nil && (n < 0 || n > len(buf)-off) {
			err = ErrLength
		}
		if err != nil {
			return off, s.fail(i, off, err)
		}
		off += n
	}
	return off, nil
}

// Decode reads the fields in order into a zero R. No partially decoded record
// is returned on error.
func (s *Schema[R]) Decode(buf []byte) (R, int, error) {
	var v R
	off, err := s.decodeInto(&v, buf)
	if err != nil {
		var zero R
		return zero, 0, err
	}
	return v, off, nil
}

// DecodeLen decodes a record that occupies exactly the first n bytes of buf.
func (s *Schema[R]) DecodeLen(buf []byte, n int) (R, error) {
	var zero R
	if n < 0 || len(buf) < n {
		return zero, s.convertErr(ErrLength)
	}
	v, k, err := s.Decode(buf[:n])
	if err != nil {
		return zero, err
	}
	if k != n {
		return zero, s.convertErr(fmt.Errorf("%w: %s used %d of %d bytes", ErrLength, s.name, k, n))
	}
	return v, nil
}

func (s *Schema[R]) decodeInto(v *R, buf []byte) (int, error) {
	off := 0
	for i := range s.fields {
		n, err := s.fields[i].plan.decode(v, buf[off:])
		if err == nil && (n < 0 || n > len(buf)-off) {
			err = ErrLength
		}
		if err != nil {
			return 0, s.fail(i, off, err)
		}
		off += n
	}
	return off, nil
}

// fail attaches field context to err and applies the record error override.
func (s *Schema[R]) fail(i, off int, err error) error {
	return s.convertErr(&Error{Record: s.name, Field: s.fields[i].name, Offset: off, Err: err})
}

func (s *Schema[R]) convertErr(err error) error {
	if s.convert == nil {
		return err
	}
	return s.convert(err)
}

// OwnedSchema is a compiled record codec whose decoded values are
// independent of the input buffer.
type OwnedSchema[R any] struct {
	*Schema[R]
}

// DecodeOwned is Decode; an owned schema never borrows.
func (s *OwnedSchema[R]) DecodeOwned(buf []byte) (R, int, error) {
	return s.Decode(buf)
}

// DecodeLenOwned is DecodeLen; an owned schema never borrows.
func (s *OwnedSchema[R]) DecodeLenOwned(buf []byte, n int) (R, error) {
	return s.DecodeLen(buf, n)
}

// AsError returns the first *Error in err's chain, the outermost failing
// field.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
