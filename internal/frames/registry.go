package frames

import (
	"fmt"
	"sort"

	"github.com/goccy/go-yaml"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/oy3o/encdec"
)

// Entry converts between the YAML form of a record and its wire form.
type Entry struct {
	Name   string
	Fields []encdec.FieldInfo

	encode func(doc []byte) ([]byte, error)
	decode func(data []byte) ([]byte, error)
}

// Encode parses doc as a YAML record and returns its encoding.
func (e *Entry) Encode(doc []byte) ([]byte, error) { return e.encode(doc) }

// Decode decodes one record from data, which may not carry trailing bytes
// other than zero padding, and renders it as YAML.
func (e *Entry) Decode(data []byte) ([]byte, error) { return e.decode(data) }

// Registry maps record names to their codecs. It is safe for concurrent use.
type Registry struct {
	entries *xsync.Map[string, *Entry]
}

func NewRegistry() *Registry {
	return &Registry{entries: xsync.NewMap[string, *Entry]()}
}

// Register adds the codec of R under name. Registering a name twice fails.
func Register[R any](reg *Registry, name string, codec encdec.Codec[R], fields []encdec.FieldInfo) error {
	e := &Entry{
		Name:   name,
		Fields: fields,
		encode: func(doc []byte) ([]byte, error) {
			var v R
			if err := yaml.UnmarshalWithOptions(doc, &v, yaml.Strict()); err != nil {
				return nil, fmt.Errorf("frames: parse %s: %w", name, err)
			}
			return encdec.Marshal[R](codec, v)
		},
		decode: func(data []byte) ([]byte, error) {
			v, err := encdec.DecodeExact[R](codec, data)
			if err != nil {
				return nil, err
			}
			return yaml.Marshal(v)
		},
	}
	if _, loaded := reg.entries.LoadOrStore(name, e); loaded {
		return fmt.Errorf("frames: record %q already registered", name)
	}
	return nil
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (*Entry, bool) {
	return r.entries.Load(name)
}

// Names returns the registered record names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.entries.Size())
	r.entries.Range(func(name string, _ *Entry) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}

// Default holds every record of the protocol.
var Default = NewRegistry()

func init() {
	mustRegister(Register[Header](Default, "header", HeaderCodec, HeaderCodec.Fields()))
	mustRegister(Register[Reading](Default, "reading", ReadingCodec, ReadingCodec.Fields()))
	mustRegister(Register[Telemetry](Default, "telemetry", OwnedTelemetryCodec, OwnedTelemetryCodec.Fields()))
	mustRegister(Register[Envelope[Reading]](Default, "reading_envelope", ReadingEnvelope, ReadingEnvelope.Fields()))
	mustRegister(Register[Envelope[Telemetry]](Default, "telemetry_envelope", TelemetryEnvelope, TelemetryEnvelope.Fields()))
}

func mustRegister(err error) {
	if err != nil {
		panic(err)
	}
}
