// Package frames defines the records of the device telemetry protocol and
// their wire codecs. It serves as the worked example of the encdec schema
// API and backs the encdec command.
package frames

import (
	"github.com/oy3o/encdec"
)

// Header opens every frame.
type Header struct {
	Version uint8  `yaml:"version"`
	Seq     uint16 `yaml:"seq"`
	Flags   uint8  `yaml:"flags"`
}

// HeaderCodec lays a header out as [version u8][seq u16][flags u8].
var HeaderCodec = encdec.NewSchema[Header]("Header",
	encdec.Field("version", func(h *Header) *uint8 { return &h.Version }, encdec.Uint8),
	encdec.Field("seq", func(h *Header) *uint16 { return &h.Seq }, encdec.Uint16),
	encdec.Field("flags", func(h *Header) *uint8 { return &h.Flags }, encdec.Uint8),
).MustBuildOwned()

// Blob is an opaque attachment. Len is derived from Data when encoding.
type Blob struct {
	Len  uint8  `yaml:"len"`
	Data []byte `yaml:"data"`
}

var blobDef = encdec.NewSchema[Blob]("Blob",
	encdec.Field("len", func(b *Blob) *uint8 { return &b.Len }, encdec.Uint8).LengthOf("data"),
	encdec.Field("data", func(b *Blob) *[]byte { return &b.Data }, encdec.Bytes).Length("len"),
)

var (
	// BlobCodec decodes Data as a view of the input.
	BlobCodec = blobDef.MustBuild()
	// OwnedBlobCodec decodes Data as a copy.
	OwnedBlobCodec = blobDef.MustBuildOwned()
)

// Reading is one sample of a channel.
type Reading struct {
	Channel uint8 `yaml:"channel"`
	Value   int32 `yaml:"value"`
}

var ReadingCodec = encdec.NewSchema[Reading]("Reading",
	encdec.Field("channel", func(r *Reading) *uint8 { return &r.Channel }, encdec.Uint8),
	encdec.Field("value", func(r *Reading) *int32 { return &r.Value }, encdec.Int32),
).MustBuildOwned()

// Telemetry is the periodic report of a device. Readings run to the end of
// the frame, so a Telemetry record must be framed by its container.
type Telemetry struct {
	Header   Header    `yaml:"header"`
	Serial   [4]byte   `yaml:"serial"`
	NameLen  uint8     `yaml:"name_len"`
	Name     string    `yaml:"name"`
	Taken    uint64    `yaml:"taken"`
	Drift    int16     `yaml:"drift"`
	Readings []Reading `yaml:"readings"`
}

var telemetryDef = encdec.NewSchema[Telemetry]("Telemetry",
	encdec.Field("header", func(t *Telemetry) *Header { return &t.Header }, encdec.Codec[Header](HeaderCodec)),
	encdec.ArrayField("serial", func(t *Telemetry) []byte { return t.Serial[:] }, encdec.Uint8),
	encdec.Field("name_len", func(t *Telemetry) *uint8 { return &t.NameLen }, encdec.Uint8).LengthOf("name"),
	encdec.Field("name", func(t *Telemetry) *string { return &t.Name }, encdec.Str).Length("name_len"),
	encdec.Field("taken", func(t *Telemetry) *uint64 { return &t.Taken }, encdec.Uint64).
		Enc(encodeStamp).
		EncLen(stampLen).
		Dec(decodeStamp),
	encdec.Field("drift", func(t *Telemetry) *int16 { return &t.Drift }, encdec.Int16).With(Zigzag16),
	encdec.Field("readings", func(t *Telemetry) *[]Reading { return &t.Readings },
		encdec.Codec[[]Reading](encdec.Seq(encdec.Codec[Reading](ReadingCodec)))),
)

var (
	TelemetryCodec      = telemetryDef.MustBuild()
	OwnedTelemetryCodec = telemetryDef.MustBuildOwned()
)
