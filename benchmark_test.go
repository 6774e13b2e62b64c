package encdec

import (
	"encoding/binary"
	"testing"
)

type BenchmarkPayload struct {
	ID      uint32
	Val1    uint64
	Val2    uint64
	Val3    uint64
	Name    string
	NameLen uint8
}

var benchmarkCodec = NewSchema[BenchmarkPayload]("BenchmarkPayload",
	Field("id", func(p *BenchmarkPayload) *uint32 { return &p.ID }, Uint32),
	Field("val1", func(p *BenchmarkPayload) *uint64 { return &p.Val1 }, Uint64),
	Field("val2", func(p *BenchmarkPayload) *uint64 { return &p.Val2 }, Uint64),
	Field("val3", func(p *BenchmarkPayload) *uint64 { return &p.Val3 }, Uint64),
	Field("name_len", func(p *BenchmarkPayload) *uint8 { return &p.NameLen }, Uint8).LengthOf("name"),
	Field("name", func(p *BenchmarkPayload) *string { return &p.Name }, Str).Length("name_len"),
).MustBuild()

var benchmarkValue = BenchmarkPayload{ID: 1, Val1: 100, Name: "bench"}

func BenchmarkSchemaEncode(b *testing.B) {
	buf := make([]byte, 64)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = benchmarkCodec.Encode(benchmarkValue, buf)
	}
}

func BenchmarkSchemaDecode(b *testing.B) {
	data, _ := Marshal[BenchmarkPayload](benchmarkCodec, benchmarkValue)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = benchmarkCodec.Decode(data)
	}
}

func BenchmarkMarshal(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = Marshal[BenchmarkPayload](benchmarkCodec, benchmarkValue)
	}
}

// Baseline comparison using only binary.LittleEndian directly, to see overhead of the schema
func BenchmarkStandardBinaryPut(b *testing.B) {
	buf := make([]byte, 64)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		binary.LittleEndian.PutUint32(buf, benchmarkValue.ID)
		binary.LittleEndian.PutUint64(buf[4:], benchmarkValue.Val1)
		binary.LittleEndian.PutUint64(buf[12:], benchmarkValue.Val2)
		binary.LittleEndian.PutUint64(buf[20:], benchmarkValue.Val3)
		buf[28] = uint8(len(benchmarkValue.Name))
		copy(buf[29:], benchmarkValue.Name)
	}
}
