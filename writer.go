package encdec

import (
	"bufio"
	"io"
)

// FrameWriter encodes values to a stream, each preceded by its encoded length
// carried by P. The output is read back by a FrameReader with the same
// prefix. It tracks the first error that occurs; after an error, all
// subsequent writes become no-ops.
type FrameWriter[P FixedInt, T any] struct {
	w      *bufio.Writer
	prefix Int[P]
	enc    Encoder[T]
	count  int64 // total bytes written
	err    error // first error encountered.
}

// NewFrameWriterSize creates a FrameWriter with a specified buffer size.
// An existing *bufio.Writer of at least size bytes is used as is.
func NewFrameWriterSize[P FixedInt, T any](w io.Writer, size int, prefix Int[P], enc Encoder[T]) (*FrameWriter[P, T], error) {
	if w == nil || enc == nil {
		return nil, ErrNilIO
	}
	bw, ok := w.(*bufio.Writer)
	if !ok || bw.Size() < size {
		bw = bufio.NewWriterSize(w, size)
	}
	return &FrameWriter[P, T]{w: bw, prefix: prefix, enc: enc}, nil
}

// NewFrameWriter creates a FrameWriter with the default buffer size.
func NewFrameWriter[P FixedInt, T any](w io.Writer, prefix Int[P], enc Encoder[T]) (*FrameWriter[P, T], error) {
	return NewFrameWriterSize(w, DEFAULT_BUFFER_SIZE, prefix, enc)
}

func (w *FrameWriter[P, T]) Count() int64 { return w.count }
func (w *FrameWriter[P, T]) Err() error   { return w.err }

// setError records the first non-nil error.
func (w *FrameWriter[P, T]) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Write encodes v as one frame. Nothing is written for a value that cannot
// be encoded or whose length does not fit P.
func (w *FrameWriter[P, T]) Write(v T) error {
	if w.err != nil {
		return w.err
	}
	n, err := w.enc.EncodeLen(v)
	if err != nil {
		w.setError(err)
		return w.err
	}
	p, err := w.prefix.FromLen(n)
	if err != nil {
		w.setError(err)
		return w.err
	}

	bp := getEncodeBuf(w.prefix.Width() + n)
	defer putEncodeBuf(bp)
	buf := *bp

	k, err := w.prefix.Encode(p, buf)
	if err == nil {
		var m int
		m, err = w.enc.Encode(v, buf[k:])
		k += m
	}
	if err != nil {
		w.setError(err)
		return w.err
	}

	written, err := w.w.Write(buf[:k])
	if written < 0 {
		err = ErrInvalidWrite
		written = 0
	}
	w.count += int64(written)
	w.setError(err)
	return w.err
}

// Flush writes any buffered frames to the underlying writer.
func (w *FrameWriter[P, T]) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.setError(w.w.Flush())
	return w.err
}
