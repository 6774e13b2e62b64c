package encdec

import (
	"bufio"
	"fmt"
	"io"
	"iter"
)

// DEFAULT_MAX_FRAME bounds the body length a FrameReader accepts unless
// changed with WithMaxFrame.
const DEFAULT_MAX_FRAME = 1 << 20

// FrameReader decodes a stream of length-prefixed values: the wire form of
// Prefixed(prefix, codec) repeated until EOF.
// It tracks the first error. Subsequent reads return it again.
type FrameReader[P FixedInt, T any] struct {
	r      *bufio.Reader
	prefix Int[P]
	dec    Decoder[T]
	max    int
	count  int64 // total bytes read
	err    error // first error encountered.
}

// NewFrameReaderSize creates a FrameReader with a specified buffer size.
// An existing *bufio.Reader of at least size bytes is used as is.
func NewFrameReaderSize[P FixedInt, T any](r io.Reader, size int, prefix Int[P], dec Decoder[T]) (*FrameReader[P, T], error) {
	if r == nil || dec == nil {
		return nil, ErrNilIO
	}
	br, ok := r.(*bufio.Reader)
	if !ok || br.Size() < size {
		if size < 16 {
			return nil, ErrSizeTooSmall
		}
		br = bufio.NewReaderSize(r, size)
	}
	return &FrameReader[P, T]{r: br, prefix: prefix, dec: dec, max: DEFAULT_MAX_FRAME}, nil
}

// NewFrameReader creates a FrameReader with the default buffer size.
func NewFrameReader[P FixedInt, T any](r io.Reader, prefix Int[P], dec Decoder[T]) (*FrameReader[P, T], error) {
	return NewFrameReaderSize(r, DEFAULT_BUFFER_SIZE, prefix, dec)
}

// WithMaxFrame sets the largest body length accepted and returns the reader
// for chaining.
func (r *FrameReader[P, T]) WithMaxFrame(n int) *FrameReader[P, T] {
	r.max = n
	return r
}

func (r *FrameReader[P, T]) Count() int64 { return r.count }
func (r *FrameReader[P, T]) Err() error   { return r.err }

// setError records the first non-nil error.
func (r *FrameReader[P, T]) setError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// Next reads and decodes one frame. It returns io.EOF when the stream ends
// cleanly between frames and io.ErrUnexpectedEOF when it ends inside one.
// Every frame body is read into its own buffer, so borrowed values stay
// valid after later calls.
func (r *FrameReader[P, T]) Next() (T, error) {
	var zero T
	if r.err != nil {
		return zero, r.err
	}

	hdr := r.readFull(r.prefix.Width(), true)
	if r.err != nil {
		return zero, r.err
	}
	p, _, err := r.prefix.Decode(hdr)
	if err != nil {
		r.setError(err)
		return zero, r.err
	}
	n, err := r.prefix.ToLen(p)
	if err == nil && n > r.max {
		err = fmt.Errorf("%w: frame of %d bytes exceeds limit of %d", ErrLength, n, r.max)
	}
	if err != nil {
		r.setError(err)
		return zero, r.err
	}

	body := r.readFull(n, false)
	if r.err != nil {
		return zero, r.err
	}
	v, err := decodeWindow(r.dec, body)
	if err != nil {
		r.setError(err)
		return zero, r.err
	}
	return v, nil
}

// All returns an iterator over the remaining frames. A read or decode error
// is yielded once, after which iteration stops.
func (r *FrameReader[P, T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, err := r.Next()
			if err == io.EOF {
				return
			}
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

// readFull is an internal helper to read an exact number of bytes. A clean
// EOF is only reported as such at a frame boundary.
func (r *FrameReader[P, T]) readFull(n int, boundary bool) []byte {
	buf := make([]byte, n)
	if n == 0 {
		return buf
	}
	k, err := io.ReadFull(r.r, buf)
	r.count += int64(k)
	if err != nil {
		if err == io.EOF && !boundary {
			// a partial frame is different from a clean end-of-stream.
			err = io.ErrUnexpectedEOF
		}
		r.setError(err)
		return nil
	}
	return buf
}
