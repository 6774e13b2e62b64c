package encdec

import (
	"bytes"
	"sync"
)

// bytesBufPool reuses buffers for draining readers in DecodeFrom.
var bytesBufPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}

// DEFAULT_BUFFER_SIZE is the bufio size of frame readers and writers, and the
// initial capacity of pooled encode buffers.
const DEFAULT_BUFFER_SIZE = 4096

// encodeBufPool holds scratch buffers values are encoded into before being
// written to a stream.
var encodeBufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, DEFAULT_BUFFER_SIZE)
		return &b
	},
}

// getEncodeBuf returns a pooled buffer of length n.
func getEncodeBuf(n int) *[]byte {
	bp := encodeBufPool.Get().(*[]byte)
	if cap(*bp) < n {
		*bp = make([]byte, n)
	}
	*bp = (*bp)[:n]
	return bp
}

// putEncodeBuf returns bp to the pool. Oversized buffers are dropped so one
// large value does not pin memory.
func putEncodeBuf(bp *[]byte) {
	if cap(*bp) > 64*1024 {
		return
	}
	encodeBufPool.Put(bp)
}
