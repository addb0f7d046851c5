package fastparser

import (
	"sync"
)

// fieldPool holds scratch []string slices for collecting one record's fields.
var fieldPool = sync.Pool{
	New: func() interface{} {
		s := make([]string, 0, 16)
		return &s
	},
}

// bufferPool holds scratch []byte buffers for quoted field content.
var bufferPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, 64)
		return &b
	},
}

// getFieldSlice gets a []string slice from the pool with length 0.
func getFieldSlice() []string {
	p := fieldPool.Get().(*[]string)
	return (*p)[:0]
}

// putFieldSlice returns a []string slice to the pool. Very wide records are
// not kept.
func putFieldSlice(fields []string) {
	const maxCapacity = 1024
	if cap(fields) > maxCapacity {
		return
	}
	clear(fields)
	fields = fields[:0]
	fieldPool.Put(&fields)
}

// getBuffer gets a []byte buffer from the pool with length 0.
func getBuffer() []byte {
	p := bufferPool.Get().(*[]byte)
	return (*p)[:0]
}

// putBuffer returns a []byte buffer to the pool. Buffers grown past 64KiB
// by a huge field are dropped.
func putBuffer(buf []byte) {
	const maxCapacity = 64 << 10
	if cap(buf) > maxCapacity {
		return
	}
	buf = buf[:0]
	bufferPool.Put(&buf)
}
