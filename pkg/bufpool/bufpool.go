// Package bufpool provides reusable copy buffers for streaming file
// payloads between a connection and the filesystem.
//
// Every get and put moves its payload through one buffer. Sessions borrow a
// buffer for the duration of a single transfer and return it afterwards, so
// the number of live buffers tracks the number of in-flight transfers rather
// than the number of connections.
//
//	buf := pool.Get()
//	defer pool.Put(buf)
package bufpool

import "sync"

// DefaultSize is the copy buffer size used when none is configured.
const DefaultSize = 32 << 10

// Pool hands out byte slices of one fixed size.
type Pool struct {
	size int
	p    sync.Pool
}

// New creates a pool of size-byte buffers. A non-positive size selects
// DefaultSize.
func New(size int) *Pool {
	if size <= 0 {
		size = DefaultSize
	}
	pool := &Pool{size: size}
	pool.p.New = func() any {
		b := make([]byte, size)
		return &b
	}
	return pool
}

// Size returns the length of the buffers handed out by Get.
func (p *Pool) Size() int {
	return p.size
}

// Get returns a buffer of exactly Size bytes.
func (p *Pool) Get() []byte {
	return *(p.p.Get().(*[]byte))
}

// Put returns buf to the pool. Slices that did not come from this pool are
// dropped.
func (p *Pool) Put(buf []byte) {
	if cap(buf) != p.size {
		return
	}
	buf = buf[:p.size]
	p.p.Put(&buf)
}

var defaultPool = New(DefaultSize)

// Get borrows a DefaultSize buffer from the shared pool.
func Get() []byte {
	return defaultPool.Get()
}

// Put returns a buffer to the shared pool.
func Put(buf []byte) {
	defaultPool.Put(buf)
}
