// Package pool implements a registry of reusable, fixed size byte buffers.
//
// Buffers are keyed by their exact length. A buffer handed out by Acquire()
// is removed from the registry and will not be handed out again until it was
// given back with Release(). Releasing a buffer that is still in use by
// someone else is a bug of the caller: the buffer will be aliased by the next
// Acquire() of the same size. The pool does not try to detect this.
//
// Buffers are never zeroed or resized on release. Callers must not assume
// that acquired memory is zeroed.
//
// There are two kinds of buffers: plain byte slices and page aligned
// DirectBuffers (suitable for O_DIRECT style I/O or handing to native code).
// Both are tracked in independent registries since they are not
// interchangeable.
package pool

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Pool is a lock guarded registry of released buffers.
// The zero value is not usable; use New().
type Pool struct {
	mu      sync.Mutex
	maxIdle int
	raw     map[int][][]byte
	direct  map[int][]*DirectBuffer
}

// New returns an empty pool. `maxIdle` limits how many released buffers
// of one size are kept around; 0 means no limit.
func New(maxIdle int) *Pool {
	return &Pool{
		maxIdle: maxIdle,
		raw:     make(map[int][][]byte),
		direct:  make(map[int][]*DirectBuffer),
	}
}

// Acquire returns a previously released buffer of exactly `size` bytes
// or allocates a new one if there is none.
func (p *Pool) Acquire(size int) []byte {
	if size <= 0 {
		return []byte{}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	bufs := p.raw[size]
	if len(bufs) == 0 {
		return make([]byte, size)
	}

	last := len(bufs) - 1
	buf := bufs[last]
	bufs[last] = nil
	p.raw[size] = bufs[:last]
	return buf
}

// Release gives `buf` back to the pool. It must not be used afterwards.
// Resliced buffers are stored with their full capacity.
func (p *Pool) Release(buf []byte) {
	if cap(buf) == 0 {
		return
	}

	buf = buf[:cap(buf)]

	p.mu.Lock()
	defer p.mu.Unlock()

	bufs := p.raw[len(buf)]
	if p.maxIdle > 0 && len(bufs) >= p.maxIdle {
		log.Debugf("pool: dropping buffer of size %d; %d idle already", len(buf), len(bufs))
		return
	}

	p.raw[len(buf)] = append(bufs, buf)
}

// AcquireDirect is like Acquire(), but for page aligned buffers.
func (p *Pool) AcquireDirect(size int) *DirectBuffer {
	if size <= 0 {
		return newDirectBuffer(0)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	bufs := p.direct[size]
	if len(bufs) == 0 {
		return newDirectBuffer(size)
	}

	last := len(bufs) - 1
	buf := bufs[last]
	bufs[last] = nil
	p.direct[size] = bufs[:last]
	return buf
}

// ReleaseDirect is like Release(), but for page aligned buffers.
func (p *Pool) ReleaseDirect(buf *DirectBuffer) {
	if buf == nil || buf.Len() == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	bufs := p.direct[buf.Len()]
	if p.maxIdle > 0 && len(bufs) >= p.maxIdle {
		return
	}

	p.direct[buf.Len()] = append(bufs, buf)
}

// Idle returns the number of plain buffers currently sitting in the pool.
func (p *Pool) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, bufs := range p.raw {
		n += len(bufs)
	}

	return n
}

// IdleDirect returns the number of direct buffers currently in the pool.
func (p *Pool) IdleDirect() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, bufs := range p.direct {
		n += len(bufs)
	}

	return n
}

// Purge forgets all idle buffers and leaves them to the garbage collector.
func (p *Pool) Purge() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.raw = make(map[int][][]byte)
	p.direct = make(map[int][]*DirectBuffer)
}
