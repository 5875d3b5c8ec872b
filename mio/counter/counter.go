// Package counter implements byte counting stream decorators
// and the shareable ByteCounter they report to.
package counter

import (
	"sync"
	"unsafe"
)

// ByteCounter is a lock guarded, nonnegative byte count.
//
// A counter is not owned by any single stream. It may be shared by several
// readers and writers (and a progress display polling it from another
// goroutine); it lives as long as its longest holder.
//
// A counter may have a delegate: Value() then returns the local count plus
// the delegate's value, while Reset() only clears the local part.
// Delegate chains must not form cycles.
type ByteCounter struct {
	mu       sync.Mutex
	count    int64
	delegate *ByteCounter
}

// New returns a fresh counter starting at zero.
func New() *ByteCounter {
	return &ByteCounter{}
}

// NewWithDelegate returns a counter whose Value() includes `delegate`.
func NewWithDelegate(delegate *ByteCounter) *ByteCounter {
	return &ByteCounter{delegate: delegate}
}

// Add increments the local count by `n`. Negative values are ignored.
func (bc *ByteCounter) Add(n int64) {
	if n <= 0 {
		return
	}

	bc.mu.Lock()
	bc.count += n
	bc.mu.Unlock()
}

// value expects bc.mu to be held.
func (bc *ByteCounter) value() int64 {
	if bc.delegate == nil {
		return bc.count
	}

	return bc.count + bc.delegate.Value()
}

// Value returns the local count plus the value of the delegate, if any.
func (bc *ByteCounter) Value() int64 {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	return bc.value()
}

// Reset sets the local count back to zero.
// The delegate (if any) is not touched.
func (bc *ByteCounter) Reset() {
	bc.mu.Lock()
	bc.count = 0
	bc.mu.Unlock()
}

// AddCounter adds the current value of `other` to the local count.
// If `resetAfter` is true, the local part of `other` is reset.
// Both counters stay locked while doing so; an observer will never
// see the bytes counted twice or not at all.
func (bc *ByteCounter) AddCounter(other *ByteCounter, resetAfter bool) {
	if other == nil {
		return
	}

	if other == bc {
		bc.mu.Lock()
		v := bc.value()
		if resetAfter {
			bc.count = 0
		}
		bc.count += v
		bc.mu.Unlock()
		return
	}

	// Always lock in address order, so two goroutines adding
	// a and b to each other cannot deadlock.
	first, second := bc, other
	if uintptr(unsafe.Pointer(first)) > uintptr(unsafe.Pointer(second)) {
		first, second = second, first
	}

	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	bc.count += other.value()
	if resetAfter {
		other.count = 0
	}
}
