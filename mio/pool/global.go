package pool

import "sync"

var (
	stdMu sync.Mutex
	std   *Pool
)

// Init (re-)creates the process wide pool returned by Default().
// It is safe to call it several times; idle buffers of a previous
// instance are dropped.
func Init(maxIdle int) {
	stdMu.Lock()
	defer stdMu.Unlock()

	if std != nil {
		std.Purge()
	}

	std = New(maxIdle)
}

// Teardown drops the process wide pool. The next call to Default()
// will lazily create a fresh, unlimited one.
func Teardown() {
	stdMu.Lock()
	defer stdMu.Unlock()

	if std != nil {
		std.Purge()
	}

	std = nil
}

// Default returns the process wide pool.
// If Init() was never called, an unlimited pool is created.
func Default() *Pool {
	stdMu.Lock()
	defer stdMu.Unlock()

	if std == nil {
		std = New(0)
	}

	return std
}

// Acquire is a shortcut for Default().Acquire(size)
func Acquire(size int) []byte {
	return Default().Acquire(size)
}

// Release is a shortcut for Default().Release(buf)
func Release(buf []byte) {
	Default().Release(buf)
}
