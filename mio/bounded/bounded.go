// Package bounded implements readers and writers that refuse to move more
// than a fixed number of bytes through them.
//
// Asking for more bytes than remain is not an error by itself: the request
// is served partially, up to the remaining allowance. Only when nothing is
// left at all, the limit is signaled; by io.EOF or by an *OutOfBoundError,
// depending on the policy chosen at construction.
//
// The streams offer no Seek() (and therefore no mark/reset). Supporting it
// would require buffering decisions these types deliberately do not make.
package bounded

import (
	"fmt"
	"math"

	e "github.com/pkg/errors"
)

// Unbounded can be passed as allowed byte count to disable the limit.
const Unbounded = -1

// OutOfBoundError is returned when a bounded stream is asked
// to move data after its limit was reached.
type OutOfBoundError struct {
	Allowed int64
}

func (oob *OutOfBoundError) Error() string {
	return fmt.Sprintf("stream limit of %d bytes reached", oob.Allowed)
}

// IsOutOfBound checks if `err` (or its cause) is an *OutOfBoundError.
func IsOutOfBound(err error) bool {
	_, ok := e.Cause(err).(*OutOfBoundError)
	return ok
}

// limit is the byte accounting shared by Reader and Writer.
// Callers must hold the lock of the owning stream.
type limit struct {
	allowed   int64
	processed int64
}

func (l *limit) remaining() int64 {
	if l.allowed < 0 {
		return math.MaxInt64
	}

	return l.allowed - l.processed
}

func (l *limit) canProcess(n int) int {
	rem := l.remaining()
	if int64(n) > rem {
		return int(rem)
	}

	return n
}
