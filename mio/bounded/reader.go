package bounded

import (
	"io"
	"sync"
)

// Reader is a bounded io.Reader.
type Reader struct {
	mu          sync.Mutex
	r           io.Reader
	lim         limit
	failOnLimit bool
}

// NewReader returns a reader that reads at most `allowed` bytes from `r`.
// Pass Unbounded to disable the limit. If `failOnLimit` is true, reads
// after the limit return an *OutOfBoundError instead of io.EOF.
func NewReader(r io.Reader, allowed int64, failOnLimit bool) *Reader {
	if allowed < 0 {
		allowed = Unbounded
	}

	return &Reader{
		r:           r,
		lim:         limit{allowed: allowed},
		failOnLimit: failOnLimit,
	}
}

func (br *Reader) Read(buf []byte) (int, error) {
	br.mu.Lock()
	defer br.mu.Unlock()

	if len(buf) == 0 {
		return 0, nil
	}

	take := br.lim.canProcess(len(buf))
	if take == 0 {
		if br.failOnLimit {
			return 0, &OutOfBoundError{Allowed: br.lim.allowed}
		}

		return 0, io.EOF
	}

	n, err := br.r.Read(buf[:take])
	if n > 0 {
		br.lim.processed += int64(n)
	}

	return n, err
}

// Close closes the underlying reader if it is an io.Closer.
func (br *Reader) Close() error {
	br.mu.Lock()
	defer br.mu.Unlock()

	if closer, ok := br.r.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

// Allowed returns the configured limit (or Unbounded).
func (br *Reader) Allowed() int64 {
	return br.lim.allowed
}

// Processed returns how many bytes were read so far.
func (br *Reader) Processed() int64 {
	br.mu.Lock()
	defer br.mu.Unlock()

	return br.lim.processed
}

// Remaining returns how many bytes may still be read.
// For unbounded readers this is math.MaxInt64.
func (br *Reader) Remaining() int64 {
	br.mu.Lock()
	defer br.mu.Unlock()

	return br.lim.remaining()
}
