package bounded

import (
	"io"
	"sync"
)

// Writer is a bounded io.Writer.
type Writer struct {
	mu  sync.Mutex
	w   io.Writer
	lim limit
}

// NewWriter returns a writer that passes at most `allowed` bytes to `w`.
// Pass Unbounded to disable the limit.
func NewWriter(w io.Writer, allowed int64) *Writer {
	if allowed < 0 {
		allowed = Unbounded
	}

	return &Writer{
		w:   w,
		lim: limit{allowed: allowed},
	}
}

// Write passes as much of `buf` as the limit allows.
// If nothing may be written anymore, an *OutOfBoundError is returned.
// If only a part of `buf` fits, that part is written and io.ErrShortWrite
// is returned as the io.Writer contract demands an error for short writes.
func (bw *Writer) Write(buf []byte) (int, error) {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	if len(buf) == 0 {
		return 0, nil
	}

	take := bw.lim.canProcess(len(buf))
	if take == 0 {
		return 0, &OutOfBoundError{Allowed: bw.lim.allowed}
	}

	n, err := bw.w.Write(buf[:take])
	if n > 0 {
		bw.lim.processed += int64(n)
	}

	if err != nil {
		return n, err
	}

	if n < len(buf) {
		return n, io.ErrShortWrite
	}

	return n, nil
}

// Flush forwards to the underlying writer if it supports flushing.
func (bw *Writer) Flush() error {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	if flusher, ok := bw.w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}

	return nil
}

// Close closes the underlying writer if it is an io.Closer.
func (bw *Writer) Close() error {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	if closer, ok := bw.w.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

// Allowed returns the configured limit (or Unbounded).
func (bw *Writer) Allowed() int64 {
	return bw.lim.allowed
}

// Processed returns how many bytes were written so far.
func (bw *Writer) Processed() int64 {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	return bw.lim.processed
}

// Remaining returns how many bytes may still be written.
// For unbounded writers this is math.MaxInt64.
func (bw *Writer) Remaining() int64 {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	return bw.lim.remaining()
}
