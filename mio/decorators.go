package mio

import (
	"io"
	"sync"

	"github.com/sahib/safeio/mio/counter"
)

// Flusher is implemented by writers that buffer data.
type Flusher interface {
	Flush() error
}

// MultiWriteCloser duplicates all writes to a list of writers.
type MultiWriteCloser struct {
	ws []io.Writer
}

// MultiWriter returns a writer that fans out every write to `ws`.
// Unlike io.MultiWriter it also forwards Flush() and Close().
func MultiWriter(ws ...io.Writer) *MultiWriteCloser {
	return &MultiWriteCloser{ws: ws}
}

func (mw *MultiWriteCloser) Write(buf []byte) (int, error) {
	for _, w := range mw.ws {
		n, err := w.Write(buf)
		if err != nil {
			return n, err
		}

		if n != len(buf) {
			return n, io.ErrShortWrite
		}
	}

	return len(buf), nil
}

// Flush flushes all children that support it.
// It stops at the first error.
func (mw *MultiWriteCloser) Flush() error {
	for _, w := range mw.ws {
		if flusher, ok := w.(Flusher); ok {
			if err := flusher.Flush(); err != nil {
				return err
			}
		}
	}

	return nil
}

// Close closes all children that are io.Closers. All of them are
// closed, even if one fails; the first error is returned.
func (mw *MultiWriteCloser) Close() error {
	var firstErr error
	for _, w := range mw.ws {
		closer, ok := w.(io.Closer)
		if !ok {
			continue
		}

		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// SilenceableWriter is a writer that can be muted.
// While muted, writes are discarded but reported as successful.
type SilenceableWriter struct {
	mu       sync.Mutex
	w        io.Writer
	silenced bool
}

// Silenceable wraps `w` into a SilenceableWriter. It starts unmuted.
func Silenceable(w io.Writer) *SilenceableWriter {
	return &SilenceableWriter{w: w}
}

// Silence mutes (true) or unmutes (false) the writer.
func (sw *SilenceableWriter) Silence(silenced bool) {
	sw.mu.Lock()
	sw.silenced = silenced
	sw.mu.Unlock()
}

// IsSilenced tells if writes are currently discarded.
func (sw *SilenceableWriter) IsSilenced() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	return sw.silenced
}

func (sw *SilenceableWriter) Write(buf []byte) (int, error) {
	sw.mu.Lock()
	silenced := sw.silenced
	sw.mu.Unlock()

	if silenced {
		return len(buf), nil
	}

	return sw.w.Write(buf)
}

// Flush is a no-op while silenced.
func (sw *SilenceableWriter) Flush() error {
	if sw.IsSilenced() {
		return nil
	}

	if flusher, ok := sw.w.(Flusher); ok {
		return flusher.Flush()
	}

	return nil
}

// Close always closes the underlying writer, muted or not.
func (sw *SilenceableWriter) Close() error {
	if closer, ok := sw.w.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

// SinkWriter swallows everything written to it and counts it.
type SinkWriter struct {
	counter *counter.ByteCounter
}

// Sink returns a SinkWriter reporting to `c`. If `c` is nil,
// a fresh counter is used.
func Sink(c *counter.ByteCounter) *SinkWriter {
	if c == nil {
		c = counter.New()
	}

	return &SinkWriter{counter: c}
}

func (sw *SinkWriter) Write(buf []byte) (int, error) {
	sw.counter.Add(int64(len(buf)))
	return len(buf), nil
}

// Close is a no-op only existing to fulfill io.Closer
func (sw *SinkWriter) Close() error {
	return nil
}

// Counter returns the counter of the sink.
func (sw *SinkWriter) Counter() *counter.ByteCounter {
	return sw.counter
}
