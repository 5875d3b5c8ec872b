package counter

import "io"

// Reader counts every byte read from the wrapped reader.
type Reader struct {
	r       io.Reader
	counter *ByteCounter
}

// NewReader wraps `r`. If `counter` is nil, a fresh one is created.
func NewReader(r io.Reader, counter *ByteCounter) *Reader {
	if counter == nil {
		counter = New()
	}

	return &Reader{r: r, counter: counter}
}

func (cr *Reader) Read(buf []byte) (int, error) {
	n, err := cr.r.Read(buf)
	if n > 0 {
		cr.counter.Add(int64(n))
	}

	return n, err
}

// Close closes the underlying reader if it is an io.Closer.
func (cr *Reader) Close() error {
	if closer, ok := cr.r.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

// Counter returns the counter the reader reports to.
func (cr *Reader) Counter() *ByteCounter {
	return cr.counter
}

// Writer counts every byte written to the wrapped writer.
type Writer struct {
	w       io.Writer
	counter *ByteCounter
}

// NewWriter wraps `w`. If `counter` is nil, a fresh one is created.
func NewWriter(w io.Writer, counter *ByteCounter) *Writer {
	if counter == nil {
		counter = New()
	}

	return &Writer{w: w, counter: counter}
}

func (cw *Writer) Write(buf []byte) (int, error) {
	n, err := cw.w.Write(buf)
	if n > 0 {
		cw.counter.Add(int64(n))
	}

	return n, err
}

// Flush forwards to the underlying writer if it supports flushing.
func (cw *Writer) Flush() error {
	if flusher, ok := cw.w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}

	return nil
}

// Close closes the underlying writer if it is an io.Closer.
func (cw *Writer) Close() error {
	if closer, ok := cw.w.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

// Counter returns the counter the writer reports to.
func (cw *Writer) Counter() *ByteCounter {
	return cw.counter
}
