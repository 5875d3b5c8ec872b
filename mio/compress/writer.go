package compress

import (
	"encoding/binary"
	"io"

	"github.com/sahib/safeio/mio/pool"
)

// Writer compresses everything written to it in blocks.
// Close() must be called to write the last block and the terminator.
// The underlying writer is not closed.
type Writer struct {
	w        io.Writer
	algo     Algorithm
	algoType AlgorithmType
	pool     *pool.Pool

	// Pending uncompressed data; len(buf) == BlockSize.
	buf []byte
	n   int

	hdr           [2 * binary.MaxVarintLen64]byte
	headerWritten bool
	closed        bool
}

// NewWriter returns a Writer compressing with `algoType` to `w`.
func NewWriter(w io.Writer, algoType AlgorithmType) (*Writer, error) {
	return NewWriterWithPool(w, algoType, nil)
}

// NewWriterWithPool is like NewWriter, but takes block buffers from `p`.
// A nil pool means the process wide one.
func NewWriterWithPool(w io.Writer, algoType AlgorithmType, p *pool.Pool) (*Writer, error) {
	algo, err := AlgorithmFromType(algoType)
	if err != nil {
		return nil, err
	}

	if p == nil {
		p = pool.Default()
	}

	return &Writer{
		w:        w,
		algo:     algo,
		algoType: algoType,
		pool:     p,
		buf:      p.Acquire(BlockSize),
	}, nil
}

func (w *Writer) writeHeaderIfNeeded() error {
	if w.headerWritten {
		return nil
	}

	if _, err := w.w.Write(makeHeader(w.algoType)); err != nil {
		return err
	}

	w.headerWritten = true
	return nil
}

func (w *Writer) writeBlock(data []byte) error {
	enc, err := w.algo.Encode(data)
	if err != nil {
		return err
	}

	n := putBlockHeader(w.hdr[:], len(data), len(enc))
	if _, err := w.w.Write(w.hdr[:n]); err != nil {
		return err
	}

	_, err = w.w.Write(enc)
	return err
}

func (w *Writer) flushPending() error {
	if w.n == 0 {
		return nil
	}

	if err := w.writeBlock(w.buf[:w.n]); err != nil {
		return err
	}

	w.n = 0
	return nil
}

// Write buffers `p` and writes every full block.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, io.ErrClosedPipe
	}

	if err := w.writeHeaderIfNeeded(); err != nil {
		return 0, err
	}

	written := 0
	for len(p) > 0 {
		n := copy(w.buf[w.n:], p)
		w.n += n
		p = p[n:]

		if w.n == len(w.buf) {
			if err := w.flushPending(); err != nil {
				return written, err
			}
		}

		written += n
	}

	return written, nil
}

// Flush writes the pending data as (possibly short) block.
func (w *Writer) Flush() error {
	if w.closed {
		return io.ErrClosedPipe
	}

	if err := w.writeHeaderIfNeeded(); err != nil {
		return err
	}

	return w.flushPending()
}

// release hands the block buffer back to the pool. It is safe to call twice.
func (w *Writer) release() {
	w.closed = true
	if w.buf != nil {
		w.pool.Release(w.buf)
		w.buf = nil
	}
}

// Close writes the remaining data and the terminator block.
// The block buffer goes back to the pool even if writing fails.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}

	if err := w.Flush(); err != nil {
		w.release()
		return err
	}

	w.release()

	n := binary.PutUvarint(w.hdr[:], 0)
	_, err := w.w.Write(w.hdr[:n])
	return err
}

// Abort drops pending data without writing anything and releases the
// block buffer. The stream stays incomplete.
func (w *Writer) Abort() {
	w.release()
}
