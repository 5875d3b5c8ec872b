package mio

import (
	"io"

	"github.com/sahib/safeio/mio/pool"
)

const (
	// DefaultBufferSize is the buffer size used for bulk transfers.
	DefaultBufferSize = 64 * 1024

	// MinBufferSize is the smallest buffer Copy and Fill will work with.
	MinBufferSize = 512
)

// Copier moves bytes between streams using buffers from a pool.
type Copier struct {
	pool *pool.Pool
}

// NewCopier returns a Copier taking its buffers from `p`.
// If `p` is nil, the process wide pool is used.
func NewCopier(p *pool.Pool) *Copier {
	return &Copier{pool: p}
}

func (c *Copier) acquire(size int) ([]byte, func([]byte)) {
	p := c.pool
	if p == nil {
		p = pool.Default()
	}

	if size < MinBufferSize {
		size = MinBufferSize
	}

	return p.Acquire(size), p.Release
}

// Copy copies everything from `src` to `dst` using a pooled buffer of
// `bufSize` bytes. Read errors are returned as TransferError of kind
// ReadingSource, write errors as WritingDestination. The number of bytes
// written to `dst` is always returned.
func (c *Copier) Copy(dst io.Writer, src io.Reader, bufSize int) (int64, error) {
	buf, release := c.acquire(bufSize)
	defer release(buf)

	written := int64(0)
	for {
		nr, rerr := src.Read(buf)
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			if nw > 0 {
				written += int64(nw)
			}

			if werr != nil {
				return written, transferError(WritingDestination, werr)
			}

			if nw != nr {
				return written, transferError(WritingDestination, io.ErrShortWrite)
			}
		}

		if rerr == io.EOF {
			return written, nil
		}

		if rerr != nil {
			return written, transferError(ReadingSource, rerr)
		}

		if nr == 0 {
			// A reader returning (0, nil) over and over would make us
			// spin forever. Treat it as end of data.
			return written, nil
		}
	}
}

// Fill writes `length` times the byte `value` to `dst`, without needing
// `length` bytes of memory. Errors are returned as TransferError of kind
// WritingDestination.
func (c *Copier) Fill(dst io.Writer, value byte, length int64, bufSize int) (int64, error) {
	buf, release := c.acquire(bufSize)
	defer release(buf)

	// Pooled buffers are not zeroed; always initialize fully.
	for idx := range buf {
		buf[idx] = value
	}

	written := int64(0)
	for written < length {
		chunk := buf
		if left := length - written; left < int64(len(chunk)) {
			chunk = chunk[:left]
		}

		n, err := dst.Write(chunk)
		if n > 0 {
			written += int64(n)
		}

		if err != nil {
			return written, transferError(WritingDestination, err)
		}

		if n != len(chunk) {
			return written, transferError(WritingDestination, io.ErrShortWrite)
		}
	}

	return written, nil
}

var defaultCopier = &Copier{}

// CopyBuffer is Copy() with buffers from the process wide pool.
func CopyBuffer(dst io.Writer, src io.Reader, bufSize int) (int64, error) {
	return defaultCopier.Copy(dst, src, bufSize)
}

// Copy is CopyBuffer() with DefaultBufferSize.
func Copy(dst io.Writer, src io.Reader) (int64, error) {
	return defaultCopier.Copy(dst, src, DefaultBufferSize)
}

// Fill is Copier.Fill() with buffers from the process wide pool.
func Fill(dst io.Writer, value byte, length int64, bufSize int) (int64, error) {
	return defaultCopier.Fill(dst, value, length, bufSize)
}
