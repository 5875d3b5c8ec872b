// Package throttle limits the throughput of streams with a token bucket.
// One token equals one byte. Reads and writes are split into chunks of at
// most the limiter's burst size.
package throttle

import (
	"context"
	"io"

	"github.com/sahib/safeio/util"
	"golang.org/x/time/rate"
)

// MaxBurst is the largest burst NewLimiter() will configure.
const MaxBurst = 64 * 1024

// NewLimiter returns a limiter allowing `bytesPerSec` bytes per second.
// A value <= 0 means no limit.
func NewLimiter(bytesPerSec int64) *rate.Limiter {
	if bytesPerSec <= 0 {
		return rate.NewLimiter(rate.Inf, MaxBurst)
	}

	burst := util.Clamp64(bytesPerSec, 1, MaxBurst)
	return rate.NewLimiter(rate.Limit(bytesPerSec), int(burst))
}

func chunkSize(lim *rate.Limiter, n int) int {
	if lim.Limit() == rate.Inf {
		return n
	}

	return util.Min(n, util.Max(lim.Burst(), 1))
}

// Reader is a rate limited io.Reader.
type Reader struct {
	ctx context.Context
	r   io.Reader
	lim *rate.Limiter
}

// NewReader returns a Reader that reads from `r` no faster than `lim` allows.
// Cancelling `ctx` makes pending and future reads fail.
func NewReader(ctx context.Context, r io.Reader, lim *rate.Limiter) *Reader {
	return &Reader{ctx: ctx, r: r, lim: lim}
}

func (tr *Reader) Read(buf []byte) (int, error) {
	if err := tr.ctx.Err(); err != nil {
		return 0, err
	}

	n, err := tr.r.Read(buf[:chunkSize(tr.lim, len(buf))])
	if n > 0 {
		if werr := tr.lim.WaitN(tr.ctx, n); werr != nil {
			return n, werr
		}
	}

	return n, err
}

// Close closes the underlying reader if it is an io.Closer.
func (tr *Reader) Close() error {
	if closer, ok := tr.r.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

// Writer is a rate limited io.Writer.
type Writer struct {
	ctx context.Context
	w   io.Writer
	lim *rate.Limiter
}

// NewWriter returns a Writer that writes to `w` no faster than `lim` allows.
func NewWriter(ctx context.Context, w io.Writer, lim *rate.Limiter) *Writer {
	return &Writer{ctx: ctx, w: w, lim: lim}
}

func (tw *Writer) Write(buf []byte) (int, error) {
	written := 0
	for len(buf) > 0 {
		chunk := buf[:chunkSize(tw.lim, len(buf))]
		if err := tw.lim.WaitN(tw.ctx, len(chunk)); err != nil {
			return written, err
		}

		n, err := tw.w.Write(chunk)
		written += n
		if err != nil {
			return written, err
		}

		buf = buf[n:]
	}

	return written, nil
}

// Close closes the underlying writer if it is an io.Closer.
func (tw *Writer) Close() error {
	if closer, ok := tw.w.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}
