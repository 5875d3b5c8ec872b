package mio

import (
	"bytes"
	"errors"
	"io"
	"testing"

	e "github.com/pkg/errors"
	"github.com/sahib/safeio/mio/pool"
	"github.com/sahib/safeio/util/testutil"
	"github.com/stretchr/testify/require"
)

type failingReader struct {
	data []byte
	err  error
}

func (fr *failingReader) Read(buf []byte) (int, error) {
	if len(fr.data) == 0 {
		return 0, fr.err
	}

	n := copy(buf, fr.data)
	fr.data = fr.data[n:]
	return n, nil
}

type failingWriter struct {
	budget int
	err    error
}

func (fw *failingWriter) Write(buf []byte) (int, error) {
	if len(buf) > fw.budget {
		n := fw.budget
		fw.budget = 0
		return n, fw.err
	}

	fw.budget -= len(buf)
	return len(buf), nil
}

type shortWriter struct{}

func (sw shortWriter) Write(buf []byte) (int, error) {
	return len(buf) / 2, nil
}

func TestCopy(t *testing.T) {
	sizes := []int64{0, 1, 511, 512, 513, DefaultBufferSize, DefaultBufferSize*3 + 7}
	for _, size := range sizes {
		t.Run("", func(t *testing.T) {
			p := pool.New(0)
			data := testutil.CreateDummyBuf(size)
			out := &bytes.Buffer{}

			n, err := NewCopier(p).Copy(out, bytes.NewReader(data), 4096)
			require.NoError(t, err)
			require.Equal(t, size, n)
			require.Equal(t, data, out.Bytes())
			require.Equal(t, 1, p.Idle())
		})
	}
}

func TestCopyTagsSourceErrors(t *testing.T) {
	p := pool.New(0)
	before := p.Idle()

	srcErr := errors.New("sector not found")
	src := &failingReader{data: testutil.CreateDummyBuf(100), err: srcErr}
	out := &bytes.Buffer{}

	n, err := NewCopier(p).Copy(out, src, 0)
	require.Error(t, err)
	require.Equal(t, int64(100), n)
	require.True(t, IsReadingSource(err))
	require.False(t, IsWritingDestination(err))
	require.Equal(t, srcErr, e.Cause(err))
	require.Equal(t, before+1, p.Idle(), "buffer was not released")

	// Wrapping must not hide the tag:
	require.True(t, IsReadingSource(e.Wrap(err, "while copying")))
}

func TestCopyTagsDestinationErrors(t *testing.T) {
	p := pool.New(0)
	dstErr := errors.New("no space left")
	dst := &failingWriter{budget: 10, err: dstErr}
	src := bytes.NewReader(testutil.CreateDummyBuf(100))

	n, err := NewCopier(p).Copy(dst, src, 512)
	require.Error(t, err)
	require.Equal(t, int64(10), n)
	require.True(t, IsWritingDestination(err))
	require.False(t, IsReadingSource(err))

	te, ok := err.(*TransferError)
	require.True(t, ok)
	require.Equal(t, dstErr, te.Unwrap())
	require.Equal(t, 1, p.Idle(), "buffer was not released")
}

func TestCopyShortWrite(t *testing.T) {
	_, err := NewCopier(pool.New(0)).Copy(shortWriter{}, bytes.NewReader([]byte("hello")), 512)
	require.True(t, IsWritingDestination(err))
	require.Equal(t, io.ErrShortWrite, e.Cause(err))
}

func TestCopyDefaultPool(t *testing.T) {
	pool.Init(0)
	defer pool.Teardown()

	data := testutil.CreateDummyBuf(2048)
	out := &bytes.Buffer{}
	n, err := Copy(out, bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, int64(2048), n)
	require.Equal(t, 1, pool.Default().Idle())
}

func TestFill(t *testing.T) {
	p := pool.New(0)

	// Make sure a dirty pooled buffer does not leak into the output:
	dirty := p.Acquire(MinBufferSize)
	for idx := range dirty {
		dirty[idx] = 0xFF
	}
	p.Release(dirty)

	for _, length := range []int64{0, 1, 511, 512, 513, 5000} {
		out := &bytes.Buffer{}
		n, err := NewCopier(p).Fill(out, 0x2A, length, MinBufferSize)
		require.NoError(t, err)
		require.Equal(t, length, n)
		require.Equal(t, bytes.Repeat([]byte{0x2A}, int(length)), out.Bytes())
	}

	require.Equal(t, 1, p.Idle())
}

func TestFillDestinationError(t *testing.T) {
	p := pool.New(0)
	dst := &failingWriter{budget: 600, err: errors.New("quota exceeded")}

	n, err := NewCopier(p).Fill(dst, 0, 2000, 512)
	require.True(t, IsWritingDestination(err))
	require.Equal(t, int64(600), n)
	require.Equal(t, 1, p.Idle())
}

func TestTransferKindString(t *testing.T) {
	require.Equal(t, "reading source", ReadingSource.String())
	require.Equal(t, "writing destination", WritingDestination.String())
	require.Contains(t, (&TransferError{Kind: WritingDestination, Err: io.EOF}).Error(), "writing destination")
}
