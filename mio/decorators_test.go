package mio

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sahib/safeio/mio/counter"
	"github.com/stretchr/testify/require"
)

type closeRecorder struct {
	bytes.Buffer
	closed  bool
	flushed bool
	err     error
}

func (cr *closeRecorder) Close() error {
	cr.closed = true
	return cr.err
}

func (cr *closeRecorder) Flush() error {
	cr.flushed = true
	return nil
}

func TestMultiWriter(t *testing.T) {
	a := &closeRecorder{err: errors.New("a failed")}
	b := &closeRecorder{}
	c := &bytes.Buffer{}

	mw := MultiWriter(a, b, c)
	n, err := mw.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)

	require.Equal(t, "hello", a.String())
	require.Equal(t, "hello", b.String())
	require.Equal(t, "hello", c.String())

	require.NoError(t, mw.Flush())
	require.True(t, a.flushed)
	require.True(t, b.flushed)

	err = mw.Close()
	require.EqualError(t, err, "a failed")
	require.True(t, a.closed)
	require.True(t, b.closed, "second writer was not closed after first failed")
}

func TestMultiWriterStopsOnError(t *testing.T) {
	bad := &failingWriter{budget: 2, err: errors.New("broken pipe")}
	good := &bytes.Buffer{}

	_, err := MultiWriter(bad, good).Write([]byte("hello"))
	require.Error(t, err)
	require.Equal(t, 0, good.Len())
}

func TestSilenceable(t *testing.T) {
	out := &closeRecorder{}
	sw := Silenceable(out)

	_, err := sw.Write([]byte("a"))
	require.NoError(t, err)

	sw.Silence(true)
	require.True(t, sw.IsSilenced())
	n, err := sw.Write([]byte("bbb"))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.NoError(t, sw.Flush())
	require.False(t, out.flushed)

	sw.Silence(false)
	_, err = sw.Write([]byte("c"))
	require.NoError(t, err)
	require.NoError(t, sw.Flush())
	require.True(t, out.flushed)

	require.Equal(t, "ac", out.String())
	require.NoError(t, sw.Close())
	require.True(t, out.closed)
}

func TestSink(t *testing.T) {
	shared := counter.New()
	s := Sink(shared)

	n, err := s.Write(make([]byte, 1000))
	require.NoError(t, err)
	require.Equal(t, 1000, n)
	require.Equal(t, int64(1000), shared.Value())
	require.True(t, s.Counter() == shared)
	require.NoError(t, s.Close())

	require.NotNil(t, Sink(nil).Counter())
}
