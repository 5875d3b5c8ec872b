package counter

import (
	"bytes"
	"errors"
	"io"
	"io/ioutil"
	"sync"
	"testing"

	"github.com/sahib/safeio/util/testutil"
	"github.com/stretchr/testify/require"
)

func TestCounterComposition(t *testing.T) {
	a := New()
	a.Add(10)

	c := New()
	c.Add(5)

	b := NewWithDelegate(c)
	b.AddCounter(a, false)
	require.Equal(t, int64(15), b.Value())
	require.Equal(t, int64(10), a.Value())

	d := New()
	d.Add(7)
	b.AddCounter(d, true)
	require.Equal(t, int64(22), b.Value())
	require.Equal(t, int64(0), d.Value())

	// Reset only affects the local part:
	b.Reset()
	require.Equal(t, int64(5), b.Value())
	require.Equal(t, int64(5), c.Value())
}

func TestCounterAddSelf(t *testing.T) {
	a := New()
	a.Add(4)
	a.AddCounter(a, false)
	require.Equal(t, int64(8), a.Value())

	a.AddCounter(a, true)
	require.Equal(t, int64(8), a.Value())
}

func TestCounterIgnoresNegative(t *testing.T) {
	a := New()
	a.Add(-3)
	a.Add(0)
	require.Equal(t, int64(0), a.Value())
	a.AddCounter(nil, true)
	require.Equal(t, int64(0), a.Value())
}

func TestCounterConcurrentCrossAdd(t *testing.T) {
	a, b := New(), New()
	wg := &sync.WaitGroup{}

	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			a.Add(1)
			a.AddCounter(b, true)
		}()
		go func() {
			defer wg.Done()
			b.Add(1)
			b.AddCounter(a, true)
		}()
	}

	wg.Wait()
	require.Equal(t, int64(200), a.Value()+b.Value())
}

func TestCountingReader(t *testing.T) {
	data := testutil.CreateDummyBuf(4096)
	r := NewReader(bytes.NewReader(data), nil)

	out, err := ioutil.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, data, out)
	require.Equal(t, int64(4096), r.Counter().Value())
	require.NoError(t, r.Close())
}

func TestCountingWriterSharedCounter(t *testing.T) {
	shared := New()
	a := NewWriter(ioutil.Discard, shared)
	b := NewWriter(&bytes.Buffer{}, shared)

	_, err := a.Write(make([]byte, 100))
	require.NoError(t, err)
	_, err = b.Write(make([]byte, 23))
	require.NoError(t, err)

	require.Equal(t, int64(123), shared.Value())
	require.True(t, a.Counter() == b.Counter())
	require.NoError(t, a.Flush())
	require.NoError(t, b.Close())
}

type brokenWriter struct{}

func (bw brokenWriter) Write(buf []byte) (int, error) {
	return len(buf) / 2, errors.New("disk on fire")
}

func TestCountingWriterPassesErrors(t *testing.T) {
	w := NewWriter(brokenWriter{}, nil)
	n, err := w.Write(make([]byte, 10))
	require.Error(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, int64(5), w.Counter().Value())
}

func TestCountingReaderEOF(t *testing.T) {
	r := NewReader(bytes.NewReader(nil), nil)
	n, err := r.Read(make([]byte, 10))
	require.Equal(t, 0, n)
	require.Equal(t, io.EOF, err)
	require.Equal(t, int64(0), r.Counter().Value())
}
