package throttle

import (
	"bytes"
	"context"
	"io/ioutil"
	"testing"
	"time"

	"github.com/sahib/safeio/util/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestUnlimited(t *testing.T) {
	data := testutil.CreateDummyBuf(1024 * 1024)
	lim := NewLimiter(0)
	require.Equal(t, rate.Inf, lim.Limit())

	r := NewReader(context.Background(), bytes.NewReader(data), lim)
	out := &bytes.Buffer{}
	w := NewWriter(context.Background(), out, lim)

	got, err := ioutil.ReadAll(r)
	require.NoError(t, err)
	n, err := w.Write(got)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.Equal(t, data, out.Bytes())
}

func TestLimiterBurst(t *testing.T) {
	require.Equal(t, 100, NewLimiter(100).Burst())
	require.Equal(t, MaxBurst, NewLimiter(1024*1024*1024).Burst())
}

func TestWriterIsSlowedDown(t *testing.T) {
	// 1K burst is free, the remaining 2K take ~200ms at 10K/s.
	lim := rate.NewLimiter(rate.Limit(10*1024), 1024)
	out := &bytes.Buffer{}
	w := NewWriter(context.Background(), out, lim)

	data := testutil.CreateDummyBuf(3 * 1024)
	start := time.Now()
	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.True(t, time.Since(start) >= 150*time.Millisecond)
	require.Equal(t, data, out.Bytes())
}

func TestReaderChunksByBurst(t *testing.T) {
	lim := rate.NewLimiter(rate.Limit(1024*1024), 512)
	r := NewReader(context.Background(), bytes.NewReader(make([]byte, 4096)), lim)

	n, err := r.Read(make([]byte, 4096))
	require.NoError(t, err)
	require.Equal(t, 512, n)
}

func TestCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lim := rate.NewLimiter(rate.Limit(1), 1)
	w := NewWriter(ctx, ioutil.Discard, lim)
	n, err := w.Write([]byte("hello"))
	require.Equal(t, 0, n)
	require.Equal(t, context.Canceled, err)

	r := NewReader(ctx, bytes.NewReader([]byte("hello")), lim)
	_, err = r.Read(make([]byte, 5))
	require.Equal(t, context.Canceled, err)
}
