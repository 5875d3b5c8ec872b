package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReuseSameBuffer(t *testing.T) {
	p := New(0)

	a := p.Acquire(1024)
	require.Len(t, a, 1024)
	p.Release(a)
	require.Equal(t, 1, p.Idle())

	b := p.Acquire(1024)
	require.Equal(t, &a[0], &b[0], "same size should hand out the same buffer")
	require.Equal(t, 0, p.Idle())
}

func TestDifferentSizesNeverMix(t *testing.T) {
	p := New(0)

	for _, size := range []int{1, 512, 1024, 4096} {
		p.Release(make([]byte, size))
	}

	for _, size := range []int{2, 513, 1023, 1024, 4096, 8192} {
		t.Run("", func(t *testing.T) {
			buf := p.Acquire(size)
			require.Len(t, buf, size)
		})
	}
}

func TestNoZeroingOnRelease(t *testing.T) {
	p := New(0)
	buf := p.Acquire(16)
	for idx := range buf {
		buf[idx] = 0xAB
	}

	p.Release(buf)
	again := p.Acquire(16)
	require.Equal(t, byte(0xAB), again[7])
}

func TestReslicedBufferKeepsCapacity(t *testing.T) {
	p := New(0)
	buf := p.Acquire(64)
	p.Release(buf[:10])

	again := p.Acquire(64)
	require.Equal(t, &buf[0], &again[0])
	require.Len(t, again, 64)
}

func TestMaxIdle(t *testing.T) {
	p := New(2)
	p.Release(make([]byte, 8))
	p.Release(make([]byte, 8))
	p.Release(make([]byte, 8))
	require.Equal(t, 2, p.Idle())

	p.Purge()
	require.Equal(t, 0, p.Idle())
}

func TestZeroSize(t *testing.T) {
	p := New(0)
	buf := p.Acquire(0)
	require.Len(t, buf, 0)
	p.Release(buf)
	require.Equal(t, 0, p.Idle())
}

func TestDirectBuffers(t *testing.T) {
	p := New(0)

	db := p.AcquireDirect(8192)
	require.Equal(t, 8192, db.Len())
	require.Equal(t, uintptr(0), db.Addr()%Alignment)

	p.ReleaseDirect(db)
	require.Equal(t, 1, p.IdleDirect())
	require.Equal(t, 0, p.Idle(), "direct and raw registries are separate")

	// A raw acquire of the same size must not return the direct buffer.
	raw := p.Acquire(8192)
	require.NotEqual(t, db.Addr(), uintptr(0))
	require.False(t, &raw[0] == &db.Bytes()[0])

	again := p.AcquireDirect(8192)
	require.True(t, again == db)
}

func TestConcurrentAccess(t *testing.T) {
	p := New(0)
	wg := &sync.WaitGroup{}

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(size int) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				buf := p.Acquire(size)
				if len(buf) != size {
					t.Errorf("got buffer of size %d; wanted %d", len(buf), size)
					return
				}

				p.Release(buf)
			}
		}(128 * (i%4 + 1))
	}

	wg.Wait()
	require.True(t, p.Idle() <= 16)
}

func TestGlobalLifecycle(t *testing.T) {
	Init(4)
	defer Teardown()

	buf := Acquire(100)
	Release(buf)
	require.Equal(t, 1, Default().Idle())

	Init(4)
	require.Equal(t, 0, Default().Idle())

	Teardown()
	require.NotNil(t, Default())
}
