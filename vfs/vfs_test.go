package vfs

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sahib/safeio/util/testutil"
	"github.com/stretchr/testify/require"
)

func withEachFS(t *testing.T, fn func(t *testing.T, fs FS, dir string)) {
	t.Run("local", func(t *testing.T) {
		dir := testutil.TempDir(t)
		defer testutil.Remover(t, dir)
		fn(t, NewLocal(), dir)
	})

	t.Run("mem", func(t *testing.T) {
		fn(t, NewMem(), "/mem")
	})
}

func TestFileContract(t *testing.T) {
	withEachFS(t, func(t *testing.T, fs FS, dir string) {
		f := fs.File(filepath.Join(dir, "x"))
		require.Equal(t, filepath.Join(dir, "x"), f.Path())

		exists, err := f.Exists()
		require.NoError(t, err)
		require.False(t, exists)

		_, err = f.OpenRead()
		require.True(t, os.IsNotExist(err), "got %v", err)

		_, err = f.Size()
		require.True(t, os.IsNotExist(err))

		w, err := f.OpenWrite(true)
		require.NoError(t, err)
		_, err = w.Write([]byte("hello world"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		exists, err = f.Exists()
		require.NoError(t, err)
		require.True(t, exists)

		size, err := f.Size()
		require.NoError(t, err)
		require.Equal(t, int64(11), size)

		mtime, err := f.ModTime()
		require.NoError(t, err)
		require.False(t, mtime.IsZero())

		// Non-truncating write overwrites from offset zero:
		w, err = f.OpenWrite(false)
		require.NoError(t, err)
		_, err = w.Write([]byte("HELLO"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		r, err := f.OpenRead()
		require.NoError(t, err)
		data, err := ioutil.ReadAll(r)
		require.NoError(t, err)
		require.NoError(t, r.Close())
		require.Equal(t, "HELLO world", string(data))

		// Truncating write drops the rest:
		w, err = f.OpenWrite(true)
		require.NoError(t, err)
		_, err = w.Write([]byte("bye"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		size, err = f.Size()
		require.NoError(t, err)
		require.Equal(t, int64(3), size)
	})
}

func TestMemClockAdvances(t *testing.T) {
	m := NewMem()
	a, b := m.File("a"), m.File("b")

	for _, f := range []File{a, b} {
		w, err := f.OpenWrite(true)
		require.NoError(t, err)
		_, err = w.Write([]byte("x"))
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}

	ta, err := a.ModTime()
	require.NoError(t, err)
	tb, err := b.ModTime()
	require.NoError(t, err)
	require.True(t, ta.Before(tb))

	fixed := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	m.SetClock(func() time.Time { return fixed })
	w, err := a.OpenWrite(true)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	ta, err = a.ModTime()
	require.NoError(t, err)
	require.Equal(t, fixed, ta)

	m.Chtime("b", fixed.Add(time.Hour))
	tb, err = b.ModTime()
	require.NoError(t, err)
	require.Equal(t, fixed.Add(time.Hour), tb)
}

func TestMemFaults(t *testing.T) {
	m := NewMem()
	m.Put("f", []byte("content"), time.Now())

	errOpen := errors.New("permission denied")
	m.InjectFault("f", Fault{OpenErr: errOpen})
	_, err := m.File("f").OpenRead()
	require.Equal(t, errOpen, err)

	errWrite := errors.New("no space left on device")
	m.InjectFault("f", Fault{WriteErr: errWrite, WriteBudget: 3})
	w, err := m.File("f").OpenWrite(true)
	require.NoError(t, err)
	n, err := w.Write([]byte("abcdef"))
	require.Equal(t, errWrite, err)
	require.Equal(t, 3, n)

	data, ok := m.Data("f")
	require.True(t, ok)
	require.Equal(t, "abc", string(data))

	errRead := errors.New("io error")
	m.InjectFault("f", Fault{ReadErr: errRead})
	r, err := m.File("f").OpenRead()
	require.NoError(t, err)
	_, err = r.Read(make([]byte, 10))
	require.Equal(t, errRead, err)

	m.ClearFaults()
	m.Remove("f")
	_, ok = m.Data("f")
	require.False(t, ok)
}

func TestMemClosedHandles(t *testing.T) {
	m := NewMem()
	w, err := m.File("f").OpenWrite(true)
	require.NoError(t, err)
	require.NoError(t, w.(Syncer).Sync())
	require.NoError(t, w.Close())

	_, err = w.Write([]byte("x"))
	require.Equal(t, os.ErrClosed, err)
	require.Equal(t, os.ErrClosed, w.Close())
}
