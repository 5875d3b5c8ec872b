package vfs

import (
	"bytes"
	"io"
	"os"
	"sync"
	"time"
)

// Fault describes errors Mem injects for a single path.
type Fault struct {
	// OpenErr is returned by OpenRead() and OpenWrite().
	OpenErr error

	// WriteErr is returned once WriteBudget bytes were written
	// through a single handle.
	WriteErr    error
	WriteBudget int64

	// ReadErr is returned by the first Read() of a handle.
	ReadErr error

	// CloseErr is returned by Close() of any handle.
	CloseErr error
}

type memEntry struct {
	data  []byte
	mtime time.Time
}

// Mem is an in-memory FS. Modification times come from a logical clock
// that advances one second on every modification, unless SetClock() was
// used. It is safe for concurrent use.
type Mem struct {
	mu     sync.Mutex
	files  map[string]*memEntry
	faults map[string]Fault
	now    func() time.Time
	tick   time.Time
}

// NewMem returns an empty in-memory FS.
func NewMem() *Mem {
	m := &Mem{
		files:  make(map[string]*memEntry),
		faults: make(map[string]Fault),
		tick:   time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	m.now = func() time.Time {
		m.tick = m.tick.Add(time.Second)
		return m.tick
	}

	return m
}

// SetClock replaces the clock used for modification times.
func (m *Mem) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.now = now
}

// Put creates or replaces the file at `path` with a copy of `data`.
func (m *Mem) Put(path string, data []byte, mtime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.files[path] = &memEntry{
		data:  append([]byte{}, data...),
		mtime: mtime,
	}
}

// Data returns a copy of the content at `path`.
func (m *Mem) Data(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.files[path]
	if !ok {
		return nil, false
	}

	return append([]byte{}, entry.data...), true
}

// Chtime sets the modification time of `path` (if it exists).
func (m *Mem) Chtime(path string, mtime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.files[path]; ok {
		entry.mtime = mtime
	}
}

// Remove deletes `path`. It is no error if it does not exist.
func (m *Mem) Remove(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.files, path)
}

// InjectFault registers `fault` for `path`, replacing any previous one.
func (m *Mem) InjectFault(path string, fault Fault) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.faults[path] = fault
}

// ClearFaults removes all injected faults.
func (m *Mem) ClearFaults() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.faults = make(map[string]Fault)
}

// File returns a handle for `path`.
func (m *Mem) File(path string) File {
	return &memFile{fs: m, path: path}
}

type memFile struct {
	fs   *Mem
	path string
}

func (mf *memFile) notExist(op string) error {
	return &os.PathError{Op: op, Path: mf.path, Err: os.ErrNotExist}
}

func (mf *memFile) Path() string {
	return mf.path
}

func (mf *memFile) Exists() (bool, error) {
	mf.fs.mu.Lock()
	defer mf.fs.mu.Unlock()

	_, ok := mf.fs.files[mf.path]
	return ok, nil
}

func (mf *memFile) Size() (int64, error) {
	mf.fs.mu.Lock()
	defer mf.fs.mu.Unlock()

	entry, ok := mf.fs.files[mf.path]
	if !ok {
		return 0, mf.notExist("stat")
	}

	return int64(len(entry.data)), nil
}

func (mf *memFile) ModTime() (time.Time, error) {
	mf.fs.mu.Lock()
	defer mf.fs.mu.Unlock()

	entry, ok := mf.fs.files[mf.path]
	if !ok {
		return time.Time{}, mf.notExist("stat")
	}

	return entry.mtime, nil
}

func (mf *memFile) OpenRead() (io.ReadCloser, error) {
	mf.fs.mu.Lock()
	defer mf.fs.mu.Unlock()

	fault := mf.fs.faults[mf.path]
	if fault.OpenErr != nil {
		return nil, fault.OpenErr
	}

	entry, ok := mf.fs.files[mf.path]
	if !ok {
		return nil, mf.notExist("open")
	}

	return &memReader{
		r:     bytes.NewReader(append([]byte{}, entry.data...)),
		fault: fault,
	}, nil
}

func (mf *memFile) OpenWrite(truncate bool) (io.WriteCloser, error) {
	mf.fs.mu.Lock()
	defer mf.fs.mu.Unlock()

	fault := mf.fs.faults[mf.path]
	if fault.OpenErr != nil {
		return nil, fault.OpenErr
	}

	entry, ok := mf.fs.files[mf.path]
	if !ok {
		entry = &memEntry{}
		mf.fs.files[mf.path] = entry
	}

	if truncate {
		entry.data = entry.data[:0]
	}

	entry.mtime = mf.fs.now()
	return &memWriter{fs: mf.fs, entry: entry, fault: fault}, nil
}

type memReader struct {
	r      *bytes.Reader
	fault  Fault
	reads  int
	closed bool
}

func (mr *memReader) Read(buf []byte) (int, error) {
	if mr.closed {
		return 0, os.ErrClosed
	}

	mr.reads++
	if mr.fault.ReadErr != nil && mr.reads == 1 {
		return 0, mr.fault.ReadErr
	}

	return mr.r.Read(buf)
}

func (mr *memReader) Close() error {
	mr.closed = true
	return mr.fault.CloseErr
}

type memWriter struct {
	fs      *Mem
	entry   *memEntry
	fault   Fault
	off     int64
	written int64
	closed  bool
}

func (mw *memWriter) Write(buf []byte) (int, error) {
	if mw.closed {
		return 0, os.ErrClosed
	}

	take := int64(len(buf))
	var err error
	if mw.fault.WriteErr != nil {
		if left := mw.fault.WriteBudget - mw.written; left < take {
			take = left
			if take < 0 {
				take = 0
			}

			err = mw.fault.WriteErr
		}
	}

	mw.fs.mu.Lock()
	defer mw.fs.mu.Unlock()

	end := mw.off + take
	if end > int64(len(mw.entry.data)) {
		grown := make([]byte, end)
		copy(grown, mw.entry.data)
		mw.entry.data = grown
	}

	copy(mw.entry.data[mw.off:end], buf[:take])
	mw.off = end
	mw.written += take
	if take > 0 {
		mw.entry.mtime = mw.fs.now()
	}

	return int(take), err
}

// Sync is a no-op; memory is as stable as it gets here.
func (mw *memWriter) Sync() error {
	if mw.closed {
		return os.ErrClosed
	}

	return nil
}

func (mw *memWriter) Close() error {
	if mw.closed {
		return os.ErrClosed
	}

	mw.closed = true
	return mw.fault.CloseErr
}
