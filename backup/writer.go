package backup

import (
	"io"
	"sync"

	e "github.com/pkg/errors"
	"github.com/sahib/safeio/mio"
	"github.com/sahib/safeio/mio/counter"
	"github.com/sahib/safeio/util"
	"github.com/sahib/safeio/vfs"
	log "github.com/sirupsen/logrus"
)

// Writer writes to the backup file and copies it over the original on Close().
type Writer struct {
	mu     sync.Mutex
	fs     vfs.FS
	path   string
	opts   Options
	fd     io.WriteCloser
	closed bool
}

// Create opens the backup file of `path` for writing, truncating it.
// The original is not touched before Close(), not even when this fails.
func Create(fs vfs.FS, path string, opts Options) (*Writer, error) {
	if opts.BufferSize <= 0 {
		opts.BufferSize = mio.DefaultBufferSize
	}

	fd, err := fs.File(PathOf(path)).OpenWrite(true)
	if err != nil {
		return nil, e.Wrapf(err, "failed to create backup of %s", path)
	}

	return &Writer{
		fs:   fs,
		path: path,
		opts: opts,
		fd:   fd,
	}, nil
}

// Path returns the path that will be written on Close().
func (w *Writer) Path() string {
	return w.path
}

// Write writes `buf` to the backup file.
func (w *Writer) Write(buf []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, ErrClosed
	}

	return w.fd.Write(buf)
}

// Close makes the backup durable and copies it over the original.
// An error during copy-back leaves a truncated original and a complete
// backup; a later Open() will pick the backup. Closing twice is a no-op.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true

	backupPath := PathOf(w.path)
	if syncer, ok := w.fd.(vfs.Syncer); ok {
		if err := syncer.Sync(); err != nil {
			util.Closer(w.fd)
			return e.Wrapf(err, "failed to sync %s", backupPath)
		}
	}

	if err := w.fd.Close(); err != nil {
		return e.Wrapf(err, "failed to close %s", backupPath)
	}

	n, err := w.copyBack()
	if err != nil {
		return err
	}

	log.Debugf("copied %d bytes from %s to %s", n, backupPath, w.path)
	return nil
}

// Abort closes the backup file without copying it over the original.
// Use it when the data written so far must not become visible.
// The (incomplete) backup stays; it is never chosen over a complete
// original since it is newer.
func (w *Writer) Abort() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}

	w.closed = true
	return w.fd.Close()
}

func (w *Writer) copyBack() (int64, error) {
	backupPath := PathOf(w.path)
	src, err := w.fs.File(backupPath).OpenRead()
	if err != nil {
		return 0, e.Wrapf(err, "failed to reopen %s", backupPath)
	}

	defer util.Closer(src)

	dst, err := w.fs.File(w.path).OpenWrite(true)
	if err != nil {
		return 0, e.Wrapf(err, "failed to open %s for copy-back", w.path)
	}

	defer util.Closer(dst)

	var out io.Writer = dst
	if w.opts.Progress != nil {
		out = counter.NewWriter(dst, w.opts.Progress)
	}

	n, err := mio.NewCopier(w.opts.Pool).Copy(out, src, w.opts.BufferSize)
	if err != nil {
		return n, e.Wrapf(err, "copy-back to %s failed after %d bytes", w.path, n)
	}

	if syncer, ok := dst.(vfs.Syncer); ok {
		if err := syncer.Sync(); err != nil {
			return n, e.Wrapf(err, "failed to sync %s", w.path)
		}
	}

	return n, nil
}
