// Package backup implements crash-safe writes of single files.
//
// A Writer never writes to the target path directly. All data goes to a
// sibling file with a "~" suffix first. Only on Close() the content is
// copied over the original. The backup is left in place afterwards, so
// that a crash during the copy-back always leaves one complete copy behind.
//
// A Reader decides once, on Open(), which of the two files holds the
// complete data:
//
//     backup exists && size(backup) > size(original) && mtime(backup) <= mtime(original)
//
// If that is true, the copy-back was interrupted and the backup is read.
// In every other case the original is the one to trust.
package backup

import (
	"os"
	"time"

	e "github.com/pkg/errors"
	"github.com/sahib/safeio/mio/counter"
	"github.com/sahib/safeio/mio/pool"
	"github.com/sahib/safeio/vfs"
)

// Suffix is appended to a path to get the backup path.
// Paths ending in it should not be used as targets themselves.
const Suffix = "~"

var (
	// ErrClosed is returned when writing to a closed Writer.
	ErrClosed = e.New("backup writer is already closed")
)

// PathOf returns the backup path for `path`.
func PathOf(path string) string {
	return path + Suffix
}

// Options can be passed to Create() to tune the copy-back.
type Options struct {
	// BufferSize is the size of the buffer used for the copy-back.
	// Zero means mio.DefaultBufferSize.
	BufferSize int

	// Pool to take the copy buffer from. nil means the process wide pool.
	Pool *pool.Pool

	// Progress is incremented with every byte copied back, if not nil.
	Progress *counter.ByteCounter
}

// Choice tells which file a Reader would read from.
type Choice int

const (
	// ChooseNone means that neither the original nor the backup exists.
	ChooseNone Choice = iota
	// ChooseOriginal means the original is complete.
	ChooseOriginal
	// ChooseBackup means the copy-back was interrupted.
	ChooseBackup
)

func (c Choice) String() string {
	switch c {
	case ChooseOriginal:
		return "original"
	case ChooseBackup:
		return "backup"
	default:
		return "none"
	}
}

// MarshalYAML encodes the choice as its name.
func (c Choice) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

// Status is the evidence the selection rule operates on.
type Status struct {
	Path            string    `yaml:"path"`
	BackupPath      string    `yaml:"backup_path"`
	OriginalExists  bool      `yaml:"original_exists"`
	OriginalSize    int64     `yaml:"original_size"`
	OriginalModTime time.Time `yaml:"original_mtime"`
	BackupExists    bool      `yaml:"backup_exists"`
	BackupSize      int64     `yaml:"backup_size"`
	BackupModTime   time.Time `yaml:"backup_mtime"`
	Chosen          Choice    `yaml:"chosen"`
}

// ChosenPath returns the path of the file that would be read,
// or an empty string if there is none.
func (st Status) ChosenPath() string {
	switch st.Chosen {
	case ChooseOriginal:
		return st.Path
	case ChooseBackup:
		return st.BackupPath
	default:
		return ""
	}
}

// ChosenSize returns the size of the file that would be read.
func (st Status) ChosenSize() int64 {
	if st.Chosen == ChooseBackup {
		return st.BackupSize
	}

	return st.OriginalSize
}

// Select applies the selection rule to `st`.
// A backup without an original is read too; it is the only copy left.
// On equal sizes the original wins.
func Select(st Status) Choice {
	switch {
	case !st.OriginalExists && !st.BackupExists:
		return ChooseNone
	case !st.OriginalExists:
		return ChooseBackup
	case !st.BackupExists:
		return ChooseOriginal
	}

	if st.BackupSize > st.OriginalSize && !st.BackupModTime.After(st.OriginalModTime) {
		return ChooseBackup
	}

	return ChooseOriginal
}

func stat(f vfs.File) (exists bool, size int64, mtime time.Time, err error) {
	exists, err = f.Exists()
	if err != nil || !exists {
		return false, 0, time.Time{}, err
	}

	if size, err = f.Size(); err != nil {
		return false, 0, time.Time{}, err
	}

	if mtime, err = f.ModTime(); err != nil {
		return false, 0, time.Time{}, err
	}

	return true, size, mtime, nil
}

// Inspect gathers the Status of `path` on `fs`.
// It is no error if neither file exists; Chosen is ChooseNone then.
func Inspect(fs vfs.FS, path string) (Status, error) {
	st := Status{
		Path:       path,
		BackupPath: PathOf(path),
	}

	var err error
	st.OriginalExists, st.OriginalSize, st.OriginalModTime, err = stat(fs.File(st.Path))
	if err != nil {
		return st, err
	}

	st.BackupExists, st.BackupSize, st.BackupModTime, err = stat(fs.File(st.BackupPath))
	if err != nil {
		return st, err
	}

	st.Chosen = Select(st)
	return st, nil
}

func notExist(path string) error {
	return &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
}
