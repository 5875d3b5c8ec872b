// Package vfs defines the minimal file handle capability that the backup
// layer needs, together with an implementation for the local disk and an
// in-memory one for tests and crash simulation.
//
// Nothing in here knows about backups. Any implementation that satisfies
// File (archive backed, remote, ...) can be plugged into the backup package.
package vfs

import (
	"io"
	"time"
)

// File is a handle to a (possibly not yet existing) file.
type File interface {
	// Path returns the path the handle was created for.
	Path() string

	// Exists tells if there is a file at Path().
	Exists() (bool, error)

	// Size returns the size of the file in bytes.
	Size() (int64, error)

	// ModTime returns the last modification time.
	ModTime() (time.Time, error)

	// OpenRead opens the file for reading.
	// A missing file must give an error for which os.IsNotExist() is true.
	OpenRead() (io.ReadCloser, error)

	// OpenWrite opens the file for writing from offset zero, creating it
	// if necessary. If `truncate` is true, previous content is dropped.
	OpenWrite(truncate bool) (io.WriteCloser, error)
}

// FS resolves paths to file handles.
type FS interface {
	File(path string) File
}

// Syncer is implemented by write handles that can flush
// their data to stable storage (like *os.File).
type Syncer interface {
	Sync() error
}
