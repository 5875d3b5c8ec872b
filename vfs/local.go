package vfs

import (
	"io"
	"os"
	"time"
)

// Local is a FS backed by the operating system.
type Local struct{}

// NewLocal returns a FS for the local disk.
func NewLocal() Local {
	return Local{}
}

// File returns a handle for `path`. Nothing is opened yet.
func (Local) File(path string) File {
	return localFile(path)
}

type localFile string

func (lf localFile) Path() string {
	return string(lf)
}

func (lf localFile) Exists() (bool, error) {
	_, err := os.Stat(string(lf))
	if err == nil {
		return true, nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

func (lf localFile) Size() (int64, error) {
	info, err := os.Stat(string(lf))
	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}

func (lf localFile) ModTime() (time.Time, error) {
	info, err := os.Stat(string(lf))
	if err != nil {
		return time.Time{}, err
	}

	return info.ModTime(), nil
}

func (lf localFile) OpenRead() (io.ReadCloser, error) {
	fd, err := os.Open(string(lf))
	if err != nil {
		return nil, err
	}

	return fd, nil
}

func (lf localFile) OpenWrite(truncate bool) (io.WriteCloser, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if truncate {
		flags |= os.O_TRUNC
	}

	fd, err := os.OpenFile(string(lf), flags, 0600)
	if err != nil {
		return nil, err
	}

	return fd, nil
}
