package backup

import (
	e "github.com/pkg/errors"
	"github.com/sahib/safeio/mio/bounded"
	"github.com/sahib/safeio/vfs"
	log "github.com/sirupsen/logrus"
)

// Reader reads whichever of original and backup holds the complete data.
// It never reads more than the size the chosen file had on Open().
type Reader struct {
	status Status
	*bounded.Reader
}

// Open decides which file to read from and opens it.
// If neither file exists, the error satisfies os.IsNotExist().
func Open(fs vfs.FS, path string) (*Reader, error) {
	st, err := Inspect(fs, path)
	if err != nil {
		return nil, e.Wrapf(err, "failed to inspect %s", path)
	}

	if st.Chosen == ChooseNone {
		return nil, notExist(path)
	}

	if st.Chosen == ChooseBackup {
		log.Warnf(
			"%s looks incomplete (%d bytes); reading %s (%d bytes)",
			st.Path, st.OriginalSize, st.BackupPath, st.BackupSize,
		)
	}

	fd, err := fs.File(st.ChosenPath()).OpenRead()
	if err != nil {
		return nil, err
	}

	return &Reader{
		status: st,
		Reader: bounded.NewReader(fd, st.ChosenSize(), false),
	}, nil
}

// Status returns the evidence the choice was made on.
func (r *Reader) Status() Status {
	return r.status
}

// Chosen returns which file is being read.
func (r *Reader) Chosen() Choice {
	return r.status.Chosen
}
