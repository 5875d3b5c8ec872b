// Package blockio implements a random access reader on top of a source
// that can only deliver whole blocks, like a remote file or a slow disk.
//
// The reader keeps exactly one block in memory. Reads are served from it
// until it is exhausted; seeks inside the cached block only move a cursor.
// Everything else triggers a new fetch.
//
// The block size is a trade-off: larger blocks mean fewer fetches for
// sequential reads, but every seek outside of the cached window re-fetches
// a full block. It depends on the workload and is therefore always passed
// by the caller.
package blockio

import (
	"io"
	"sync"

	e "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrNegativeOffset is returned when seeking before the start.
	ErrNegativeOffset = e.New("negative seek offset")

	// ErrBadBlockSize is returned for block sizes outside (0, MaxBlockSize].
	ErrBadBlockSize = e.New("block size must be positive and at most 256 MiB")
)

// MaxBlockSize is the largest block a Reader caches in memory.
const MaxBlockSize = 256 * 1024 * 1024

// Source delivers the raw data for a Reader.
type Source interface {
	// Length returns the total size of the data in bytes.
	Length() int64

	// FetchBlock fills `buf` with the data starting at `off`.
	// It returns how many bytes are valid; this may only be less than
	// len(buf) if the end of the data was reached.
	FetchBlock(off int64, buf []byte) (int, error)
}

// Reader is a io.ReadSeeker on top of a Source.
// All methods are safe to call from several goroutines.
type Reader struct {
	mu  sync.Mutex
	src Source

	// block is the cache; its first blockValid bytes
	// are the data starting at blockStart.
	block      []byte
	blockStart int64
	blockValid int

	// cursor is the read offset inside of block.
	// Invariant: 0 <= cursor <= blockValid.
	cursor int

	fetches int64
}

// NewReader returns a Reader fetching `blockSize` sized blocks from `src`.
func NewReader(src Source, blockSize int) (*Reader, error) {
	if blockSize <= 0 || blockSize > MaxBlockSize {
		return nil, ErrBadBlockSize
	}

	return &Reader{
		src:   src,
		block: make([]byte, blockSize),
	}, nil
}

// offset is the global read offset. Expects r.mu to be held.
func (r *Reader) offset() int64 {
	return r.blockStart + int64(r.cursor)
}

// fetch replaces the cached block with the one starting at `off`.
// Expects r.mu to be held.
func (r *Reader) fetch(off int64) error {
	size := int64(len(r.block))
	if left := r.src.Length() - off; left < size {
		size = left
	}

	if size <= 0 {
		// Nothing to fetch; remember the position only.
		r.blockStart, r.blockValid, r.cursor = off, 0, 0
		return nil
	}

	n, err := r.src.FetchBlock(off, r.block[:size])
	r.fetches++

	if err != nil && err != io.EOF {
		// Leave an empty window at `off`. A retry will fetch again.
		r.blockStart, r.blockValid, r.cursor = off, 0, 0
		return e.Wrapf(err, "fetch block at %d", off)
	}

	if int64(n) < size {
		log.Debugf("blockio: short block at %d: got %d of %d bytes", off, n, size)
	}

	r.blockStart, r.blockValid, r.cursor = off, n, 0
	return nil
}

// fill makes sure the cached block has unread data at the current offset.
// Returns io.EOF if there is none. Expects r.mu to be held.
func (r *Reader) fill() error {
	off := r.offset()
	if off >= r.src.Length() {
		return io.EOF
	}

	if r.cursor < r.blockValid {
		return nil
	}

	if err := r.fetch(off); err != nil {
		return err
	}

	if r.blockValid == 0 {
		// The source delivered nothing although we're below Length().
		return io.ErrUnexpectedEOF
	}

	return nil
}

// Read serves data from the cached block, fetching a new one if the
// current one is exhausted. It never reads over a block boundary in one
// call; use io.ReadFull if you need all of `buf` filled.
func (r *Reader) Read(buf []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(buf) == 0 {
		return 0, nil
	}

	if err := r.fill(); err != nil {
		return 0, err
	}

	n := copy(buf, r.block[r.cursor:r.blockValid])
	r.cursor += n
	return n, nil
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fill(); err != nil {
		return 0, err
	}

	b := r.block[r.cursor]
	r.cursor++
	return b, nil
}

// seek expects r.mu to be held.
func (r *Reader) seek(newOff int64) error {
	if newOff < 0 {
		return ErrNegativeOffset
	}

	if newOff >= r.blockStart && newOff < r.blockStart+int64(r.blockValid) {
		// Inside the cached window; no I/O needed.
		r.cursor = int(newOff - r.blockStart)
		return nil
	}

	return r.fetch(newOff)
}

// Seek implements io.Seeker. Seeking inside the cached block is free,
// everything else fetches the block at the new offset right away.
// Seeking beyond the end is allowed; reads will return io.EOF then.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var newOff int64
	switch whence {
	case io.SeekStart:
		newOff = offset
	case io.SeekCurrent:
		newOff = r.offset() + offset
	case io.SeekEnd:
		newOff = r.src.Length() + offset
	default:
		return r.offset(), e.Errorf("bad whence: %d", whence)
	}

	if err := r.seek(newOff); err != nil {
		return r.offset(), err
	}

	return newOff, nil
}

// ReadAt implements io.ReaderAt by seeking and reading.
// The read offset of the Reader is moved as a side effect.
func (r *Reader) ReadAt(buf []byte, off int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.seek(off); err != nil {
		return 0, err
	}

	total := 0
	for total < len(buf) {
		if err := r.fill(); err != nil {
			return total, err
		}

		n := copy(buf[total:], r.block[r.cursor:r.blockValid])
		r.cursor += n
		total += n
	}

	return total, nil
}

// Length returns the total size of the source.
func (r *Reader) Length() int64 {
	return r.src.Length()
}

// BlockSize returns the size of the block cache.
func (r *Reader) BlockSize() int {
	return len(r.block)
}

// Fetches returns how often FetchBlock() was called on the source.
func (r *Reader) Fetches() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.fetches
}

// Close closes the source if it is an io.Closer.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if closer, ok := r.src.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}
