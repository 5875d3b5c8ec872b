package compress

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"

	"github.com/sahib/safeio/mio/pool"
)

// Reader decompresses a stream written by Writer.
// The underlying reader is not closed.
type Reader struct {
	r    *bufio.Reader
	algo Algorithm
	pool *pool.Pool

	enc []byte
	dec []byte
	off int

	headerRead bool
	eof        bool
	err        error
}

// NewReader returns a Reader decompressing from `r`.
func NewReader(r io.Reader) *Reader {
	return NewReaderWithPool(r, nil)
}

// NewReaderWithPool is like NewReader, but takes block buffers from `p`.
func NewReaderWithPool(r io.Reader, p *pool.Pool) *Reader {
	if p == nil {
		p = pool.Default()
	}

	return &Reader{
		r:    bufio.NewReader(r),
		pool: p,
	}
}

func (r *Reader) readHeader() error {
	hdr := make([]byte, headerSize)
	if _, err := io.ReadFull(r.r, hdr); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ErrBadMagic
		}

		return err
	}

	if !bytes.Equal(hdr[:len(MagicNumber)], MagicNumber) {
		return ErrBadMagic
	}

	algo, err := AlgorithmFromType(AlgorithmType(hdr[len(MagicNumber)]))
	if err != nil {
		return err
	}

	r.algo = algo
	r.enc = r.pool.Acquire(maxEncodedSize)
	r.headerRead = true
	return nil
}

func (r *Reader) readUvarint() (uint64, error) {
	v, err := binary.ReadUvarint(r.r)
	if err == io.EOF {
		return 0, io.ErrUnexpectedEOF
	}

	if err != nil && err != io.ErrUnexpectedEOF {
		return 0, ErrBadBlock
	}

	return v, err
}

func (r *Reader) readBlock() error {
	rawLen, err := r.readUvarint()
	if err != nil {
		return err
	}

	if rawLen == 0 {
		r.eof = true
		return nil
	}

	encLen, err := r.readUvarint()
	if err != nil {
		return err
	}

	if rawLen > BlockSize || encLen > uint64(r.algo.MaxEncodedLen(int(rawLen))) {
		return ErrBadBlock
	}

	enc := r.enc[:encLen]
	if _, err := io.ReadFull(r.r, enc); err != nil {
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}

		return err
	}

	dec, err := r.algo.Decode(enc)
	if err != nil {
		return ErrBadBlock
	}

	if uint64(len(dec)) != rawLen {
		return ErrBadBlock
	}

	r.dec, r.off = dec, 0
	return nil
}

// Read decompresses into `buf`.
func (r *Reader) Read(buf []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}

	if !r.headerRead {
		if err := r.readHeader(); err != nil {
			r.err = err
			return 0, err
		}
	}

	for r.off == len(r.dec) {
		if r.eof {
			return 0, io.EOF
		}

		if err := r.readBlock(); err != nil {
			r.err = err
			return 0, err
		}
	}

	n := copy(buf, r.dec[r.off:])
	r.off += n
	return n, nil
}

// Close releases the block buffer.
func (r *Reader) Close() error {
	if r.enc != nil {
		r.pool.Release(r.enc)
		r.enc = nil
	}

	r.dec, r.off = nil, 0
	if r.err == nil {
		r.err = io.ErrClosedPipe
	}

	return nil
}
