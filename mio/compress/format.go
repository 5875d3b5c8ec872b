// Package compress implements a streaming, block framed compression format.
//
// A stream starts with an 8 byte magic number and one byte naming the
// algorithm. After that a sequence of blocks follows:
//
//     uvarint(rawLen) uvarint(encLen) data[encLen]
//
// A block with rawLen of zero terminates the stream. Every block holds at
// most BlockSize uncompressed bytes. Buffers for blocks come from the pool.
package compress

import (
	"encoding/binary"

	e "github.com/pkg/errors"
)

const (
	// BlockSize is the maximum number of uncompressed bytes per block.
	BlockSize = 64 * 1024

	headerSize = 9
)

// maxEncodedSize is the size of the read buffer for encoded blocks.
var maxEncodedSize = maxEncodedLen(BlockSize)

var (
	// ErrBadMagic is returned when the stream does not start with MagicNumber.
	ErrBadMagic = e.New("bad magic number in compressed stream")

	// ErrBadBlock is returned when a block header or its content is broken.
	ErrBadBlock = e.New("broken block in compressed stream")

	// MagicNumber is the magic number in front of a compressed stream.
	MagicNumber = []byte("safeiozc")
)

func makeHeader(algo AlgorithmType) []byte {
	hdr := make([]byte, headerSize)
	copy(hdr, MagicNumber)
	hdr[len(MagicNumber)] = byte(algo)
	return hdr
}

func putBlockHeader(buf []byte, rawLen, encLen int) int {
	n := binary.PutUvarint(buf, uint64(rawLen))
	n += binary.PutUvarint(buf[n:], uint64(encLen))
	return n
}
