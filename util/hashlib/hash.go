// Package hashlib computes content checksums of files as multihashes.
//
// A multihash carries the code of the algorithm that produced it, so
// checksums made with different algorithms can be told apart (and never
// compare equal by accident).
package hashlib

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"sort"

	"github.com/multiformats/go-multihash"
	e "github.com/pkg/errors"
	"github.com/sahib/safeio/mio"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

const (
	// DefaultAlgorithm is used when nothing else was configured.
	DefaultAlgorithm = "sha3-256"

	blake2b256 = multihash.BLAKE2B_MIN + 31
)

// ErrBadAlgo is returned for unknown or unsupported algorithm names.
var ErrBadAlgo = e.New("unsupported hash algorithm")

type algorithm struct {
	code uint64
	new  func() hash.Hash
}

func newBlake2b256() hash.Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		// Only happens for keys > 64 bytes.
		panic(fmt.Sprintf("blake2b: %v", err))
	}

	return h
}

var algorithms = map[string]algorithm{
	"sha2-256":    {code: multihash.SHA2_256, new: sha256.New},
	"sha3-256":    {code: multihash.SHA3_256, new: sha3.New256},
	"blake2b-256": {code: blake2b256, new: newBlake2b256},
}

// AlgorithmNames returns the names accepted by NewHashWriter, sorted.
func AlgorithmNames() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// Hash is a multihash. It's methods are nil-value safe.
type Hash []byte

func (h Hash) String() string {
	return h.B58String()
}

// B58String formats the hash as base58 string.
func (h Hash) B58String() string {
	if h == nil {
		return "<empty hash>"
	}

	return multihash.Multihash(h).B58String()
}

// ShortB58 returns the first 12 characters of B58String().
// Note that the first few characters encode the algorithm only.
func (h Hash) ShortB58() string {
	full := h.B58String()
	if len(full) > 12 {
		return full[:12]
	}

	return full
}

// Algorithm returns the name of the algorithm that produced `h`.
func (h Hash) Algorithm() string {
	dec, err := multihash.Decode(h)
	if err != nil {
		return "invalid"
	}

	for name, algo := range algorithms {
		if algo.code == dec.Code {
			return name
		}
	}

	return dec.Name
}

// Equal returns true if both hashes are equal.
// Nil hashes are considered equal.
func (h Hash) Equal(other Hash) bool {
	if h == nil || other == nil {
		return h == nil && other == nil
	}

	return bytes.Equal(h, other)
}

// FromB58String parses a hash printed by B58String().
func FromB58String(b58 string) (Hash, error) {
	mh, err := multihash.FromB58String(b58)
	if err != nil {
		return nil, err
	}

	return Hash(mh), nil
}

// HashWriter is a io.Writer that hashes everything written to it.
type HashWriter struct {
	code uint64
	hash hash.Hash
}

// NewHashWriter returns a HashWriter for the algorithm called `name`.
func NewHashWriter(name string) (*HashWriter, error) {
	algo, ok := algorithms[name]
	if !ok {
		return nil, ErrBadAlgo
	}

	return &HashWriter{code: algo.code, hash: algo.new()}, nil
}

func (hw *HashWriter) Write(buf []byte) (int, error) {
	return hw.hash.Write(buf)
}

// Finalize returns the hash of everything written so far.
func (hw *HashWriter) Finalize() Hash {
	mh, err := multihash.Encode(hw.hash.Sum(nil), hw.code)
	if err != nil {
		// All codes in `algorithms` are known to multihash.
		panic(fmt.Sprintf("failed to encode final hash: %v", err))
	}

	return Hash(mh)
}

// Sum hashes `data` with DefaultAlgorithm.
func Sum(data []byte) Hash {
	hw, err := NewHashWriter(DefaultAlgorithm)
	if err != nil {
		panic(err)
	}

	hw.Write(data)
	return hw.Finalize()
}

// SumReader hashes everything in `r` with the algorithm `name`, using a
// pooled buffer of `bufSize` bytes. It also returns the number of bytes
// hashed.
func SumReader(r io.Reader, name string, bufSize int) (Hash, int64, error) {
	hw, err := NewHashWriter(name)
	if err != nil {
		return nil, 0, err
	}

	n, err := mio.CopyBuffer(hw, r, bufSize)
	if err != nil {
		return nil, n, err
	}

	return hw.Finalize(), n, nil
}
