package compress

import (
	"sort"

	"github.com/bkaradzic/go-lz4"
	"github.com/golang/snappy"
	e "github.com/pkg/errors"
)

var (
	// ErrBadAlgo is returned on a unsupported/unknown algorithm.
	ErrBadAlgo = e.New("invalid algorithm type")
)

// AlgorithmType is the byte stored in the header of a compressed stream.
// The values are part of the format and must never change.
type AlgorithmType byte

const (
	// AlgoNone stores blocks as they are. Mostly useful for testing.
	AlgoNone AlgorithmType = iota
	// AlgoSnappy uses snappy's block format.
	AlgoSnappy
	// AlgoLZ4 uses lz4's block format.
	AlgoLZ4
)

// Algorithm is the common interface for all supported algorithms.
type Algorithm interface {
	Encode(src []byte) ([]byte, error)
	Decode(src []byte) ([]byte, error)

	// MaxEncodedLen is the largest size Encode may produce for n bytes.
	MaxEncodedLen(n int) int
}

type noneAlgo struct{}

func (noneAlgo) Encode(src []byte) ([]byte, error) { return src, nil }
func (noneAlgo) Decode(src []byte) ([]byte, error) { return src, nil }
func (noneAlgo) MaxEncodedLen(n int) int           { return n }

type snappyAlgo struct{}

func (snappyAlgo) Encode(src []byte) ([]byte, error) {
	return snappy.Encode(nil, src), nil
}

func (snappyAlgo) Decode(src []byte) ([]byte, error) {
	return snappy.Decode(nil, src)
}

func (snappyAlgo) MaxEncodedLen(n int) int {
	return snappy.MaxEncodedLen(n)
}

type lz4Algo struct{}

func (lz4Algo) Encode(src []byte) ([]byte, error) {
	return lz4.Encode(nil, src)
}

func (lz4Algo) Decode(src []byte) ([]byte, error) {
	return lz4.Decode(nil, src)
}

// go-lz4 prefixes every block with its 4 byte raw length.
func (lz4Algo) MaxEncodedLen(n int) int {
	return 4 + n + n/255 + 16
}

type algoEntry struct {
	name string
	impl Algorithm
}

var registry = map[AlgorithmType]algoEntry{
	AlgoNone:   {name: "none", impl: noneAlgo{}},
	AlgoSnappy: {name: "snappy", impl: snappyAlgo{}},
	AlgoLZ4:    {name: "lz4", impl: lz4Algo{}},
}

// AlgorithmFromType returns the implementation of `a`.
func AlgorithmFromType(a AlgorithmType) (Algorithm, error) {
	entry, ok := registry[a]
	if !ok {
		return nil, ErrBadAlgo
	}

	return entry.impl, nil
}

func (a AlgorithmType) String() string {
	entry, ok := registry[a]
	if !ok {
		return "unknown algorithm"
	}

	return entry.name
}

// AlgoFromString converts the name of an algorithm to its type.
func AlgoFromString(s string) (AlgorithmType, error) {
	for typ, entry := range registry {
		if entry.name == s {
			return typ, nil
		}
	}

	return 0, ErrBadAlgo
}

// AlgoNames returns the names of all algorithms, ordered by their type.
func AlgoNames() []string {
	types := make([]int, 0, len(registry))
	for typ := range registry {
		types = append(types, int(typ))
	}

	sort.Ints(types)

	names := make([]string, 0, len(types))
	for _, typ := range types {
		names = append(names, registry[AlgorithmType(typ)].name)
	}

	return names
}

// maxEncodedLen is the worst case of all algorithms for n bytes.
func maxEncodedLen(n int) int {
	max := 0
	for _, entry := range registry {
		if l := entry.impl.MaxEncodedLen(n); l > max {
			max = l
		}
	}

	return max
}
