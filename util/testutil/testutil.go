// Package testutil has helpers shared by the tests of all packages.
package testutil

import (
	"io/ioutil"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

// CreateDummyBuf returns `size` bytes of the repeating sequence [0...254].
// The odd period makes misaligned reads show up in comparisons.
func CreateDummyBuf(size int64) []byte {
	buf := make([]byte, size)
	for idx := range buf {
		buf[idx] = byte(idx % 255)
	}

	return buf
}

// CreateRandomDummyBuf returns `size` bytes of pseudo random data.
// The same `seed` always gives the same content.
func CreateRandomDummyBuf(size, seed int64) []byte {
	buf := make([]byte, size)
	rand.New(rand.NewSource(seed)).Read(buf)
	return buf
}

// TempDir creates a fresh temporary directory or fails the test.
// Pair it with Remover() in a defer.
func TempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "safeio-test-dir")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	return dir
}

// Remover removes all `paths` recursively. Missing paths are fine.
func Remover(t *testing.T, paths ...string) {
	for _, path := range paths {
		if err := os.RemoveAll(path); err != nil {
			t.Errorf("removing temp path failed: %v", err)
		}
	}
}

// WriteFile writes `data` to `name` below `dir` and returns the full path.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	path := filepath.Join(dir, name)
	if err := ioutil.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}

	return path
}

// ReadFile returns the content of `path` or fails the test.
func ReadFile(t *testing.T, path string) []byte {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}

	return data
}
