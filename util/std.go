// Package util contains small helpers that would not hurt the simplicity of
// Go if they were in the builtins or the stdlib.
package util

import (
	"io"

	log "github.com/sirupsen/logrus"
)

// Min returns the minimum of a and b.
func Min(a, b int) int {
	if a < b {
		return a
	}

	return b
}

// Max returns the maximum of a and b.
func Max(a, b int) int {
	if a < b {
		return b
	}

	return a
}

// Min64 is like Min() but for int64.
func Min64(a, b int64) int64 {
	if a < b {
		return a
	}

	return b
}

// Max64 is like Max() but for int64.
func Max64(a, b int64) int64 {
	if a < b {
		return b
	}

	return a
}

// Clamp64 clamps x into [lo, hi]
func Clamp64(x, lo, hi int64) int64 {
	return Max64(lo, Min64(x, hi))
}

// Closer closes `c` and only logs the error if there was one.
// Use it where a close error must not mask the outcome of the
// actual operation, for example in defer statements after a copy.
func Closer(c io.Closer) {
	if c == nil {
		return
	}

	if err := c.Close(); err != nil {
		log.WithError(err).Debugf("best-effort close failed")
	}
}
