package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinMax(t *testing.T) {
	require.Equal(t, 1, Min(1, 2))
	require.Equal(t, 2, Max(1, 2))
	require.Equal(t, int64(-1), Min64(-1, 0))
	require.Equal(t, int64(0), Max64(-1, 0))
}

func TestClamp(t *testing.T) {
	if Clamp64(-1, 0, 1) != 0 {
		t.Errorf("Clamp: -1 is not in [0, 1]")
	}

	if Clamp64(+1, 0, 1) != 1 {
		t.Errorf("Clamp: +1 should be [0, 1]")
	}

	if Clamp64(0, 0, 1) != 0 {
		t.Errorf("Clamp: 0 should be [0, 1]")
	}

	if Clamp64(+2, 0, 1) != 1 {
		t.Errorf("Clamp: 2 was not cut")
	}
}

type failCloser struct {
	called bool
}

func (fc *failCloser) Close() error {
	fc.called = true
	return errors.New("nope")
}

func TestCloserSwallows(t *testing.T) {
	fc := &failCloser{}
	Closer(fc)
	require.True(t, fc.called)

	// nil must not panic:
	Closer(nil)
}
