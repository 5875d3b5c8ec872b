package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, major, minor, patch, rev, typ string, fn func()) {
	old := []string{Major, Minor, Patch, GitRev, ReleaseType}
	defer func() {
		Major, Minor, Patch, GitRev, ReleaseType = old[0], old[1], old[2], old[3], old[4]
	}()

	Major, Minor, Patch, GitRev, ReleaseType = major, minor, patch, rev, typ
	fn()
}

func TestString(t *testing.T) {
	withVersion(t, "0", "1", "0", "0123456789abcdef", "", func() {
		require.Equal(t, "v0.1.0+0123456", String())
	})

	withVersion(t, "1", "2", "3", "abc", "beta", func() {
		// Too short revisions are left out:
		require.Equal(t, "v1.2.3-beta", String())
	})
}

func TestNumbers(t *testing.T) {
	withVersion(t, "2", "", "7", "", "", func() {
		major, minor, patch, err := Numbers()
		require.NoError(t, err)
		require.Equal(t, []int{2, 0, 7}, []int{major, minor, patch})
	})

	withVersion(t, "x", "1", "0", "", "", func() {
		_, _, _, err := Numbers()
		require.Error(t, err)
	})
}

func TestCurrent(t *testing.T) {
	info := Current()
	require.Equal(t, String(), info.Semver)
	require.Equal(t, runtime.Version(), info.GoVersion)
	require.Contains(t, info.Platform, runtime.GOOS)
}
