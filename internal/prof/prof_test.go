package prof

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStartWritesRequestedProfiles(t *testing.T) {
	dir := t.TempDir()
	o := Options{
		CPU:   filepath.Join(dir, "cpu.out"),
		Mem:   filepath.Join(dir, "mem.out"),
		Trace: filepath.Join(dir, "trace.out"),
	}
	require.True(t, o.Enabled())

	stop, err := Start(o)
	require.NoError(t, err)
	require.NoError(t, stop())
	require.NoError(t, stop())

	for _, p := range []string{o.CPU, o.Mem, o.Trace} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		require.Positive(t, info.Size(), p)
	}
}

func TestStartNothing(t *testing.T) {
	require.False(t, Options{}.Enabled())
	stop, err := Start(Options{})
	require.NoError(t, err)
	require.NoError(t, stop())
}

func TestStartBadPath(t *testing.T) {
	_, err := Start(Options{CPU: filepath.Join(t.TempDir(), "missing", "cpu.out")})
	require.Error(t, err)
}
