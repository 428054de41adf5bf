package rewrite

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteIfChangedSkipsEqualContent(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "01-intro.Rmd")
	require.NoError(t, os.WriteFile(p, []byte("same\n"), 0o644))
	before, err := os.Stat(p)
	require.NoError(t, err)

	wrote, err := WriteIfChanged(p, []byte("same\n"), []byte("same\n"), 0)
	require.NoError(t, err)
	assert.False(t, wrote)

	after, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestWriteIfChangedReplacesAndKeepsMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not preserved on windows")
	}
	dir := t.TempDir()
	p := filepath.Join(dir, "02-basics.Rmd")
	require.NoError(t, os.WriteFile(p, []byte("old\n"), 0o600))

	wrote, err := WriteIfChanged(p, []byte("old\n"), []byte("new\n"), 0)
	require.NoError(t, err)
	assert.True(t, wrote)

	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(got))

	st, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestWriteAtomicMissingDir(t *testing.T) {
	p := filepath.Join(t.TempDir(), "missing", "x.Rmd")
	err := WriteAtomic(p, []byte("x"), 0o644)
	assert.Error(t, err)
}
