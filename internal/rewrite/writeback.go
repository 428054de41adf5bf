// Package rewrite writes relabeled documents back to disk.
//
// Writes go to a temporary file in the target directory which is synced and
// then renamed over the original, so a reader never observes a half-written
// chapter. Runs across several files are not transactional.
package rewrite

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteIfChanged writes next to path when it differs from prev and reports
// whether a write happened. perm is applied to the new file; 0 keeps the
// mode of the existing file (or 0o644 when it cannot be read).
func WriteIfChanged(path string, prev, next []byte, perm fs.FileMode) (bool, error) {
	if bytes.Equal(prev, next) {
		return false, nil
	}
	if perm == 0 {
		perm = 0o644
		if st, err := os.Stat(path); err == nil {
			perm = st.Mode().Perm()
		}
	}
	if err := WriteAtomic(path, next, perm); err != nil {
		return false, err
	}
	return true, nil
}

// WriteAtomic replaces path with data via temp file + rename.
func WriteAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, f, err := createTempFile(dir, filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Chmod(perm); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// createTempFile creates ".tmp-<base>-<rand>" next to the target so the
// final rename stays on one filesystem.
func createTempFile(dir, base string) (string, *os.File, error) {
	f, err := os.CreateTemp(dir, ".tmp-"+base+"-")
	if err != nil {
		return "", nil, err
	}
	return f.Name(), f, nil
}
