// Package safefile opens logs and writes snapshot files without following
// special files or leaving half-written output behind.
package safefile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotRegularFile is returned for symlinks, FIFOs, devices, sockets and
// directories.
var ErrNotRegularFile = errors.New("not a regular file")

// OpenRegular opens path for reading after checking, both before and after
// the open, that it is a regular file. The returned FileInfo comes from the
// open descriptor, so its size is the size of the file actually read.
//
// The caller must close the returned file.
func OpenRegular(path string) (*os.File, os.FileInfo, error) {
	linkInfo, err := os.Lstat(path)
	if err != nil {
		return nil, nil, err
	}
	if !linkInfo.Mode().IsRegular() {
		return nil, nil, ErrNotRegularFile
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	// The path may have been swapped between Lstat and Open.
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, ErrNotRegularFile
	}
	return f, info, nil
}

// WriteAtomic writes data to a temporary file in the target directory,
// syncs it and renames it over path. Readers see either the old or the new
// content. An existing non-regular file at path is refused.
func WriteAtomic(path string, data []byte, perm os.FileMode) (err error) {
	if info, statErr := os.Lstat(path); statErr == nil && !info.Mode().IsRegular() {
		return ErrNotRegularFile
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
