//go:build windows
// +build windows

package atomicfile

import (
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

// File is a pending replacement of its target path.
type File struct {
	*os.File

	path string
	done bool
}

// Create starts a replacement of path. The temporary file lives next to
// path so the final rename stays on one volume.
func Create(path string) (*File, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"*")
	if err != nil {
		return nil, err
	}
	return &File{File: f, path: path}, nil
}

// Commit syncs the data, closes the file and renames it over the target.
func (f *File) Commit() error {
	if f.done {
		return errors.New("atomicfile: already committed")
	}
	if err := f.Sync(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(f.Name(), f.path); err != nil {
		return err
	}
	f.done = true
	return nil
}

// Cleanup discards the temporary file. It is a no-op after a successful
// Commit.
func (f *File) Cleanup() error {
	if f.done {
		return nil
	}
	f.done = true
	closeErr := f.Close()
	if errors.Is(closeErr, os.ErrClosed) {
		closeErr = nil
	}
	return multierr.Append(closeErr, os.Remove(f.Name()))
}
