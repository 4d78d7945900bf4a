//go:build !windows
// +build !windows

package atomicfile

import (
	"path/filepath"

	"github.com/google/renameio/v2"
)

// File is a pending replacement of its target path.
type File struct {
	*renameio.PendingFile
}

// Create starts a replacement of path. The temporary file lives next to
// path so the final rename stays on one filesystem.
func Create(path string) (*File, error) {
	f, err := renameio.NewPendingFile(path,
		renameio.WithTempDir(filepath.Dir(path)),
		renameio.WithPermissions(0o644))
	if err != nil {
		return nil, err
	}
	return &File{PendingFile: f}, nil
}

// Commit syncs the data, closes the file and renames it over the target.
func (f *File) Commit() error {
	return f.CloseAtomicallyReplace()
}

// Cleanup discards the temporary file. It is a no-op after a successful
// Commit.
func (f *File) Cleanup() error {
	return f.PendingFile.Cleanup()
}
