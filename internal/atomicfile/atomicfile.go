// Package atomicfile writes files that appear at their final path only once
// they are complete and flushed to stable storage.
package atomicfile

import "io"

// Writer is the part of *File that encoders need.
type Writer interface {
	io.Writer
	io.Seeker
}

var _ Writer = (*File)(nil)
