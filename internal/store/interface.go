// Copyright (c) The lazyfile Authors.
// Licensed under the MIT License.
package store

import (
	"fmt"
	"io"
)

// File is a read-only view of a registered virtual file. It is similar
// to os.File.
type File interface {
	io.ReadSeeker
	io.ReaderAt

	// Size returns the total size of the file.
	Size() int64
}

// UnsupportedError reports an operation the HTTP backend does not
// implement. HTTP-backed resources are read-only: writing, deletion,
// space reclamation and name enumeration all fail with this error
// rather than silently doing nothing.
type UnsupportedError struct {
	Op string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("http backend: operation %q is not supported", e.Op)
}
