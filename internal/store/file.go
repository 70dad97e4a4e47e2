// Copyright (c) The lazyfile Authors.
// Licensed under the MIT License.
package store

import (
	"context"
	"fmt"
	"io"

	"github.com/dataplane-io/lazyfile/pkg/chunkmath"
)

// file is a File over one registered entry.
type file struct {
	ctx   context.Context
	entry *entry
	store *Store

	cur int64
}

var _ File = &file{}

// Size returns the total size of the file.
func (f *file) Size() int64 {
	return f.entry.size
}

// Seek sets the current file offset.
func (f *file) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		f.cur = offset
	case io.SeekCurrent:
		f.cur += offset
	case io.SeekEnd:
		f.cur = f.entry.size + offset
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}

	if f.cur < 0 {
		return 0, fmt.Errorf("negative position: %d", f.cur)
	}
	return f.cur, nil
}

// Read reads up to len(p) bytes into p. It returns the number of bytes read (0 <= n <= len(p)) and any error encountered.
func (f *file) Read(p []byte) (n int, err error) {
	ret, err := f.ReadAt(p, f.cur)
	if ret > 0 {
		f.cur += int64(ret)
	}
	return ret, err
}

// ReadAt reads from the file starting at byte offset off. Reads against
// a lazy entry touch at most one chunk per call and may return fewer
// than len(p) bytes; sequential callers simply read again.
func (f *file) ReadAt(p []byte, off int64) (int, error) {
	size := f.entry.size
	if off >= size {
		return 0, io.EOF
	}
	if off < 0 {
		return 0, fmt.Errorf("negative offset: %d", off)
	}

	var data []byte
	var pos int
	if f.entry.lazy {
		alignedOff := chunkmath.AlignDown(off, f.store.chunkSize)
		count := chunkmath.Min64(f.store.chunkSize, size-alignedOff)

		chunk, err := f.store.loadChunk(f.ctx, f.entry, alignedOff, count)
		if err != nil {
			return 0, fmt.Errorf("read %s at %d: %w", f.entry.locator, off, err)
		}
		data = chunk
		pos = int(off - alignedOff)
	} else {
		data = f.entry.payload
		pos = int(off)
	}

	ret := chunkmath.Min(len(p), len(data)-pos)
	ret = copy(p[:ret], data[pos:pos+ret])

	var err error
	if off+int64(ret) >= size {
		err = io.EOF
	}
	return ret, err
}
