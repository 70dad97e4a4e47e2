// Copyright (c) The lazyfile Authors.
// Licensed under the MIT License.

// Package vfile models a remote resource as an addressable sequence of
// fixed-size chunks. No payload bytes live here; chunks are fetched on
// demand through the remote package.
package vfile

import (
	"fmt"

	"github.com/dataplane-io/lazyfile/internal/remote"
	"github.com/dataplane-io/lazyfile/pkg/chunkmath"
)

// DefaultChunkSize is the chunk size used for newly registered files.
var DefaultChunkSize int64 = 4 * 1024 * 1024 // 4 MiB

// File is a virtual file backed by a remote resource.
type File struct {
	Locator   string
	Size      int64
	ChunkSize int64
}

// New creates a virtual file for locator with the given total size.
func New(locator string, size int64) (*File, error) {
	if _, err := FileHandle(locator).Locator(); err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, fmt.Errorf("negative file size: %d", size)
	}

	return &File{
		Locator:   locator,
		Size:      size,
		ChunkSize: DefaultChunkSize,
	}, nil
}

// Handle returns the whole-file handle.
func (f *File) Handle() Handle {
	return FileHandle(f.Locator)
}

// NumChunks returns the number of chunks in the file.
func (f *File) NumChunks() int64 {
	return chunkmath.CountChunks(f.Size, f.ChunkSize)
}

// ChunkLen returns the byte length of chunk i. Every chunk is
// f.ChunkSize long except the last one, which may be short.
func (f *File) ChunkLen(i int64) int64 {
	return chunkmath.Min64(f.ChunkSize, f.Size-i*f.ChunkSize)
}

// Chunk returns the handle for chunk i.
func (f *File) Chunk(i int64) Handle {
	return ChunkHandle(f.Locator, uint32(i))
}

// Request builds the fetch request for chunk i.
func (f *File) Request(i int64) (remote.ChunkRequest, error) {
	if i < 0 || i >= f.NumChunks() {
		return remote.ChunkRequest{}, fmt.Errorf("chunk %d out of range, file has %d chunks", i, f.NumChunks())
	}

	return remote.ChunkRequest{
		Locator: f.Locator,
		Offset:  i * f.ChunkSize,
		Length:  f.ChunkLen(i),
	}, nil
}

// ChunkIndex returns the index of the chunk containing offset.
func (f *File) ChunkIndex(offset int64) int64 {
	return chunkmath.AlignDown(offset, f.ChunkSize) / f.ChunkSize
}
