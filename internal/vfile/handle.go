// Copyright (c) The lazyfile Authors.
// Licensed under the MIT License.
package vfile

import (
	"encoding/binary"
	"fmt"
	"net/url"
)

// A chunk handle is the locator bytes prefixed with a marker byte and a
// fixed-size big-endian chunk index. A whole-file handle is the bare
// locator bytes; locators always start with "http", so the marker can
// never be confused with one.
const (
	chunkMarker    byte = 0x01
	chunkPrefixLen      = 1 + 4
)

// Handle identifies a registered virtual file or one chunk of it.
// Handles are only constructed by this package's registration path;
// decoding arbitrary byte strings is unsupported.
type Handle []byte

// FileHandle returns the handle for a whole resource.
func FileHandle(locator string) Handle {
	return Handle(locator)
}

// ChunkHandle returns the handle for chunk index of a resource.
func ChunkHandle(locator string, index uint32) Handle {
	h := make(Handle, chunkPrefixLen+len(locator))
	h[0] = chunkMarker
	binary.BigEndian.PutUint32(h[1:chunkPrefixLen], index)
	copy(h[chunkPrefixLen:], locator)
	return h
}

// IsChunk reports whether h addresses a single chunk rather than a
// whole file.
func (h Handle) IsChunk() bool {
	return len(h) > 0 && h[0] == chunkMarker
}

// Index returns the chunk index encoded in h, or 0 for a whole-file
// handle.
func (h Handle) Index() uint32 {
	if !h.IsChunk() || len(h) < chunkPrefixLen {
		return 0
	}
	return binary.BigEndian.Uint32(h[1:chunkPrefixLen])
}

// Offset returns the byte offset of the chunk addressed by h for the
// given chunk size. A whole-file handle has offset 0.
func (h Handle) Offset(chunkSize int64) int64 {
	return int64(h.Index()) * chunkSize
}

// Locator decodes the resource locator from h and validates that it is
// an absolute http or https URI.
func (h Handle) Locator() (string, error) {
	raw := []byte(h)
	if h.IsChunk() {
		if len(h) <= chunkPrefixLen {
			return "", fmt.Errorf("truncated chunk handle")
		}
		raw = raw[chunkPrefixLen:]
	}

	locator := string(raw)
	u, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("decode handle: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("decode handle: %q is not an absolute http(s) uri", locator)
	}

	return locator, nil
}

// String renders h for keys and logs.
func (h Handle) String() string {
	if h.IsChunk() {
		return fmt.Sprintf("%s#%d", string(h[chunkPrefixLen:]), h.Index())
	}
	return string(h)
}
