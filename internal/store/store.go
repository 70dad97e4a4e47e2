// Copyright (c) The lazyfile Authors.
// Licensed under the MIT License.

// Package store is the engine-side registry of HTTP-backed virtual
// files. Lazy entries hold only a locator and a size; their bytes are
// fetched per chunk, on demand. Eager entries hold the full payload.
package store

import (
	"context"
	"os"

	"github.com/opencontainers/go-digest"
	"github.com/rs/zerolog"

	"github.com/dataplane-io/lazyfile/internal/blockcache"
	"github.com/dataplane-io/lazyfile/internal/remote"
	"github.com/dataplane-io/lazyfile/internal/vfile"
)

// entry is one registered resource.
type entry struct {
	locator string
	size    int64
	lazy    bool

	// vf addresses chunks of a lazy entry.
	vf *vfile.File

	// payload and digest are set for eager entries only.
	payload []byte
	digest  digest.Digest
}

// Options configures a Store.
type Options struct {
	// ChunkSize for lazily registered files. Zero means the vfile
	// default.
	ChunkSize int64

	// Cache, if set, caches fetched chunks. The fetch protocol itself
	// stays cache-free.
	Cache *blockcache.Cache
}

// Store is an in-memory registry of virtual files.
type Store struct {
	entries   *entryMap
	fetcher   remote.Fetcher
	chunkSize int64
	cache     *blockcache.Cache
	log       zerolog.Logger
}

// New creates a store that reads lazy entries through fetcher.
func New(fetcher remote.Fetcher, opts Options, log zerolog.Logger) *Store {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = vfile.DefaultChunkSize
	}

	return &Store{
		entries:   newEntryMap(),
		fetcher:   fetcher,
		chunkSize: chunkSize,
		cache:     opts.Cache,
		log:       log,
	}
}

// RegisterLazy registers a virtual file for locator without transferring
// any payload bytes, and returns its key.
func (s *Store) RegisterLazy(locator string, size int64) (string, error) {
	f, err := vfile.New(locator, size)
	if err != nil {
		return "", err
	}
	f.ChunkSize = s.chunkSize

	key := f.Handle().String()
	s.entries.set(key, &entry{locator: locator, size: size, lazy: true, vf: f})
	s.log.Debug().Str("key", key).Int64("size", size).Msg("registered lazy file")

	return key, nil
}

// RegisterEager registers a fully downloaded payload and returns its
// key.
func (s *Store) RegisterEager(locator string, payload []byte, dgst digest.Digest) (string, error) {
	if _, err := vfile.FileHandle(locator).Locator(); err != nil {
		return "", err
	}

	key := vfile.FileHandle(locator).String()
	s.entries.set(key, &entry{
		locator: locator,
		size:    int64(len(payload)),
		payload: payload,
		digest:  dgst,
	})
	s.log.Debug().Str("key", key).Int("size", len(payload)).Str("digest", dgst.String()).Msg("registered eager file")

	return key, nil
}

// Open returns a read-only view of the file registered under key.
// Reads against a lazy entry fetch chunks from the origin as they are
// touched; ctx bounds those fetches.
func (s *Store) Open(ctx context.Context, key string) (File, error) {
	e, ok := s.entries.get(key)
	if !ok {
		return nil, os.ErrNotExist
	}

	return &file{ctx: ctx, entry: e, store: s}, nil
}

// Load fills buf with the bytes addressed by handle, the whole engine
// read path in one call: decode the locator and chunk offset, then
// issue a single range fetch of exactly len(buf) bytes.
func (s *Store) Load(ctx context.Context, h vfile.Handle, buf []byte) error {
	locator, err := h.Locator()
	if err != nil {
		return err
	}

	return s.fetcher.Fetch(ctx, remote.ChunkRequest{
		Locator: locator,
		Offset:  h.Offset(s.chunkSize),
		Length:  int64(len(buf)),
	}, buf)
}

// Len returns the number of registered entries.
func (s *Store) Len() int {
	return s.entries.len()
}

// loadChunk fetches one aligned chunk of a lazy entry, through the
// block cache when one is configured.
func (s *Store) loadChunk(ctx context.Context, e *entry, offset, count int64) ([]byte, error) {
	fetch := func() ([]byte, error) {
		buf := make([]byte, count)
		if err := s.fetcher.Fetch(ctx, remote.ChunkRequest{Locator: e.locator, Offset: offset, Length: count}, buf); err != nil {
			return nil, err
		}
		return buf, nil
	}

	if s.cache != nil {
		return s.cache.GetOrCreate(e.locator, offset, fetch)
	}
	return fetch()
}
