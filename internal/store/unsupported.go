// Copyright (c) The lazyfile Authors.
// Licensed under the MIT License.
package store

// The HTTP backend is read-only and range-addressable; nothing below is
// implemented for it. Each operation fails with a distinct typed error
// instead of pretending to succeed.

// Put would write payload back to the origin. A put for a key that is
// not registered here is misdirected, not actionable, and is a harmless
// no-op; a put for a local key is unsupported.
func (s *Store) Put(key string, payload []byte) error {
	if _, ok := s.entries.get(key); !ok {
		return nil
	}
	return &UnsupportedError{Op: "store"}
}

// Delete would remove the resource at the origin.
func (s *Store) Delete(key string) error {
	return &UnsupportedError{Op: "delete"}
}

// Cleanup would reclaim space used by HTTP-backed resources.
func (s *Store) Cleanup() error {
	return &UnsupportedError{Op: "cleanup"}
}

// List would enumerate resource names matching a prefix.
func (s *Store) List(prefix string, limit int) ([]string, error) {
	return nil, &UnsupportedError{Op: "list"}
}

// ResolveURI would turn an arbitrary URI into a key outside the import
// flow.
func (s *Store) ResolveURI(uri string) (string, error) {
	return "", &UnsupportedError{Op: "uri resolution"}
}
