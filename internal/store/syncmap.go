// Copyright (c) The lazyfile Authors.
// Licensed under the MIT License.
package store

import "sync"

// entryMap is a map of registered entries with synchronized access.
// Entries are never evicted; a registered virtual file stays addressable
// for the life of the process.
type entryMap struct {
	entries map[string]*entry
	lock    sync.RWMutex
}

func newEntryMap() *entryMap {
	return &entryMap{entries: map[string]*entry{}}
}

func (m *entryMap) get(key string) (*entry, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	e, ok := m.entries[key]
	return e, ok
}

func (m *entryMap) set(key string, e *entry) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.entries[key] = e
}

func (m *entryMap) len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.entries)
}
