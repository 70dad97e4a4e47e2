// Copyright (c) The lazyfile Authors.
// Licensed under the MIT License.
package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataplane-io/lazyfile/internal/eager"
	"github.com/dataplane-io/lazyfile/internal/remote"
)

type mockProber struct {
	results map[string]remote.ProbeResult
	err     error
	calls   int
}

func (m *mockProber) Probe(_ context.Context, locator string) (remote.ProbeResult, error) {
	m.calls++
	if m.err != nil {
		return remote.ProbeResult{}, m.err
	}
	return m.results[locator], nil
}

type mockDownloader struct {
	fail  map[string]bool
	calls int
}

func (m *mockDownloader) Download(_ context.Context, locator string) (*eager.Result, error) {
	m.calls++
	if m.fail[locator] {
		return nil, errors.New("broken socket")
	}
	data := []byte("payload of " + locator)
	return &eager.Result{Locator: locator, Size: int64(len(data)), Digest: digest.FromBytes(data), Data: data}, nil
}

type mockRegistry struct {
	lazy  []string
	eager []string
}

func (m *mockRegistry) RegisterLazy(locator string, size int64) (string, error) {
	m.lazy = append(m.lazy, locator)
	return locator, nil
}

func (m *mockRegistry) RegisterEager(locator string, payload []byte, dgst digest.Digest) (string, error) {
	m.eager = append(m.eager, locator)
	return locator, nil
}

func enabled() bool  { return true }
func disabled() bool { return false }

func newImporter(p *mockProber, d *mockDownloader, r *mockRegistry, lazy func() bool) *Importer {
	return New(p, d, r, lazy, zerolog.Nop())
}

func TestImportLazy(t *testing.T) {
	p := &mockProber{results: map[string]remote.ProbeResult{
		"http://host/a": {SupportsRange: true, Length: 1000},
	}}
	d := &mockDownloader{}
	r := &mockRegistry{}

	o := newImporter(p, d, r, enabled).Import(context.Background(), "http://host/a")

	assert.Equal(t, LazyRegistered, o.Kind)
	assert.Equal(t, int64(1000), o.Size)
	assert.Equal(t, 0, d.calls, "lazy registration must not transfer payload bytes")
	assert.Equal(t, []string{"http://host/a"}, r.lazy)
}

func TestImportNoRangeSupportFallsBack(t *testing.T) {
	p := &mockProber{results: map[string]remote.ProbeResult{}}
	d := &mockDownloader{}
	r := &mockRegistry{}

	o := newImporter(p, d, r, enabled).Import(context.Background(), "http://host/a")

	assert.Equal(t, EagerRegistered, o.Kind)
	assert.Equal(t, 1, d.calls)
	assert.Empty(t, r.lazy)
}

func TestImportProbeErrorFallsBack(t *testing.T) {
	p := &mockProber{err: errors.New("connection refused")}
	d := &mockDownloader{}
	r := &mockRegistry{}

	o := newImporter(p, d, r, enabled).Import(context.Background(), "http://host/a")

	assert.Equal(t, EagerRegistered, o.Kind, "a probe failure falls back to eager download, it does not abort")
}

func TestImportLazyDisabledSkipsProbe(t *testing.T) {
	p := &mockProber{results: map[string]remote.ProbeResult{
		"http://host/a": {SupportsRange: true, Length: 1000},
	}}
	d := &mockDownloader{}
	r := &mockRegistry{}

	o := newImporter(p, d, r, disabled).Import(context.Background(), "http://host/a")

	assert.Equal(t, EagerRegistered, o.Kind, "disabled lazy load goes eager even when ranges are supported")
	assert.Equal(t, 0, p.calls, "disabled lazy load must not probe")
}

func TestImportEagerFailure(t *testing.T) {
	p := &mockProber{results: map[string]remote.ProbeResult{}}
	d := &mockDownloader{fail: map[string]bool{"http://host/a": true}}
	r := &mockRegistry{}

	o := newImporter(p, d, r, enabled).Import(context.Background(), "http://host/a")

	assert.Equal(t, Failed, o.Kind)
	assert.Equal(t, "http://host/a", o.Locator)
}

func TestImportAllPartition(t *testing.T) {
	p := &mockProber{results: map[string]remote.ProbeResult{
		"http://host/lazy": {SupportsRange: true, Length: 500},
	}}
	d := &mockDownloader{fail: map[string]bool{"http://host/bad": true}}
	r := &mockRegistry{}

	locators := []string{"http://host/lazy", "http://host/eager", "http://host/bad", "http://host/eager2"}
	res := newImporter(p, d, r, enabled).ImportAll(context.Background(), locators)

	require.Equal(t, len(res.Files), len(res.Keys), "files and keys must match positionally")
	assert.Equal(t, []string{"http://host/lazy", "http://host/eager", "http://host/eager2"}, res.Files)
	assert.Equal(t, []string{"http://host/bad"}, res.Failed)

	// Every locator lands in exactly one list.
	seen := map[string]int{}
	for _, l := range res.Files {
		seen[l]++
	}
	for _, l := range res.Failed {
		seen[l]++
	}
	for _, l := range locators {
		assert.Equal(t, 1, seen[l], "locator %s must appear exactly once", l)
	}

	// Keys[i] refers to the same locator as Files[i].
	for i := range res.Files {
		assert.Equal(t, res.Files[i], res.Keys[i])
	}
}
