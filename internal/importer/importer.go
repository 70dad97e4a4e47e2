// Copyright (c) The lazyfile Authors.
// Licensed under the MIT License.

// Package importer decides, per resource, between lazy registration and
// eager download. It is the only layer that absorbs errors: a batch
// import must finish even when individual resources fail, so failures
// become result records instead of propagating.
package importer

import (
	"context"

	"github.com/opencontainers/go-digest"
	"github.com/rs/zerolog"

	"github.com/dataplane-io/lazyfile/internal/eager"
	"github.com/dataplane-io/lazyfile/internal/metrics"
	"github.com/dataplane-io/lazyfile/internal/remote"
)

// Kind classifies an import outcome.
type Kind int

const (
	// LazyRegistered means the origin supports ranges and the resource
	// was registered without transferring payload bytes.
	LazyRegistered Kind = iota

	// EagerRegistered means the whole resource was downloaded and
	// registered.
	EagerRegistered

	// Failed means neither path succeeded. The locator is the only
	// detail surfaced; diagnostics go to the log.
	Failed
)

func (k Kind) String() string {
	switch k {
	case LazyRegistered:
		return "lazy"
	case EagerRegistered:
		return "eager"
	default:
		return "failed"
	}
}

// Outcome is the result of importing one locator.
type Outcome struct {
	Kind    Kind
	Locator string
	Key     string
	Size    int64
}

// Result accumulates a batch of outcomes into ordered lists. Files[i]
// and Keys[i] refer to the same locator; failed locators appear only in
// Failed.
type Result struct {
	Files  []string
	Keys   []string
	Failed []string
}

// Add records one outcome, keeping the partition invariant.
func (r *Result) Add(o Outcome) {
	if o.Kind == Failed {
		r.Failed = append(r.Failed, o.Locator)
		return
	}
	r.Files = append(r.Files, o.Locator)
	r.Keys = append(r.Keys, o.Key)
}

// Registry registers resources with the engine.
type Registry interface {
	RegisterLazy(locator string, size int64) (string, error)
	RegisterEager(locator string, payload []byte, dgst digest.Digest) (string, error)
}

// Downloader transfers whole resources, the eager fallback.
type Downloader interface {
	Download(ctx context.Context, locator string) (*eager.Result, error)
}

// Importer orchestrates probe, lazy registration and eager fallback.
type Importer struct {
	prober     remote.Prober
	downloader Downloader
	registry   Registry

	// lazyEnabled is read once per Import call so the switch can change
	// between calls.
	lazyEnabled func() bool

	log zerolog.Logger
}

// New creates an Importer. lazyEnabled is consulted on every call.
func New(prober remote.Prober, downloader Downloader, registry Registry, lazyEnabled func() bool, log zerolog.Logger) *Importer {
	return &Importer{
		prober:      prober,
		downloader:  downloader,
		registry:    registry,
		lazyEnabled: lazyEnabled,
		log:         log,
	}
}

// Import processes one locator. It never returns an error: a locator
// that can be neither lazily registered nor eagerly downloaded yields a
// Failed outcome.
func (i *Importer) Import(ctx context.Context, locator string) Outcome {
	log := i.log.With().Str("url", locator).Logger()

	if i.lazyEnabled() {
		if o, ok := i.tryLazy(ctx, log, locator); ok {
			metrics.Global.RecordImport(o.Kind.String())
			return o
		}
	} else {
		log.Debug().Msg("http lazy load disabled by user")
	}

	// Fallback: load eagerly if range requests are not usable.
	o := i.eagerFallback(ctx, log, locator)
	metrics.Global.RecordImport(o.Kind.String())
	return o
}

// tryLazy probes the origin and registers a lazy handle if it supports
// range reads. Probe failures are logged and absorbed; the caller falls
// through to the eager path.
func (i *Importer) tryLazy(ctx context.Context, log zerolog.Logger, locator string) (Outcome, bool) {
	res, err := i.prober.Probe(ctx, locator)
	if err != nil {
		log.Debug().Err(err).Msg("failed to detect range support")
		return Outcome{}, false
	}
	if !res.SupportsRange {
		log.Debug().Msg("origin does not support range requests")
		return Outcome{}, false
	}

	key, err := i.registry.RegisterLazy(locator, res.Length)
	if err != nil {
		log.Debug().Err(err).Msg("failed to register lazy file")
		return Outcome{}, false
	}

	log.Info().Str("key", key).Int64("size", res.Length).Msg("lazily registered")
	return Outcome{Kind: LazyRegistered, Locator: locator, Key: key, Size: res.Length}, true
}

// eagerFallback downloads the whole resource. Failures here are
// swallowed into a Failed outcome; the failure list is the only signal.
func (i *Importer) eagerFallback(ctx context.Context, log zerolog.Logger, locator string) Outcome {
	res, err := i.downloader.Download(ctx, locator)
	if err != nil {
		log.Warn().Err(err).Msg("eager download failed")
		return Outcome{Kind: Failed, Locator: locator}
	}

	key, err := i.registry.RegisterEager(locator, res.Data, res.Digest)
	if err != nil {
		log.Warn().Err(err).Msg("failed to register eager file")
		return Outcome{Kind: Failed, Locator: locator}
	}

	log.Info().Str("key", key).Int64("size", res.Size).Msg("eagerly registered")
	return Outcome{Kind: EagerRegistered, Locator: locator, Key: key, Size: res.Size}
}

// ImportAll processes a batch of locators in order.
func (i *Importer) ImportAll(ctx context.Context, locators []string) Result {
	var r Result
	for _, locator := range locators {
		r.Add(i.Import(ctx, locator))
	}
	return r
}
