// Copyright (c) The lazyfile Authors.
// Licensed under the MIT License.

// Package eager downloads whole resources up front, the fallback when an
// origin cannot serve byte ranges. Unlike the per-chunk protocol, whole
// downloads are allowed to retry with backoff.
package eager

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docker/go-units"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/opencontainers/go-digest"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
)

// Result describes one completed download.
type Result struct {
	Locator string
	Size    int64
	Digest  digest.Digest
	Data    []byte
}

// Options configures a Downloader.
type Options struct {
	// RetryMax is the number of retries per download. Defaults to 3.
	RetryMax int

	// Fs receives DownloadFile output. Defaults to the OS filesystem.
	Fs afero.Fs

	// Progress draws a byte progress bar on stderr during DownloadFile.
	Progress bool
}

// Downloader fetches entire resources.
type Downloader struct {
	client   *retryablehttp.Client
	fs       afero.Fs
	progress bool
	log      zerolog.Logger
}

// New creates a Downloader.
func New(opts Options, log zerolog.Logger) *Downloader {
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 3
	if opts.RetryMax > 0 {
		client.RetryMax = opts.RetryMax
	}

	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	return &Downloader{
		client:   client,
		fs:       fs,
		progress: opts.Progress,
		log:      log,
	}
}

// Download transfers the entire resource at locator into memory and
// returns its bytes and digest.
func (d *Downloader) Download(ctx context.Context, locator string) (*Result, error) {
	log := d.log.With().Str("operation", "download").Str("url", locator).Logger()
	log.Debug().Msg("eager download start")
	s := time.Now()

	resp, err := d.get(ctx, locator)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", locator, err)
	}

	res := &Result{
		Locator: locator,
		Size:    int64(len(data)),
		Digest:  digest.FromBytes(data),
		Data:    data,
	}

	log.Info().Str("size", units.HumanSize(float64(res.Size))).Str("digest", res.Digest.String()).Dur("duration", time.Since(s)).Msg("eager download complete")
	return res, nil
}

// DownloadFile transfers the resource at locator to dest on the
// configured filesystem, streaming rather than buffering in memory.
// The returned Result carries no Data.
func (d *Downloader) DownloadFile(ctx context.Context, locator, dest string) (*Result, error) {
	log := d.log.With().Str("operation", "download").Str("url", locator).Str("dest", dest).Logger()
	log.Debug().Msg("eager download start")
	s := time.Now()

	resp, err := d.get(ctx, locator)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	f, err := d.fs.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", dest, err)
	}
	defer f.Close()

	digester := digest.Canonical.Digester()
	w := io.MultiWriter(f, digester.Hash())
	if d.progress {
		bar := progressbar.DefaultBytes(resp.ContentLength, "downloading")
		w = io.MultiWriter(w, bar)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", locator, err)
	}

	res := &Result{
		Locator: locator,
		Size:    n,
		Digest:  digester.Digest(),
	}

	log.Info().Str("size", units.HumanSize(float64(n))).Str("digest", res.Digest.String()).Dur("duration", time.Since(s)).Msg("eager download complete")
	return res, nil
}

func (d *Downloader) get(ctx context.Context, locator string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request for %s: %w", locator, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.log.Error().Err(err).Str("url", locator).Msg("eager download error")
		return nil, fmt.Errorf("download %s: %w", locator, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download %s: unexpected status %d", locator, resp.StatusCode)
	}

	return resp, nil
}
