// Copyright (c) The lazyfile Authors.
// Licensed under the MIT License.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dataplane-io/lazyfile/internal/metrics"
)

// Fetch reads the byte range described by req into buf, which must hold
// exactly req.Length bytes. The origin must answer 206 Partial Content
// and serve exactly the requested amount; anything else is fatal for
// this fetch and is never retried.
func (c *Client) Fetch(ctx context.Context, req ChunkRequest, buf []byte) error {
	if req.Offset < 0 || req.Length <= 0 {
		return fmt.Errorf("invalid chunk request: offset %d, length %d", req.Offset, req.Length)
	}
	if int64(len(buf)) != req.Length {
		return fmt.Errorf("buffer size %d does not match requested length %d", len(buf), req.Length)
	}

	log := c.log.With().Str("operation", "fetch").Str("url", req.Locator).Str("range", req.RangeHeader()).Logger()
	log.Debug().Msg("fetch start")
	statusCode := -1
	s := time.Now()
	defer func() {
		log.Debug().Int("status", statusCode).Dur("duration", time.Since(s)).Msg("fetch stop")
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.Locator, nil)
	if err != nil {
		return fmt.Errorf("create fetch request for %s: %w", req.Locator, err)
	}
	httpReq.Header.Set("Range", req.RangeHeader())
	// Identity encoding keeps the declared length equal to the raw byte count.
	httpReq.Header.Set("Accept-Encoding", "identity")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		log.Error().Err(err).Msg("fetch error")
		return fmt.Errorf("fetch %s: %w", req.Locator, err)
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	if resp.StatusCode != http.StatusPartialContent {
		err := &StatusError{Status: resp.StatusCode, Want: http.StatusPartialContent}
		log.Error().Err(err).Msg("fetch error")
		return err
	}

	n, err := responseLength(resp)
	if err != nil {
		log.Error().Err(err).Msg("fetch error")
		return err
	}
	if n != req.Length {
		err := &LengthMismatchError{Want: req.Length, Got: n}
		log.Error().Err(err).Msg("fetch error")
		return err
	}

	if _, err := io.ReadFull(resp.Body, buf); err != nil {
		log.Error().Err(err).Msg("fetch error")
		return fmt.Errorf("read %s: %w", req.Locator, err)
	}

	metrics.Global.RecordFetch(httpReq.URL.Hostname(), "fetch", time.Since(s).Seconds(), req.Length)
	return nil
}

// responseLength determines the byte count of the response body, using
// the entity Content-Length when declared and the Content-Range header
// otherwise.
func responseLength(resp *http.Response) (int64, error) {
	if resp.ContentLength >= 0 {
		return resp.ContentLength, nil
	}
	return contentRangeLength(resp.Header.Get("Content-Range"))
}

// contentRangeLength parses a header of the form "bytes <start>-<end>/<total>"
// and returns end - start + 1. Only the "bytes" unit is supported.
func contentRangeLength(contentRange string) (int64, error) {
	if !strings.HasPrefix(contentRange, "bytes") {
		return 0, &ContentRangeError{Header: contentRange}
	}

	value := strings.TrimSpace(strings.TrimPrefix(contentRange, "bytes"))
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return 0, &ContentRangeError{Header: contentRange}
	}

	bounds := strings.Split(parts[0], "-")
	if len(bounds) != 2 {
		return 0, &ContentRangeError{Header: contentRange}
	}

	start, err := strconv.ParseInt(bounds[0], 10, 64)
	if err != nil {
		return 0, &ContentRangeError{Header: contentRange}
	}
	end, err := strconv.ParseInt(bounds[1], 10, 64)
	if err != nil {
		return 0, &ContentRangeError{Header: contentRange}
	}

	return 1 + end - start, nil
}
