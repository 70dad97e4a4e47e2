// Copyright (c) The lazyfile Authors.
// Licensed under the MIT License.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dataplane-io/lazyfile/internal/metrics"
)

// Probe tests whether the resource at locator can be read with range
// requests. It issues a HEAD request and inspects the Accept-Ranges and
// Content-Length response headers; no body is transferred. Range support
// is declared only if Accept-Ranges equals "bytes" (case-insensitive) and
// Content-Length parses as a non-negative integer. Every other header
// combination is a negotiated "unsupported" outcome, not an error.
func (c *Client) Probe(ctx context.Context, locator string) (ProbeResult, error) {
	log := c.log.With().Str("operation", "probe").Str("url", locator).Logger()
	log.Debug().Msg("probe start")

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, locator, nil)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("create probe request for %s: %w", locator, err)
	}

	s := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("probe error")
		return ProbeResult{}, fmt.Errorf("probe %s: %w", locator, err)
	}
	defer resp.Body.Close()

	res := probeResult(resp)

	outcome := "unsupported"
	if res.SupportsRange {
		outcome = "supported"
	}
	metrics.Global.RecordProbe(req.URL.Hostname(), outcome, time.Since(s).Seconds())
	log.Debug().Bool("ranges", res.SupportsRange).Int64("length", res.Length).Msg("probe stop")

	return res, nil
}

// probeResult reads the negotiation headers off a probe response.
func probeResult(resp *http.Response) ProbeResult {
	acceptRanges := resp.Header.Get("Accept-Ranges")
	if !strings.EqualFold(acceptRanges, "bytes") {
		return ProbeResult{}
	}

	contentLength := resp.Header.Get("Content-Length")
	if contentLength == "" {
		return ProbeResult{}
	}

	length, err := strconv.ParseInt(contentLength, 10, 64)
	if err != nil || length < 0 {
		return ProbeResult{}
	}

	return ProbeResult{SupportsRange: true, Length: length}
}
