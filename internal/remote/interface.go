// Copyright (c) The lazyfile Authors.
// Licensed under the MIT License.
package remote

import (
	"context"
	"fmt"
)

// ProbeResult is the outcome of a range capability probe.
// Length is only valid when SupportsRange is true.
type ProbeResult struct {
	SupportsRange bool
	Length        int64
}

// ChunkRequest identifies one byte range of a remote resource.
type ChunkRequest struct {
	Locator string
	Offset  int64
	Length  int64
}

// RangeHeader returns the HTTP Range header value for this request.
// The end index is inclusive.
func (r ChunkRequest) RangeHeader() string {
	return fmt.Sprintf("bytes=%d-%d", r.Offset, r.Offset+r.Length-1)
}

// Prober determines whether an origin can serve byte-range reads.
type Prober interface {
	// Probe issues a metadata-only request to locator. A negotiated
	// "no range support" outcome is not an error; only communication
	// failures are.
	Probe(ctx context.Context, locator string) (ProbeResult, error)
}

// Fetcher reads single chunks of a remote resource.
type Fetcher interface {
	// Fetch fills buf with exactly the requested byte range, or fails.
	Fetch(ctx context.Context, req ChunkRequest, buf []byte) error
}

// StatusError reports a response status other than the one required
// by the protocol.
type StatusError struct {
	Status int
	Want   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response status: %d (want %d)", e.Status, e.Want)
}

// LengthMismatchError reports an origin that served a different amount
// of data than was asked for.
type LengthMismatchError struct {
	Want int64
	Got  int64
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("received incorrect amount of data: expected %dB, received %dB", e.Want, e.Got)
}

// ContentRangeError reports a missing or malformed Content-Range header.
type ContentRangeError struct {
	Header string
}

func (e *ContentRangeError) Error() string {
	return fmt.Sprintf("unable to determine response length from Content-Range %q", e.Header)
}
