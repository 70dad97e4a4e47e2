// Copyright (c) The lazyfile Authors.
// Licensed under the MIT License.
package remote

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Options configures a Client.
type Options struct {
	// Timeout bounds a whole request, connect through body read.
	// Zero means the transport default: no limit.
	Timeout time.Duration

	// Transport overrides the default transport. Optional.
	Transport http.RoundTripper
}

// Client issues range capability probes and chunk fetches against HTTP
// origins. Every call opens its own request scope and touches no shared
// mutable state, so a single Client is safe for concurrent use.
type Client struct {
	http *http.Client
	log  zerolog.Logger
}

var (
	_ Prober  = &Client{}
	_ Fetcher = &Client{}
)

// NewClient creates a new origin client.
func NewClient(opts Options, log zerolog.Logger) *Client {
	return &Client{
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: opts.Transport,
		},
		log: log,
	}
}
