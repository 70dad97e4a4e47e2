// Copyright (c) The lazyfile Authors.
// Licensed under the MIT License.
package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProbeTruthTable(t *testing.T) {
	cases := []struct {
		name          string
		acceptRanges  string
		contentLength string
		supported     bool
		length        int64
	}{
		{"ranges and length", "bytes", "500", true, 500},
		{"case insensitive token", "BYTES", "500", true, 500},
		{"no range support", "none", "500", false, 0},
		{"missing accept-ranges", "", "500", false, 0},
		{"missing content-length", "bytes", "", false, 0},
		{"unparseable content-length", "bytes", "many", false, 0},
		{"zero length resource", "bytes", "0", true, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodHead {
					t.Errorf("expected HEAD, got %s", r.Method)
				}
				if c.acceptRanges != "" {
					w.Header().Set("Accept-Ranges", c.acceptRanges)
				}
				if c.contentLength != "" {
					w.Header().Set("Content-Length", c.contentLength)
				}
			}))
			defer svr.Close()

			res, err := testClient().Probe(context.Background(), svr.URL)
			if err != nil {
				t.Fatal(err)
			}
			if res.SupportsRange != c.supported {
				t.Errorf("expected SupportsRange=%v, got %v", c.supported, res.SupportsRange)
			}
			if res.SupportsRange && res.Length != c.length {
				t.Errorf("expected length %d, got %d", c.length, res.Length)
			}
		})
	}
}

func TestProbeIgnoresStatus(t *testing.T) {
	// Only the negotiation headers are consulted, not the status code.
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Accept-Ranges", "bytes")
		w.Header().Set("Content-Length", "123")
		w.WriteHeader(http.StatusForbidden)
	}))
	defer svr.Close()

	res, err := testClient().Probe(context.Background(), svr.URL)
	if err != nil {
		t.Fatal(err)
	}
	if !res.SupportsRange || res.Length != 123 {
		t.Errorf("expected supported with length 123, got %+v", res)
	}
}

func TestProbeCommunicationFailure(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	svr.Close()

	if _, err := testClient().Probe(context.Background(), svr.URL); err == nil {
		t.Fatal("expected error for unreachable origin")
	}
}
