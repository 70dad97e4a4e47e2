// Copyright (c) The lazyfile Authors.
// Licensed under the MIT License.
package remote

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testClient() *Client {
	return NewClient(Options{}, zerolog.Nop())
}

func TestRangeHeader(t *testing.T) {
	cases := []struct {
		offset, length int64
		want           string
	}{
		{0, 1, "bytes=0-0"},
		{200, 300, "bytes=200-499"},
		{1024, 1024, "bytes=1024-2047"},
	}

	for _, c := range cases {
		req := ChunkRequest{Locator: "http://host/data.bin", Offset: c.offset, Length: c.length}
		got := req.RangeHeader()
		if got != c.want {
			t.Errorf("RangeHeader(%d, %d) = %s, want %s", c.offset, c.length, got, c.want)
		}

		// The header must round-trip through the Content-Range length formula.
		rt, err := contentRangeLength(fmt.Sprintf("bytes %d-%d/*", c.offset, c.offset+c.length-1))
		if err != nil {
			t.Errorf("round-trip parse failed for %s: %v", got, err)
		} else if rt != c.length {
			t.Errorf("round-trip length = %d, want %d", rt, c.length)
		}
	}
}

func TestContentRangeLength(t *testing.T) {
	cases := []struct {
		header string
		want   int64
		ok     bool
	}{
		{"bytes 100-199/1000", 100, true},
		{"bytes 0-0/1", 1, true},
		{"bytes 200-499/*", 300, true},
		{"bytes 100/1000", 0, false},
		{"bytes */1000", 0, false},
		{"items 100-199/1000", 0, false},
		{"bytes 100-199", 0, false},
		{"bytes a-b/1000", 0, false},
		{"", 0, false},
	}

	for _, c := range cases {
		got, err := contentRangeLength(c.header)
		if c.ok {
			if err != nil {
				t.Errorf("contentRangeLength(%q) error: %v", c.header, err)
			} else if got != c.want {
				t.Errorf("contentRangeLength(%q) = %d, want %d", c.header, got, c.want)
			}
		} else if err == nil {
			t.Errorf("contentRangeLength(%q) expected error, got %d", c.header, got)
		}

		var cre *ContentRangeError
		if !c.ok && !errors.As(err, &cre) {
			t.Errorf("contentRangeLength(%q) expected ContentRangeError, got %T", c.header, err)
		}
	}
}

func TestFetch(t *testing.T) {
	payload := make([]byte, 1000)
	if _, err := rand.Read(payload); err != nil {
		t.Fatal(err)
	}

	var gotRange string
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRange = r.Header.Get("Range")
		http.ServeContent(w, r, "data.bin", time.Time{}, bytes.NewReader(payload))
	}))
	defer svr.Close()

	c := testClient()
	buf := make([]byte, 300)

	err := c.Fetch(context.Background(), ChunkRequest{Locator: svr.URL + "/data.bin", Offset: 200, Length: 300}, buf)
	if err != nil {
		t.Fatal(err)
	}
	if gotRange != "bytes=200-499" {
		t.Errorf("expected Range bytes=200-499, got %s", gotRange)
	}
	if !bytes.Equal(buf, payload[200:500]) {
		t.Errorf("fetched bytes do not match origin data")
	}
}

func TestFetchRejectsNonPartialContent(t *testing.T) {
	payload := []byte("full response body, not a range")
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Origin ignores the Range header and serves the whole resource.
		// nolint:errcheck
		w.Write(payload)
	}))
	defer svr.Close()

	c := testClient()
	buf := make([]byte, 10)

	err := c.Fetch(context.Background(), ChunkRequest{Locator: svr.URL, Offset: 0, Length: 10}, buf)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Status != http.StatusOK {
		t.Errorf("expected status 200 in error, got %d", se.Status)
	}
	if !bytes.Equal(buf, make([]byte, 10)) {
		t.Errorf("buffer must not be written on a failed fetch")
	}
}

func TestFetchRejectsLengthMismatch(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "200")
		w.Header().Set("Content-Range", "bytes 0-199/1000")
		w.WriteHeader(http.StatusPartialContent)
		// nolint:errcheck
		w.Write(make([]byte, 200))
	}))
	defer svr.Close()

	c := testClient()
	buf := make([]byte, 300)

	err := c.Fetch(context.Background(), ChunkRequest{Locator: svr.URL, Offset: 0, Length: 300}, buf)
	var lme *LengthMismatchError
	if !errors.As(err, &lme) {
		t.Fatalf("expected LengthMismatchError, got %v", err)
	}
	if lme.Want != 300 || lme.Got != 200 {
		t.Errorf("expected mismatch 300/200, got %d/%d", lme.Want, lme.Got)
	}
	if !bytes.Equal(buf, make([]byte, 300)) {
		t.Errorf("buffer must not be written before the length check")
	}
}

func TestFetchContentRangeFallback(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Range", "bytes 100-199/1000")
		w.WriteHeader(http.StatusPartialContent)
		// nolint:errcheck
		w.Write(make([]byte, 100))
		// Flush before returning so no Content-Length is synthesized.
		w.(http.Flusher).Flush()
	}))
	defer svr.Close()

	c := testClient()
	buf := make([]byte, 100)

	if err := c.Fetch(context.Background(), ChunkRequest{Locator: svr.URL, Offset: 100, Length: 100}, buf); err != nil {
		t.Fatal(err)
	}
}

func TestFetchRejectsMalformedContentRange(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Range", "bytes 100/1000")
		w.WriteHeader(http.StatusPartialContent)
		// nolint:errcheck
		w.Write(make([]byte, 100))
		w.(http.Flusher).Flush()
	}))
	defer svr.Close()

	c := testClient()
	buf := make([]byte, 100)

	err := c.Fetch(context.Background(), ChunkRequest{Locator: svr.URL, Offset: 100, Length: 100}, buf)
	var cre *ContentRangeError
	if !errors.As(err, &cre) {
		t.Fatalf("expected ContentRangeError, got %v", err)
	}
}

func TestFetchShortRead(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "300")
		w.Header().Set("Content-Range", "bytes 0-299/1000")
		w.WriteHeader(http.StatusPartialContent)
		// Origin dies mid-body.
		// nolint:errcheck
		w.Write(make([]byte, 100))
	}))
	defer svr.Close()

	c := testClient()
	buf := make([]byte, 300)

	if err := c.Fetch(context.Background(), ChunkRequest{Locator: svr.URL, Offset: 0, Length: 300}, buf); err == nil {
		t.Fatal("expected error on truncated body")
	}
}

func TestFetchValidatesRequest(t *testing.T) {
	c := testClient()

	if err := c.Fetch(context.Background(), ChunkRequest{Locator: "http://host", Offset: -1, Length: 10}, make([]byte, 10)); err == nil {
		t.Error("expected error for negative offset")
	}
	if err := c.Fetch(context.Background(), ChunkRequest{Locator: "http://host", Offset: 0, Length: 0}, nil); err == nil {
		t.Error("expected error for zero length")
	}
	if err := c.Fetch(context.Background(), ChunkRequest{Locator: "http://host", Offset: 0, Length: 10}, make([]byte, 5)); err == nil {
		t.Error("expected error for undersized buffer")
	}
}
