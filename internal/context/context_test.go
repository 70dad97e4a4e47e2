// Copyright (c) The lazyfile Authors.
// Licensed under the MIT License.
package context

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestFillCorrelationId(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req, err := http.NewRequest("GET", "http://127.0.0.1/files/abc", nil)
	if err != nil {
		t.Fatal(err)
	}
	c.Request = req

	FillCorrelationId(c)
	got := c.GetString(CorrelationIdCtxKey)
	if got == "" {
		t.Fatal("expected a generated correlation id")
	}

	// An inbound id is preserved.
	req.Header.Set(CorrelationHeaderKey, "inbound-id")
	FillCorrelationId(c)
	if got := c.GetString(CorrelationIdCtxKey); got != "inbound-id" {
		t.Errorf("expected inbound-id, got %s", got)
	}
}

func TestFileKey(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = []gin.Param{{Key: "key", Value: "/http://host/data.bin"}}

	if got := FileKey(c); got != "http://host/data.bin" {
		t.Errorf("expected key without leading slash, got %s", got)
	}
}
