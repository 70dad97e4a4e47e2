// Copyright (c) The lazyfile Authors.
// Licensed under the MIT License.
package context

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Context keys.
const (
	CorrelationIdCtxKey = "correlation_id"
	FileKeyCtxKey       = "file_key"
	LoggerCtxKey        = "logger"
)

// CorrelationHeaderKey carries the correlation id on responses.
const CorrelationHeaderKey = "X-Lazyfile-CorrelationId"

// FillCorrelationId ensures the request has a correlation id.
func FillCorrelationId(c *gin.Context) {
	correlationId := c.Request.Header.Get(CorrelationHeaderKey)
	if correlationId == "" {
		correlationId = uuid.New().String()
	}
	c.Set(CorrelationIdCtxKey, correlationId)
}

// Logger gets the logger with request specific fields.
func Logger(c *gin.Context) zerolog.Logger {
	var l zerolog.Logger
	obj, ok := c.Get(LoggerCtxKey)
	if !ok {
		fmt.Println("WARN: logger not found in context")
		l = zerolog.Nop()
	} else {
		ctxLog := obj.(*zerolog.Logger)
		l = *ctxLog
	}

	return l.With().Str("correlationid", c.GetString(CorrelationIdCtxKey)).Str("url", c.Request.URL.String()).Str("range", c.Request.Header.Get("Range")).Str("ip", c.ClientIP()).Logger()
}

// FileKey extracts the registry key from the request path.
func FileKey(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("key"), "/")
}
