// Copyright (c) The lazyfile Authors.
// Licensed under the MIT License.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	appcontext "github.com/dataplane-io/lazyfile/internal/context"
	filesHandler "github.com/dataplane-io/lazyfile/internal/handlers/files"
	"github.com/dataplane-io/lazyfile/internal/store"
)

// Handler creates the HTTP handler serving registered virtual files.
func Handler(ctx context.Context, s *store.Store) (http.Handler, error) {
	fh := filesHandler.New(ctx, s)

	engine := newEngine(ctx)
	registerRoutes(engine, fh.Handle)

	return engine, nil
}

// newEngine creates a new gin engine.
func newEngine(ctx context.Context) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	baseLog := zerolog.Ctx(ctx)

	engine.Use(func(c *gin.Context) {
		appcontext.FillCorrelationId(c)
		c.Set(appcontext.LoggerCtxKey, baseLog)

		l := appcontext.Logger(c)
		l.Debug().Msg("request start")
		s := time.Now()

		c.Next()

		status := c.Writer.Status()
		event := l.Info()
		if status >= 400 && status < 500 {
			event = l.Warn()
		} else if status >= 500 {
			event = l.Error()
		}

		if c.Errors != nil {
			errs := []error{}
			for _, e := range c.Errors {
				errs = append(errs, e.Err)
			}
			event = event.Errs("error", errs)
		}

		event.Dur("duration", time.Since(s)).Str("method", c.Request.Method).Int("status", status).Msg("request served")
	})

	engine.Use(gin.Recovery())
	return engine
}

// registerRoutes registers the routes for the HTTP server.
func registerRoutes(engine *gin.Engine, f gin.HandlerFunc) {
	engine.HEAD("/files/*key", f)
	engine.GET("/files/*key", f)

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
