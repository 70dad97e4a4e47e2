// Copyright (c) The lazyfile Authors.
// Licensed under the MIT License.

// Package config holds the process configuration for the HTTP backend.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/docker/go-units"
	"github.com/pelletier/go-toml/v2"
)

// LazyLoadEnvVar toggles lazy loading at runtime. It is consulted on
// every import call, so flipping it between calls takes effect
// immediately. It overrides the config file.
const LazyLoadEnvVar = "LAZYFILE_HTTP_LAZY_LOAD"

// Config is the on-disk configuration.
type Config struct {
	HTTP HTTPConfig `toml:"http"`
}

// HTTPConfig configures the HTTP backend.
type HTTPConfig struct {
	// LazyLoad enables lazy registration of range-capable origins.
	// Unset means enabled.
	LazyLoad *bool `toml:"lazy_load"`

	// ConnectTimeout bounds dialing the origin, in Go duration syntax,
	// e.g. "5s". Empty means the transport default.
	ConnectTimeout string `toml:"connect_timeout"`

	// ResponseTimeout bounds a single probe or fetch, in Go duration
	// syntax, e.g. "30s". Empty means the transport default.
	ResponseTimeout string `toml:"response_timeout"`

	// ChunkSize is the virtual file chunk size in bytes. Zero means the
	// built-in default.
	ChunkSize int64 `toml:"chunk_size"`

	// CacheSize is the in-memory chunk cache budget in human readable
	// form, e.g. "256MiB". Empty disables the cache.
	CacheSize string `toml:"cache_size"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{}
}

// Load reads a TOML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	c := &Config{}
	if err := toml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if c.HTTP.ChunkSize < 0 {
		return nil, fmt.Errorf("parse config %s: negative chunk_size", path)
	}
	if _, err := c.Timeout(); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if _, err := c.DialTimeout(); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if _, err := c.CacheBytes(); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return c, nil
}

// LazyLoadEnabled reports whether lazy loading is on. The environment
// variable wins over the file value; the default is enabled. It is
// deliberately re-read on every call rather than cached.
func (c *Config) LazyLoadEnabled() bool {
	if v, ok := os.LookupEnv(LazyLoadEnvVar); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	if c.HTTP.LazyLoad != nil {
		return *c.HTTP.LazyLoad
	}
	return true
}

// CacheBytes returns the chunk cache budget in bytes, zero if unset.
func (c *Config) CacheBytes() (int64, error) {
	if c.HTTP.CacheSize == "" {
		return 0, nil
	}
	return units.RAMInBytes(c.HTTP.CacheSize)
}

// Timeout returns the configured response timeout, zero if unset.
func (c *Config) Timeout() (time.Duration, error) {
	if c.HTTP.ResponseTimeout == "" {
		return 0, nil
	}
	return time.ParseDuration(c.HTTP.ResponseTimeout)
}

// DialTimeout returns the configured connect timeout, zero if unset.
func (c *Config) DialTimeout() (time.Duration, error) {
	if c.HTTP.ConnectTimeout == "" {
		return 0, nil
	}
	return time.ParseDuration(c.HTTP.ConnectTimeout)
}
