package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage provides the local cookie jar used as a credential source.

// CookieJar stores named credential values with an optional expiry.
type CookieJar interface {
	Close() error
	// Get returns the value for name; ok is false when absent or expired.
	Get(name string) (value string, ok bool, err error)
	// Set stores value under name. A ttl <= 0 stores a session entry that never expires.
	Set(name, value string, ttl time.Duration) error
	Delete(name string) error
}

// Options controls retention characteristics for concrete jar implementations.
type Options struct {
	CleanupInterval time.Duration
}

const defaultCleanupInterval = 12 * time.Hour

// NewCookieJar creates the configured storage backend.
func NewCookieJar(typ, path string, opts Options) (CookieJar, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopJar{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt cookie jar requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported cookie jar type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopJar struct{}

func (noopJar) Close() error                            { return nil }
func (noopJar) Get(string) (string, bool, error)        { return "", false, nil }
func (noopJar) Set(string, string, time.Duration) error { return nil }
func (noopJar) Delete(string) error                     { return nil }
