// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists whole-document JSON caches with atomic
// replacement. Each engine component owns exactly one cache file;
// staleness is decided at the call site against the stored build time.
// Implements: docs/ARCHITECTURE § Caching.
package cache

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// envelope wraps the cached value with its build timestamp.
type envelope[T any] struct {
	BuiltAt time.Time `json:"built_at"`
	Value   *T        `json:"value"`
}

// Handle manages one component's cache file on an injected filesystem.
// The zero value is not usable; construct with New.
type Handle[T any] struct {
	fs   afero.Fs
	path string
}

// New returns a handle for the cache file at path. The file need not
// exist yet.
func New[T any](fsys afero.Fs, path string) *Handle[T] {
	return &Handle[T]{fs: fsys, path: path}
}

// Path returns the cache file location.
func (h *Handle[T]) Path() string {
	return h.path
}

// Load reads the cache. A missing, unreadable, or malformed file is a
// cache miss (ok=false), never an error: the caller rebuilds.
func (h *Handle[T]) Load() (value *T, builtAt time.Time, ok bool) {
	data, err := afero.ReadFile(h.fs, h.path)
	if err != nil {
		return nil, time.Time{}, false
	}

	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil || env.Value == nil {
		return nil, time.Time{}, false
	}

	return env.Value, env.BuiltAt, true
}

// Fresh reports whether a cache exists and was built within maxAge.
func (h *Handle[T]) Fresh(maxAge time.Duration) bool {
	_, builtAt, ok := h.Load()
	return ok && time.Since(builtAt) <= maxAge
}

// Store writes the cache atomically: the full document goes to a
// temporary file in the same directory, then renames over the previous
// cache so a concurrent reader never observes a partial write.
func (h *Handle[T]) Store(value *T, builtAt time.Time) error {
	if err := h.fs.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	env := envelope[T]{BuiltAt: builtAt, Value: value}
	data, err := json.MarshalIndent(&env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	tmp, err := afero.TempFile(h.fs, filepath.Dir(h.path), filepath.Base(h.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		h.fs.Remove(tmpPath)
		return fmt.Errorf("writing temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		h.fs.Remove(tmpPath)
		return fmt.Errorf("closing temp cache file: %w", err)
	}

	if err := h.fs.Rename(tmpPath, h.path); err != nil {
		h.fs.Remove(tmpPath)
		return fmt.Errorf("replacing cache file: %w", err)
	}
	return nil
}
