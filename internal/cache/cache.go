//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cache stores completed responses for a bounded time.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Defaults used when a zero duration is configured.
const (
	DefaultTTL             = 15 * time.Minute
	DefaultCleanupInterval = 5 * time.Minute
)

// Cache is a concurrent key/value store with per-entry expiry. Values are
// opaque bytes; callers serialize their own results.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
}

// Memory is an in-process Cache. Concurrent writers to one key are
// last-writer-wins.
type Memory struct {
	items *gocache.Cache
	ttl   time.Duration
}

// NewMemory creates a cache whose entries expire after ttl unless Set is
// given a shorter one. Expired entries are purged every cleanup interval.
func NewMemory(ttl, cleanup time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if cleanup <= 0 {
		cleanup = DefaultCleanupInterval
	}
	return &Memory{items: gocache.New(ttl, cleanup), ttl: ttl}
}

// Get returns a copy of the value stored under key.
func (m *Memory) Get(key string) ([]byte, bool) {
	v, ok := m.items.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), b...), true
}

// Set stores a copy of value. Every entry expires: a non-positive ttl,
// or one above the cache TTL, uses the cache TTL.
func (m *Memory) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 || ttl > m.ttl {
		ttl = m.ttl
	}
	m.items.Set(key, append([]byte(nil), value...), ttl)
}

// Len returns the number of entries, including expired ones not yet
// purged.
func (m *Memory) Len() int {
	return m.items.ItemCount()
}

// Flush removes every entry.
func (m *Memory) Flush() {
	m.items.Flush()
}

// Key derives a stable key from a namespace and any JSON-serializable
// value.
func Key(namespace string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to derive cache key: %w", err)
	}
	sum := sha256.Sum256(append([]byte(namespace+"\x00"), data...))
	return namespace + ":" + hex.EncodeToString(sum[:]), nil
}

// GetJSON decodes the value stored under key into a T.
func GetJSON[T any](c Cache, key string) (T, bool) {
	var out T
	data, ok := c.Get(key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, false
	}
	return out, true
}

// SetJSON stores v as JSON under key.
func SetJSON(c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	c.Set(key, data, ttl)
	return nil
}
