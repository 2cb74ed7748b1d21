// Package cache is a process-local TTL cache in front of the market data providers.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store wraps go-cache. A zero or negative TTL disables caching.
type Store struct {
	c   *gocache.Cache
	ttl time.Duration
}

// New returns a Store whose entries live for ttl.
func New(ttl time.Duration) *Store {
	cleanup := 2 * ttl
	if ttl <= 0 {
		cleanup = time.Minute
	}
	return &Store{
		c:   gocache.New(ttl, cleanup),
		ttl: ttl,
	}
}

// Get returns the cached value for key.
func (s *Store) Get(key string) (any, bool) {
	if s.ttl <= 0 {
		return nil, false
	}
	return s.c.Get(key)
}

// Set stores value under key with the default TTL.
func (s *Store) Set(key string, value any) {
	if s.ttl <= 0 {
		return
	}
	s.c.Set(key, value, gocache.DefaultExpiration)
}

// Delete drops key.
func (s *Store) Delete(key string) {
	s.c.Delete(key)
}

// Flush drops every entry.
func (s *Store) Flush() {
	s.c.Flush()
}

// Len reports the number of entries, including expired ones not yet evicted.
func (s *Store) Len() int {
	return s.c.ItemCount()
}

// Remember returns the cached T under key or calls load and caches its result.
// Errors are not cached.
func Remember[T any](s *Store, key string, load func() (T, error)) (T, error) {
	if v, ok := s.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	s.Set(key, v)
	return v, nil
}
