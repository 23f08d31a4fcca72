// Package feedcache gives rate-limited source adapters a durable,
// time-bounded memory of their last successful fetch. Reads never fail
// (corrupt or missing files count as absence) and writes are best-effort,
// so caching can never break a fetch.
package feedcache

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Payload is one cached fetch result with its write time.
type Payload[T any] struct {
	Data     T         `json:"data"`
	CachedAt time.Time `json:"cachedAt"`
}

// Store persists one Payload per key as a JSON file under dir. Concurrent
// runs may clobber each other's writes; last writer wins.
type Store[T any] struct {
	dir string
	ttl time.Duration
	log *slog.Logger
}

// NewStore creates a file-backed cache with the given ttl.
func NewStore[T any](dir string, ttl time.Duration, log *slog.Logger) *Store[T] {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Store[T]{dir: dir, ttl: ttl, log: log}
}

// Read returns the cached payload for key, if one exists. An unreadable or
// corrupt file reads as absent.
func (s *Store[T]) Read(key string) (Payload[T], bool) {
	var payload Payload[T]

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return payload, false
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		s.log.Debug("discarding corrupt cache entry", slog.String("key", key), slog.Any("err", err))
		return Payload[T]{}, false
	}

	return payload, true
}

// Write persists data under key, overwriting any prior entry. Failures are
// logged and swallowed.
func (s *Store[T]) Write(key string, data T) {
	payload := Payload[T]{Data: data, CachedAt: time.Now().UTC()}

	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		s.log.Warn("marshal cache entry", slog.String("key", key), slog.Any("err", err))
		return
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.log.Warn("create cache dir", slog.String("dir", s.dir), slog.Any("err", err))
		return
	}

	if err := os.WriteFile(s.path(key), raw, 0o644); err != nil {
		s.log.Warn("write cache entry", slog.String("key", key), slog.Any("err", err))
	}
}

// Fresh reports whether the payload is still inside the ttl window and may
// short-circuit an upstream call.
func (s *Store[T]) Fresh(p Payload[T]) bool {
	return time.Since(p.CachedAt) < s.ttl
}

func (s *Store[T]) path(key string) string {
	return filepath.Join(s.dir, key+"_cache.json")
}
