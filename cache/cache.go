// Copyright 2025 The ai-tutorial-gen Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package cache

import (
	"encoding/json"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/dillycone/ai-tutorial-gen/core"
	"github.com/dillycone/ai-tutorial-gen/storage"
)

const (
	// DefaultTTL is how long an entry stays valid without regard to use.
	DefaultTTL = 24 * time.Hour

	// DefaultMaxEntries bounds the collection before LRU eviction.
	DefaultMaxEntries = 100
)

// Store is a TTL+LRU result cache persisted as JSONL. The zero value is not
// usable; construct with New or FromEnv.
type Store struct {
	path       string
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Store.
type Option func(*Store) error

// WithTTL sets the entry time-to-live. Non-positive values keep the default.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) error {
		if ttl > 0 {
			s.ttl = ttl
		}
		return nil
	}
}

// WithMaxEntries sets the LRU capacity. Non-positive values keep the default.
func WithMaxEntries(n int) Option {
	return func(s *Store) error {
		if n > 0 {
			s.maxEntries = n
		}
		return nil
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) error {
		if now != nil {
			s.now = now
		}
		return nil
	}
}

// WithLogger sets the logger used for degraded-path warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger != nil {
			s.logger = logger
		}
		return nil
	}
}

// New creates a cache store backed by the JSONL file at path.
func New(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, storage.ErrPathRequired
	}
	s := &Store{
		path:       path,
		ttl:        DefaultTTL,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// FromEnv builds a store from TUTORGEN_CACHE_PATH, TUTORGEN_CACHE_TTL_SECONDS,
// and TUTORGEN_CACHE_MAX, with defaults for anything unset.
func FromEnv(opts ...Option) (*Store, error) {
	path := storage.ResolvePath("TUTORGEN_CACHE_PATH", "optimizer_cache.jsonl")
	base := []Option{
		WithTTL(time.Duration(storage.EnvInt("TUTORGEN_CACHE_TTL_SECONDS", int(DefaultTTL/time.Second))) * time.Second),
		WithMaxEntries(storage.EnvInt("TUTORGEN_CACHE_MAX", DefaultMaxEntries)),
	}
	return New(path, append(base, opts...)...)
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Metadata describes a cache interaction; it is attached to emitted results.
type Metadata struct {
	Hit   bool    `json:"hit"`
	Key   string  `json:"key"`
	Ts    float64 `json:"ts"`
	AgeMs int64   `json:"ageMs"`
	Size  int     `json:"size"`
	TTLMs int64   `json:"ttlMs"`
}

// Lookup returns the cached result for key, if present and unexpired. A hit
// stamps the entry's last access time and persists it along with any
// pruning done on the way in. Read or write failures degrade to a miss.
func (s *Store) Lookup(key string) (json.RawMessage, Metadata, bool) {
	now := s.now()
	meta := Metadata{Key: key, Ts: core.UnixSeconds(now), TTLMs: s.ttl.Milliseconds()}

	entries, err := storage.ReadAll[core.CacheEntry](s.path)
	if err != nil {
		s.logger.Warn("cache read failed, treating as miss", "path", s.path, "err", err)
		return nil, meta, false
	}
	entries = s.evict(entries, now)

	for i := range entries {
		if entries[i].Key != key {
			continue
		}
		entries[i].LastAccess = core.UnixSeconds(now)
		if err := storage.RewriteAll(s.path, entries); err != nil {
			s.logger.Warn("cache access stamp not persisted", "path", s.path, "err", err)
		}
		meta.Hit = true
		meta.Ts = entries[i].Ts
		meta.AgeMs = ageMs(entries[i].Ts, now)
		meta.Size = len(entries)
		return entries[i].Result, meta, true
	}

	meta.Size = len(entries)
	return nil, meta, false
}

// Upsert stores a result under key, replacing any previous entry for the
// same key, then prunes and persists. Failures are logged and swallowed;
// the returned metadata describes the attempt either way.
func (s *Store) Upsert(key string, result json.RawMessage) Metadata {
	now := s.now()
	meta := Metadata{Key: key, Ts: core.UnixSeconds(now), TTLMs: s.ttl.Milliseconds()}

	entries, err := storage.ReadAll[core.CacheEntry](s.path)
	if err != nil {
		s.logger.Warn("cache read failed, starting fresh", "path", s.path, "err", err)
		entries = nil
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.Key != key {
			kept = append(kept, e)
		}
	}
	kept = append(kept, core.CacheEntry{
		Key:        key,
		Ts:         core.UnixSeconds(now),
		LastAccess: core.UnixSeconds(now),
		Result:     result,
	})
	kept = s.evict(kept, now)

	if err := storage.RewriteAll(s.path, kept); err != nil {
		s.logger.Warn("cache write failed", "path", s.path, "err", err)
	}
	meta.Size = len(kept)
	return meta
}

// Clear removes the backing file entirely.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// evict drops expired entries and, beyond capacity, the least recently used
// ones. Entries that were never read fall back to their insert time; ties
// keep insertion order.
func (s *Store) evict(entries []core.CacheEntry, now time.Time) []core.CacheEntry {
	nowSec := core.UnixSeconds(now)
	ttlSec := s.ttl.Seconds()

	kept := entries[:0]
	for _, e := range entries {
		ts := e.Ts
		if ts == 0 {
			ts = nowSec
		}
		if nowSec-ts <= ttlSec {
			kept = append(kept, e)
		}
	}

	if len(kept) > s.maxEntries {
		sort.SliceStable(kept, func(i, j int) bool {
			return accessTime(kept[i]) < accessTime(kept[j])
		})
		kept = kept[len(kept)-s.maxEntries:]
	}
	return kept
}

func accessTime(e core.CacheEntry) float64 {
	if e.LastAccess > 0 {
		return e.LastAccess
	}
	return e.Ts
}

func ageMs(ts float64, now time.Time) int64 {
	age := core.UnixSeconds(now) - ts
	if age < 0 {
		age = 0
	}
	return int64(age * 1000)
}
