package taskcache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"slidespeaker/internal/logging"
)

// defaultStaleTime mirrors the dashboard's 30s staleness horizon: a fetch
// within this window returns the cached value without touching the backend.
const defaultStaleTime = 30 * time.Second

// FetchFunc loads the value for one key from the backend.
type FetchFunc func(ctx context.Context) (any, error)

// Store is the shared reactive cache. All methods are safe for concurrent
// use; one Store serves every view in the process.
type Store struct {
	staleTime time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu       sync.Mutex
	entries  map[Key]Entry
	inflight map[Key]*inflightFetch
	mutation map[Key]*sync.Mutex
	visible  bool
	wake     chan struct{}
}

type inflightFetch struct {
	done chan struct{}
	data any
	err  error
}

// Option configures a Store.
type Option func(*Store)

// WithStaleTime overrides the staleness horizon.
func WithStaleTime(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.staleTime = d
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger attaches a logger for fetch and eviction diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logging.NewComponentLogger(logger, "taskcache")
		}
	}
}

// NewStore builds an empty cache. It starts visible.
func NewStore(opts ...Option) *Store {
	s := &Store{
		staleTime: defaultStaleTime,
		now:       time.Now,
		logger:    logging.NewNop(),
		entries:   make(map[Key]Entry),
		inflight:  make(map[Key]*inflightFetch),
		mutation:  make(map[Key]*sync.Mutex),
		visible:   true,
		wake:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the cached entry for a key, if present.
func (s *Store) Get(key Key) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	return entry, ok
}

// Set writes a value directly, stamping it fresh. Used by mutations and by
// prefetch paths that already hold the value.
func (s *Store) Set(key Key, data any) {
	s.mu.Lock()
	s.entries[key] = Entry{Key: key, Data: data, FetchedAt: s.now()}
	s.mu.Unlock()
	s.broadcast()
}

// Remove drops a key outright.
func (s *Store) Remove(key Key) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	s.broadcast()
}

// Fetch returns the value for a key, reusing the cached copy while fresh and
// joining any in-flight fetch for the same key. On fetch failure the cached
// entry keeps its last-known-good value, loses any stale mark (the attempt
// consumed it), and the error surfaces to the caller.
func (s *Store) Fetch(ctx context.Context, key Key, fn FetchFunc) (any, error) {
	s.mu.Lock()
	if entry, ok := s.entries[key]; ok && !entry.Stale && s.now().Sub(entry.FetchedAt) < s.staleTime {
		s.mu.Unlock()
		return entry.Data, nil
	}
	if fl, ok := s.inflight[key]; ok {
		s.mu.Unlock()
		select {
		case <-fl.done:
			return fl.data, fl.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	fl := &inflightFetch{done: make(chan struct{})}
	s.inflight[key] = fl
	s.mu.Unlock()

	data, err := fn(ctx)

	s.mu.Lock()
	delete(s.inflight, key)
	if err == nil {
		s.entries[key] = Entry{Key: key, Data: data, FetchedAt: s.now()}
	} else if entry, ok := s.entries[key]; ok && entry.Stale {
		// This attempt consumed the invalidation. Leaving the flag set would
		// re-arm every subscriber immediately and turn a failing poll into a
		// tight loop against the backend.
		entry.Stale = false
		s.entries[key] = entry
	}
	s.mu.Unlock()

	fl.data, fl.err = data, err
	close(fl.done)
	if err == nil {
		s.broadcast()
	} else {
		s.logger.Debug("fetch failed, keeping last known value",
			logging.String("kind", string(key.Kind)),
			logging.String("id", key.ID),
			logging.Error(err))
	}
	return data, err
}

// Refetch forces a fetch regardless of freshness, still de-duplicating
// against concurrent fetches for the same key.
func (s *Store) Refetch(ctx context.Context, key Key, fn FetchFunc) (any, error) {
	s.Invalidate(key)
	return s.Fetch(ctx, key, fn)
}

// Invalidate marks a key stale so the next Fetch hits the backend.
func (s *Store) Invalidate(key Key) {
	s.mu.Lock()
	if entry, ok := s.entries[key]; ok {
		entry.Stale = true
		s.entries[key] = entry
	}
	s.mu.Unlock()
	s.broadcast()
}

// InvalidateMatching marks every key accepted by the predicate stale.
func (s *Store) InvalidateMatching(match func(Key) bool) {
	s.mu.Lock()
	for key, entry := range s.entries {
		if match(key) {
			entry.Stale = true
			s.entries[key] = entry
		}
	}
	s.mu.Unlock()
	s.broadcast()
}

// KeysMatching returns the keys currently cached that the predicate accepts.
func (s *Store) KeysMatching(match func(Key) bool) []Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []Key
	for key := range s.entries {
		if match(key) {
			keys = append(keys, key)
		}
	}
	return keys
}

// Len reports the number of cached entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// SetVisible gates polling. While the store is not visible, subscriptions
// hold their timers; marking it visible again wakes them immediately.
func (s *Store) SetVisible(visible bool) {
	s.mu.Lock()
	changed := s.visible != visible
	s.visible = visible
	s.mu.Unlock()
	if changed {
		s.broadcast()
	}
}

// Visible reports whether polling is currently allowed.
func (s *Store) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Evict removes entries older than maxAge that the predicate accepts and
// returns how many were dropped. Entries without a predicate match, and
// entries still inside the age window, are left untouched.
func (s *Store) Evict(maxAge time.Duration, match func(Key) bool) int {
	cutoff := s.now().Add(-maxAge)
	s.mu.Lock()
	removed := 0
	for key, entry := range s.entries {
		if match != nil && !match(key) {
			continue
		}
		if entry.FetchedAt.Before(cutoff) {
			delete(s.entries, key)
			removed++
		}
	}
	s.mu.Unlock()
	if removed > 0 {
		s.logger.Debug("evicted cache entries", logging.Int("count", removed))
	}
	return removed
}

// broadcast wakes everything blocked on cache state: pollers waiting out a
// pause, watchers waiting for changes.
func (s *Store) broadcast() {
	s.mu.Lock()
	close(s.wake)
	s.wake = make(chan struct{})
	s.mu.Unlock()
}

func (s *Store) wakeChan() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wake
}
