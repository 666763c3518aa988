package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with in-process timestamp logs.
//
// Each key owns its own mutex, so the prune/count/append compound is
// atomic per key without serializing unrelated keys. MemoryStore is
// suitable for tests and single-process deployments; it cannot provide
// cross-process limits.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
}

// memoryWindow holds one key's entry log.
type memoryWindow struct {
	mu      sync.Mutex
	entries []time.Time

	// expiresAt mirrors the Redis key TTL: the whole window is dropped
	// by the janitor once it passes.
	expiresAt time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*memoryWindow),
	}
}

// Slide implements Store.
func (s *MemoryStore) Slide(_ context.Context, key string, now time.Time, window time.Duration, max int) (int, time.Time, error) {
	w := s.window(key)

	w.mu.Lock()
	defer w.mu.Unlock()

	// Prune entries older than the trailing window.
	cutoff := now.Add(-window)
	kept := w.entries[:0]
	for _, ts := range w.entries {
		if !ts.Before(cutoff) {
			kept = append(kept, ts)
		}
	}
	w.entries = kept

	count := len(w.entries)

	// Entries are appended in call order, which is only near-sorted
	// under concurrency, so scan for the true minimum.
	var oldest time.Time
	for _, ts := range w.entries {
		if oldest.IsZero() || ts.Before(oldest) {
			oldest = ts
		}
	}

	if count < max {
		w.entries = append(w.entries, now)
		w.expiresAt = now.Add(window)
	}

	return count, oldest, nil
}

// Sweep drops keys whose TTL has passed. Intended to be called
// periodically (the service schedules it on its cron runner). Returns
// the number of keys removed.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, w := range s.windows {
		w.mu.Lock()
		expired := !w.expiresAt.IsZero() && now.After(w.expiresAt)
		w.mu.Unlock()

		if expired {
			delete(s.windows, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// Close implements Store. MemoryStore holds no external resources.
func (s *MemoryStore) Close() error {
	return nil
}

// window returns the window for key, creating it if needed.
func (s *MemoryStore) window(key string) *memoryWindow {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok {
		w = &memoryWindow{}
		s.windows[key] = w
	}
	return w
}
