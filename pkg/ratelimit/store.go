package ratelimit

import (
	"context"
	"time"
)

// Store is the shared counting backend for the sliding-window log.
//
// Implementations must make Slide atomic per key: two concurrent calls
// for the same key must not both observe a count below the limit when
// only one slot remains. The Redis implementation achieves this with a
// Lua script; the in-memory implementation with per-key locking.
type Store interface {
	// Slide performs the compound window operation for key:
	//
	//  1. remove entries with timestamps before now-window
	//  2. count the surviving entries
	//  3. if count < max, append an entry at now and set the key's
	//     expiry to window
	//
	// It returns the surviving count from step 2 (not including any
	// entry appended in step 3) and the oldest surviving entry's
	// timestamp. oldest is the zero time when the window is empty.
	Slide(ctx context.Context, key string, now time.Time, window time.Duration, max int) (count int, oldest time.Time, err error)

	// Close releases resources held by the store.
	Close() error
}
