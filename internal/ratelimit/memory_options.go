package ratelimit

import "time"

// MemoryOption configures the in-memory store.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	clock           func() time.Time
	onSweep         func(removed int)
	cleanupInterval time.Duration
	maxEntries      int
}

func defaultMemoryOptions() *memoryOptions {
	return &memoryOptions{
		clock:           time.Now,
		cleanupInterval: time.Minute,
		maxEntries:      10000,
	}
}

// WithCleanupInterval sets how often the janitor sweeps expired windows.
// Zero disables the janitor.
// Default: 1 minute.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		o.cleanupInterval = d
	}
}

// WithMaxEntries caps the number of tracked clients. Zero means unlimited.
// Default: 10000.
func WithMaxEntries(n int) MemoryOption {
	return func(o *memoryOptions) {
		o.maxEntries = n
	}
}

// WithClock sets the time source used by the janitor.
func WithClock(clock func() time.Time) MemoryOption {
	return func(o *memoryOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithSweepCallback is called after a janitor pass that removed entries.
func WithSweepCallback(fn func(removed int)) MemoryOption {
	return func(o *memoryOptions) {
		o.onSweep = fn
	}
}
