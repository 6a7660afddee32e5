package ratelimit

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// memoryEntry keeps the client key next to its window so the list can find
// its map slot on eviction.
type memoryEntry struct {
	key   string
	entry Entry
}

// MemoryStore is a process-local Limiter. The map is bounded: a janitor drops
// clients whose window has passed, and at capacity the client whose window
// opened earliest is evicted.
//
// The list is ordered by window start, newest at the front.
type MemoryStore struct {
	policy  Policy
	opts    *memoryOptions
	items   map[string]*list.Element
	windows *list.List
	done    chan struct{}
	mu      sync.Mutex
	closed  bool
}

// NewMemoryStore creates a store and starts its janitor unless the cleanup
// interval is zero. Call Close to stop it.
func NewMemoryStore(policy Policy, opts ...MemoryOption) (*MemoryStore, error) {
	if err := policy.validate(); err != nil {
		return nil, err
	}

	o := defaultMemoryOptions()
	for _, opt := range opts {
		opt(o)
	}

	s := &MemoryStore{
		policy:  policy,
		opts:    o,
		items:   make(map[string]*list.Element),
		windows: list.New(),
		done:    make(chan struct{}),
	}

	if o.cleanupInterval > 0 {
		go s.janitor()
	}

	return s, nil
}

// Admit implements Limiter.
func (s *MemoryStore) Admit(_ context.Context, clientID string, now time.Time) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, exists := s.items[clientID]
	var current Entry
	if exists {
		current = elem.Value.(*memoryEntry).entry
	}

	next, decision, changed := s.policy.apply(current, exists, now)
	if !changed {
		return decision, nil
	}

	switch {
	case !exists:
		if s.opts.maxEntries > 0 && len(s.items) >= s.opts.maxEntries {
			s.evictOldest()
		}
		s.items[clientID] = s.windows.PushFront(&memoryEntry{key: clientID, entry: next})
	case next.Count == 1:
		// new window for a known client
		elem.Value.(*memoryEntry).entry = next
		s.windows.MoveToFront(elem)
	default:
		elem.Value.(*memoryEntry).entry = next
	}

	return decision, nil
}

// Len returns the number of tracked clients
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Sweep removes every client whose window reset before now and returns how
// many were removed.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for elem := s.windows.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*memoryEntry).entry.WindowResetAt) {
			s.removeElement(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

// Close stops the janitor. Close is idempotent.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)
	return nil
}

func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(s.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			removed := s.Sweep(s.opts.clock())
			if removed > 0 && s.opts.onSweep != nil {
				s.opts.onSweep(removed)
			}
		}
	}
}

// evictOldest drops the client whose window opened first.
// Caller must hold the mutex.
func (s *MemoryStore) evictOldest() {
	if elem := s.windows.Back(); elem != nil {
		s.removeElement(elem)
	}
}

// Caller must hold the mutex.
func (s *MemoryStore) removeElement(elem *list.Element) {
	s.windows.Remove(elem)
	delete(s.items, elem.Value.(*memoryEntry).key)
}

var _ Limiter = (*MemoryStore)(nil)
