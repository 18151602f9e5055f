package journal

import (
	"context"
	"sync"
)

// DefaultMemoryCapacity bounds the in-memory journal when no capacity is set.
const DefaultMemoryCapacity = 1000

// MemoryConfig configures the in-memory ring.
type MemoryConfig struct {
	Capacity int `mapstructure:"capacity" yaml:"capacity" toml:"capacity" json:"capacity" validate:"min=0"`
}

// MemoryStore keeps the most recent entries in a fixed-size ring.
type MemoryStore struct {
	mu    sync.RWMutex
	ring  []Entry
	next  int
	count int
}

// NewMemoryStore creates a ring holding up to capacity entries.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{ring: make([]Entry, capacity)}
}

func (s *MemoryStore) Record(_ context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ring[s.next] = *e
	s.next = (s.next + 1) % len(s.ring)
	if s.count < len(s.ring) {
		s.count++
	}
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > s.count {
		limit = s.count
	}
	out := make([]Entry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + len(s.ring)) % len(s.ring)
		out = append(out, s.ring[idx])
	}
	return out, nil
}

func (s *MemoryStore) Healthcheck(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close() error {
	return nil
}
