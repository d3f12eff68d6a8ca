package memory

import (
	"context"
	"sync"

	"github.com/aretw0/implicate/pkg/ports"
)

// Store implements ports.AttributeStore in memory.
// Safe for concurrent use.
type Store struct {
	data     map[string]map[string]any
	fallback ports.AttributeStore
	mu       sync.RWMutex
}

// Option configures a Store.
type Option func(*Store)

// WithFallback makes the store forward misses to next.
// Writes always stay in this store.
func WithFallback(next ports.AttributeStore) Option {
	return func(s *Store) {
		s.fallback = next
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		data: make(map[string]map[string]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value for (typ, id), consulting the fallback on a miss.
func (s *Store) Get(ctx context.Context, typ, id string) (any, bool, error) {
	s.mu.RLock()
	value, ok := s.data[typ][id]
	s.mu.RUnlock()

	if ok {
		return value, true, nil
	}
	if s.fallback != nil {
		return s.fallback.Get(ctx, typ, id)
	}
	return nil, false, nil
}

// Put stores the value, replacing any previous one.
func (s *Store) Put(ctx context.Context, typ, id string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.data[typ]
	if !ok {
		bucket = make(map[string]any)
		s.data[typ] = bucket
	}
	bucket[id] = value
	return nil
}

