package middleware_test

import (
	"context"

	"github.com/aretw0/implicate/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware.
type MockStore struct {
	data map[string]any
	gets int
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]any),
	}
}

func (s *MockStore) Get(ctx context.Context, typ, id string) (any, bool, error) {
	s.gets++
	value, ok := s.data[typ+"/"+id]
	return value, ok, nil
}

func (s *MockStore) Put(ctx context.Context, typ, id string, value any) error {
	s.data[typ+"/"+id] = value
	return nil
}

var _ ports.AttributeStore = (*MockStore)(nil)
