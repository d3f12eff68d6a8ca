package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/implicate/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.AttributeStore using Redis.
// Each attribute type is a hash keyed by entity id; values are JSON encoded.
type Store struct {
	client   *backend.Client
	prefix   string
	fallback ports.AttributeStore
}

type Option func(*Store)

// WithPrefix sets the key prefix for attribute hashes.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithFallback makes the store forward misses to next.
func WithFallback(next ports.AttributeStore) Option {
	return func(s *Store) {
		s.fallback = next
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "implicate:attr:",
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(typ string) string {
	return s.prefix + typ
}

// Get reads the value for (typ, id) from Redis.
// Structured values come back as generic JSON (map[string]any, []any, float64...).
func (s *Store) Get(ctx context.Context, typ, id string) (any, bool, error) {
	raw, err := s.client.HGet(ctx, s.key(typ), id).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			if s.fallback != nil {
				return s.fallback.Get(ctx, typ, id)
			}
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get from redis: %w", err)
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal attribute %s/%s: %w", typ, id, err)
	}
	return value, true, nil
}

// Put writes the JSON encoding of value into the type's hash.
func (s *Store) Put(ctx context.Context, typ, id string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal attribute %s/%s: %w", typ, id, err)
	}

	if err := s.client.HSet(ctx, s.key(typ), id, data).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
