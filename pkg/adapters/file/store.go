package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/aretw0/implicate/pkg/ports"
)

// Store implements ports.AttributeStore using the local filesystem.
// Each attribute type is one JSON document mapping entity ids to values.
type Store struct {
	BasePath string
	fallback ports.AttributeStore
	mu       sync.RWMutex
}

type Option func(*Store)

// WithFallback makes the store forward misses to next.
func WithFallback(next ports.AttributeStore) Option {
	return func(s *Store) {
		s.fallback = next
	}
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".implicate/attributes".
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = filepath.Join(".implicate", "attributes")
	}
	s := &Store{BasePath: basePath}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) path(typ string) string {
	return filepath.Join(s.BasePath, url.PathEscape(typ)+".json")
}

// Get reads the value for (typ, id) from the type's document.
func (s *Store) Get(ctx context.Context, typ, id string) (any, bool, error) {
	s.mu.RLock()
	table, err := s.readTable(typ)
	s.mu.RUnlock()
	if err != nil {
		return nil, false, err
	}

	if value, ok := table[id]; ok {
		return value, true, nil
	}
	if s.fallback != nil {
		return s.fallback.Get(ctx, typ, id)
	}
	return nil, false, nil
}

// Put rewrites the type's document atomically with the new value.
func (s *Store) Put(ctx context.Context, typ, id string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.readTable(typ)
	if err != nil {
		return err
	}
	table[id] = value

	return s.writeTable(typ, table)
}

func (s *Store) readTable(typ string) (map[string]any, error) {
	data, err := os.ReadFile(s.path(typ))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("failed to read attribute file: %w", err)
	}

	table := map[string]any{}
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attribute file %s: %w", typ, err)
	}
	return table, nil
}

// writeTable writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) writeTable(typ string, table map[string]any) error {
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure attribute directory: %w", err)
	}

	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal attribute file %s: %w", typ, err)
	}

	// Same directory as the destination so the rename stays on one filesystem
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}

	// Cannot rename an open file on Windows
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	destPath := s.path(typ)
	// Rename replaces an existing file atomically everywhere but Windows
	if runtime.GOOS == "windows" {
		if err := os.Remove(destPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove existing attribute file for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to attribute file: %w", err)
	}

	return nil
}
