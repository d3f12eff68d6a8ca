// Package config loads the implicate configuration file and turns its store
// section into a storage delegation chain.
package config

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aretw0/implicate/pkg/adapters/file"
	"github.com/aretw0/implicate/pkg/adapters/memory"
	"github.com/aretw0/implicate/pkg/adapters/redis"
	"github.com/aretw0/implicate/pkg/domain"
	"github.com/aretw0/implicate/pkg/persistence/middleware"
	"github.com/aretw0/implicate/pkg/ports"
	"github.com/aretw0/implicate/pkg/schema"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "implicate.yaml"

// Backends understood by BuildStore.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendFile   = "file"
)

// StoreConfig describes one link of the storage chain.
type StoreConfig struct {
	Backend       string            `yaml:"backend" json:"backend"`
	Addr          string            `yaml:"addr" json:"addr"`
	Password      string            `yaml:"password" json:"password"`
	DB            int               `yaml:"db" json:"db"`
	Prefix        string            `yaml:"prefix" json:"prefix"`
	Dir           string            `yaml:"dir" json:"dir"`
	Schema        map[string]string `yaml:"schema" json:"schema"`
	Redact        []string          `yaml:"redact" json:"redact"`
	EncryptionKey string            `yaml:"encryption_key" json:"encryption_key"`
	Fallback      *StoreConfig      `yaml:"fallback" json:"fallback"`
}

// Fact is an explicit value seeded into the store at startup.
type Fact struct {
	Type  string `yaml:"type" json:"type"`
	ID    string `yaml:"id" json:"id"`
	Value any    `yaml:"value" json:"value"`
}

// RuleDef is a declarative implicator. When entries are conditions, Set
// entries make up the producer. Both are text templates.
type RuleDef struct {
	Name    string            `yaml:"name" json:"name"`
	Inputs  []string          `yaml:"inputs" json:"inputs"`
	Outputs []string          `yaml:"outputs" json:"outputs"`
	When    []string          `yaml:"when" json:"when"`
	Set     map[string]string `yaml:"set" json:"set"`
}

// Config is the root of the configuration file.
type Config struct {
	Store StoreConfig `yaml:"store" json:"store"`
	Facts []Fact      `yaml:"facts" json:"facts"`
	Rules []RuleDef   `yaml:"rules" json:"rules"`
}

// Load reads a configuration file (YAML, or JSON by extension).
// A missing file yields an empty configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	return &cfg, nil
}

// Store is a built storage chain. Close releases every backend in the
// chain that holds connections.
type Store struct {
	ports.AttributeStore
	closers []io.Closer
}

// Close closes the redis clients of every link.
func (s *Store) Close() error {
	errs := make([]error, 0, len(s.closers))
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// BuildStore creates the store described by cfg. Each Fallback link gets its
// own middleware and is consulted only when the link before it misses.
// Writes pass schema validation, then redaction, then encryption, so
// masking happens on plaintext. The settings of a link are validated before
// its backend is created.
func BuildStore(cfg StoreConfig) (*Store, error) {
	mws, err := buildMiddleware(cfg)
	if err != nil {
		return nil, err
	}
	backend, err := buildBackend(cfg)
	if err != nil {
		return nil, err
	}

	store := &Store{AttributeStore: middleware.Wrap(backend, mws...)}
	if c, ok := backend.(io.Closer); ok {
		store.closers = append(store.closers, c)
	}

	if cfg.Fallback == nil {
		return store, nil
	}
	next, err := BuildStore(*cfg.Fallback)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	store.AttributeStore = middleware.Fallback(next)(store.AttributeStore)
	store.closers = append(store.closers, next)
	return store, nil
}

func buildMiddleware(cfg StoreConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.Schema) > 0 {
		s, err := schema.Parse(cfg.Schema)
		if err != nil {
			return nil, fmt.Errorf("invalid schema: %w", err)
		}
		mws = append(mws, middleware.NewSchemaMiddleware(s))
	}
	if len(cfg.Redact) > 0 {
		for _, p := range cfg.Redact {
			if _, err := regexp.Compile(p); err != nil {
				return nil, fmt.Errorf("invalid redact pattern %q: %w", p, err)
			}
		}
		mws = append(mws, middleware.NewRedactionMiddleware(cfg.Redact))
	}
	if cfg.EncryptionKey != "" {
		key, err := base64.StdEncoding.DecodeString(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("invalid encryption_key: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("invalid encryption_key: want 32 bytes, got %d", len(key))
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	return mws, nil
}

func buildBackend(cfg StoreConfig) (ports.AttributeStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendMemory:
		return memory.NewStore(), nil
	case BackendRedis:
		var opts []redis.Option
		if cfg.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Prefix))
		}
		addr := cfg.Addr
		if addr == "" {
			addr = "localhost:6379"
		}
		return redis.New(addr, cfg.Password, cfg.DB, opts...), nil
	case BackendFile:
		return file.New(cfg.Dir), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownBackend, cfg.Backend)
	}
}

// Seed writes the facts that store does not already hold. Facts are
// defaults: values written later with Put survive a restart on persistent
// backends.
func Seed(ctx context.Context, store ports.AttributeStore, facts []Fact) error {
	for _, f := range facts {
		_, ok, err := store.Get(ctx, f.Type, f.ID)
		if err != nil {
			return fmt.Errorf("failed to seed %s/%s: %w", f.Type, f.ID, err)
		}
		if ok {
			continue
		}
		if err := store.Put(ctx, f.Type, f.ID, f.Value); err != nil {
			return fmt.Errorf("failed to seed %s/%s: %w", f.Type, f.ID, err)
		}
	}
	return nil
}
