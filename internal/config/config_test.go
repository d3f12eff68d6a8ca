package config

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/implicate/pkg/domain"
	"github.com/aretw0/implicate/pkg/persistence/middleware"
	"github.com/aretw0/implicate/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
store:
  backend: memory
  redact: ["(?i)secret"]
  fallback:
    backend: file
    dir: attrs
facts:
  - { type: FilePath, id: test, value: name.json5 }
rules:
  - name: extension
    inputs: [FilePath]
    outputs: [FileExt]
    when: ['{{ ne .FilePath "" }}']
    set: { FileExt: '{{ ext .FilePath }}' }
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Missing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Facts)
	assert.Empty(t, cfg.Rules)
	assert.Empty(t, cfg.Store.Backend)
}

func TestLoad_YAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "implicate.yaml", sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, []string{"(?i)secret"}, cfg.Store.Redact)
	require.NotNil(t, cfg.Store.Fallback)
	assert.Equal(t, BackendFile, cfg.Store.Fallback.Backend)
	assert.Equal(t, "attrs", cfg.Store.Fallback.Dir)

	require.Len(t, cfg.Facts, 1)
	assert.Equal(t, Fact{Type: "FilePath", ID: "test", Value: "name.json5"}, cfg.Facts[0])

	require.Len(t, cfg.Rules, 1)
	rule := cfg.Rules[0]
	assert.Equal(t, "extension", rule.Name)
	assert.Equal(t, []string{"FilePath"}, rule.Inputs)
	assert.Equal(t, []string{"FileExt"}, rule.Outputs)
	assert.Equal(t, []string{`{{ ne .FilePath "" }}`}, rule.When)
	assert.Equal(t, "{{ ext .FilePath }}", rule.Set["FileExt"])
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "implicate.json", `{"store":{"backend":"redis","addr":"cache:6379","db":2},"facts":[{"type":"Size","id":"a","value":3}]}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "cache:6379", cfg.Store.Addr)
	assert.Equal(t, 2, cfg.Store.DB)
	require.Len(t, cfg.Facts, 1)
	assert.Equal(t, float64(3), cfg.Facts[0].Value)
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load(writeFile(t, "broken.yaml", "store: [unterminated"))
	assert.Error(t, err)
}

func TestBuildStore_Default(t *testing.T) {
	ctx := context.Background()
	store, err := BuildStore(StoreConfig{})
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "A", "1", "x"))
	v, ok, err := store.Get(ctx, "A", "1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", v)
}

func TestBuildStore_UnknownBackend(t *testing.T) {
	_, err := BuildStore(StoreConfig{Backend: "etcd"})
	assert.ErrorIs(t, err, domain.ErrUnknownBackend)

	_, err = BuildStore(StoreConfig{Fallback: &StoreConfig{Backend: "etcd"}})
	assert.ErrorIs(t, err, domain.ErrUnknownBackend)
}

func TestBuildStore_FileFallback(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	// Seed the file link on its own, then read through a memory front
	origin, err := BuildStore(StoreConfig{Backend: BackendFile, Dir: dir})
	require.NoError(t, err)
	require.NoError(t, origin.Put(ctx, "FilePath", "test", "name.json5"))

	store, err := BuildStore(StoreConfig{
		Backend:  BackendMemory,
		Fallback: &StoreConfig{Backend: BackendFile, Dir: dir},
	})
	require.NoError(t, err)

	v, ok, err := store.Get(ctx, "FilePath", "test")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "name.json5", v)

	// Writes stay in the front link
	require.NoError(t, store.Put(ctx, "FilePath", "test", "other.txt"))
	v, _, _ = origin.Get(ctx, "FilePath", "test")
	assert.Equal(t, "name.json5", v)
}

func TestBuildStore_Redis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	store, err := BuildStore(StoreConfig{Backend: BackendRedis, Addr: mr.Addr(), Prefix: "test:"})
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "Size", "a", 42))
	assert.True(t, mr.Exists("test:Size"))

	v, ok, err := store.Get(ctx, "Size", "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, float64(42), v)
}

func TestBuildStore_EncryptionAndRedaction(t *testing.T) {
	ctx := context.Background()
	key := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))

	store, err := BuildStore(StoreConfig{Redact: []string{"(?i)token"}, EncryptionKey: key})
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "Account", "u1", map[string]any{"name": "alice", "api_token": "abc"}))
	v, ok, err := store.Get(ctx, "Account", "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]any{"name": "alice", "api_token": middleware.Mask}, v)
}

func TestBuildStore_InvalidSettings(t *testing.T) {
	_, err := BuildStore(StoreConfig{EncryptionKey: "not base64!"})
	assert.Error(t, err)

	_, err = BuildStore(StoreConfig{EncryptionKey: base64.StdEncoding.EncodeToString([]byte("short"))})
	assert.Error(t, err)

	_, err = BuildStore(StoreConfig{Redact: []string{"("}})
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	store, err := BuildStore(StoreConfig{})
	require.NoError(t, err)

	require.NoError(t, Seed(ctx, store, []Fact{
		{Type: "FilePath", ID: "a", Value: "a.txt"},
		{Type: "FilePath", ID: "b", Value: "b.md"},
	}))

	v, ok, err := store.Get(ctx, "FilePath", "b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b.md", v)
}

func TestSeed_KeepsExistingValues(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := BuildStore(StoreConfig{Backend: BackendFile, Dir: dir})
	require.NoError(t, err)
	facts := []Fact{{Type: "FilePath", ID: "a", Value: "a.txt"}}
	require.NoError(t, Seed(ctx, first, facts))
	require.NoError(t, first.Put(ctx, "FilePath", "a", "edited.txt"))

	// A later run seeds the same facts against the same directory
	second, err := BuildStore(StoreConfig{Backend: BackendFile, Dir: dir})
	require.NoError(t, err)
	require.NoError(t, Seed(ctx, second, facts))

	v, ok, err := second.Get(ctx, "FilePath", "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "edited.txt", v)
}

func TestBuildStore_CloseReleasesRedisLinks(t *testing.T) {
	ctx := context.Background()
	front := miniredis.RunT(t)
	back := miniredis.RunT(t)

	store, err := BuildStore(StoreConfig{
		Backend:  BackendRedis,
		Addr:     front.Addr(),
		Fallback: &StoreConfig{Backend: BackendRedis, Addr: back.Addr()},
	})
	require.NoError(t, err)
	require.Len(t, store.closers, 2)
	require.NoError(t, store.Put(ctx, "FilePath", "a", "a.txt"))

	require.NoError(t, store.Close())
	_, _, err = store.Get(ctx, "FilePath", "a")
	assert.Error(t, err)
}

func TestBuildStore_MemoryHasNothingToClose(t *testing.T) {
	store, err := BuildStore(StoreConfig{Fallback: &StoreConfig{Backend: BackendFile, Dir: t.TempDir()}})
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestBuildStore_Schema(t *testing.T) {
	ctx := context.Background()
	store, err := BuildStore(StoreConfig{Schema: map[string]string{"Size": "int"}})
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "Size", "a", 4))
	assert.ErrorIs(t, store.Put(ctx, "Size", "b", "four"), schema.ErrInvalid)

	_, err = BuildStore(StoreConfig{Schema: map[string]string{"Size": "integer"}})
	assert.Error(t, err)
}
