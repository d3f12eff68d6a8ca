package implicate_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/implicate"
	"github.com/aretw0/implicate/pkg/adapters/memory"
	"github.com/aretw0/implicate/pkg/domain"
	"github.com/aretw0/implicate/pkg/observability"
	"github.com/aretw0/implicate/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	filePath = implicate.NewAttr[string]("FilePath")
	fileExt  = implicate.NewAttr[string]("FileExt")
)

func extname(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

func TestRegistry_PutGet(t *testing.T) {
	ctx := context.Background()
	r := implicate.New()

	require.NoError(t, r.Put(ctx, "FilePath", "test", "name.json5"))

	value, ok, err := r.Get(ctx, "FilePath", "test")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "name.json5", value)
}

func TestRegistry_ImpliedValue(t *testing.T) {
	ctx := context.Background()
	r := implicate.New()
	require.NoError(t, filePath.Store(ctx, r, "test", "name.json5"))

	r.MustImply([]string{"FilePath"}, []string{"FileExt"}, func(ctx context.Context, s implicate.Scope) error {
		path, err := filePath.From(s)
		if err != nil {
			return err
		}
		fileExt.Set(s, extname(path))
		return nil
	})

	ext, ok, err := fileExt.Lookup(ctx, r, "test")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "json5", ext)
}

func TestRegistry_MultiOutputWithTypedAttrs(t *testing.T) {
	ctx := context.Background()
	r := implicate.New()

	typeA := implicate.NewAttr[string]("TypeA")
	capitalized := implicate.NewAttr[string]("Capitalized")
	parenthesized := implicate.NewAttr[string]("Parenthesized")
	duplo := implicate.NewAttr[string]("DuploCapitalized")
	call := implicate.NewAttr[string]("DuploCapitalCall")

	require.NoError(t, typeA.Store(ctx, r, "name", "a"))

	r.MustImply([]string{typeA.Type()}, []string{capitalized.Type(), parenthesized.Type()}, func(ctx context.Context, s implicate.Scope) error {
		a, err := typeA.From(s)
		if err != nil {
			return err
		}
		capitalized.Set(s, strings.ToUpper(a))
		parenthesized.Set(s, "("+a+")")
		return nil
	})
	r.MustImply([]string{capitalized.Type()}, []string{duplo.Type()}, func(ctx context.Context, s implicate.Scope) error {
		c, err := capitalized.From(s)
		if err != nil {
			return err
		}
		duplo.Set(s, c+c)
		return nil
	})
	r.MustImply([]string{parenthesized.Type(), duplo.Type()}, []string{call.Type()}, func(ctx context.Context, s implicate.Scope) error {
		p, err := parenthesized.From(s)
		if err != nil {
			return err
		}
		d, err := duplo.From(s)
		if err != nil {
			return err
		}
		call.Set(s, d+p)
		return nil
	})

	value, ok, err := call.Lookup(ctx, r, "name")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "AA(a)", value)
}

func TestRegistry_MustImplyPanics(t *testing.T) {
	r := implicate.New()
	assert.Panics(t, func() {
		r.MustImply([]string{"a"}, []string{"b"})
	})
}

func TestRegistry_ImplyUsage(t *testing.T) {
	r := implicate.New()
	_, err := r.Imply([]string{"a"}, nil, func(ctx context.Context, s implicate.Scope) error { return nil })
	assert.ErrorIs(t, err, implicate.ErrUsage)
}

func TestRegistry_DelegationChain(t *testing.T) {
	ctx := context.Background()

	cache := memory.NewStore()
	origin := memory.NewStore()
	require.NoError(t, origin.Put(ctx, "FilePath", "test", "name.json5"))

	r := implicate.New(implicate.WithStore(middleware.Chain(cache, origin)))
	r.MustImply([]string{"FilePath"}, []string{"FileExt"}, func(ctx context.Context, s implicate.Scope) error {
		path, err := filePath.From(s)
		if err != nil {
			return err
		}
		fileExt.Set(s, extname(path))
		return nil
	})

	ext, ok, err := r.Get(ctx, "FileExt", "test")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "json5", ext)

	// Explicit writes land in the front of the chain only
	require.NoError(t, r.Put(ctx, "FilePath", "test", "other.yaml"))
	value, _, _ := origin.Get(ctx, "FilePath", "test")
	assert.Equal(t, "name.json5", value)

	ext, _, err = r.Get(ctx, "FileExt", "test")
	require.NoError(t, err)
	assert.Equal(t, "yaml", ext)
}

func TestRegistry_Tracer(t *testing.T) {
	ctx := context.Background()
	rec := observability.NewRecorder()
	r := implicate.New(implicate.WithTracer(rec))

	_, ok, err := r.Get(ctx, "Nothing", "x")
	require.NoError(t, err)
	assert.False(t, ok)

	records := rec.Records()
	require.NotEmpty(t, records)
	last := records[len(records)-1]
	assert.Equal(t, domain.EventGetReturned, last.Event)
	assert.Equal(t, domain.SourceAbsent, last.Attrs.Source)
}

func TestRegistry_Introspection(t *testing.T) {
	r := implicate.New()
	noop := func(ctx context.Context, s implicate.Scope) error { return nil }

	first := r.MustImply([]string{"FilePath"}, []string{"FileExt"}, noop)
	second := r.MustImply([]string{"FileName"}, []string{"FileExt", "Stem"}, noop)

	assert.Equal(t, []*implicate.Implicator{first, second}, r.Implicators("FileExt"))
	assert.Equal(t, []*implicate.Implicator{second}, r.Implicators("Stem"))
	assert.Equal(t, []*implicate.Implicator{first, second}, r.Rules())
	assert.NotNil(t, r.Store())
}
