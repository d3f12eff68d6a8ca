package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/implicate/pkg/adapters/memory"
	"github.com/aretw0/implicate/pkg/ports"
	contract "github.com/aretw0/implicate/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.AttributeStore = (*memory.Store)(nil)

func TestMemoryStore_Contract(t *testing.T) {
	contract.RunAttributeStoreContract(t, memory.NewStore())
}

func TestMemoryStore_WithFallback(t *testing.T) {
	ctx := context.Background()

	slow := memory.NewStore()
	require.NoError(t, slow.Put(ctx, "FilePath", "test", "name.json5"))

	fast := memory.NewStore(memory.WithFallback(slow))

	// Reads fall through to the wrapped store
	value, ok, err := fast.Get(ctx, "FilePath", "test")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "name.json5", value)

	// Writes stay in the front store
	require.NoError(t, fast.Put(ctx, "FilePath", "test", "other.yaml"))

	value, _, _ = fast.Get(ctx, "FilePath", "test")
	assert.Equal(t, "other.yaml", value)

	value, _, _ = slow.Get(ctx, "FilePath", "test")
	assert.Equal(t, "name.json5", value, "fallback must not see front-store writes")
}

func TestMemoryStore_NilIsAValue(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	require.NoError(t, store.Put(ctx, "Optional", "x", nil))

	value, ok, err := store.Get(ctx, "Optional", "x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, value)
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Put(ctx, "Counter", "shared", i)
		}()
		go func() {
			defer wg.Done()
			_, _, _ = store.Get(ctx, "Counter", "shared")
		}()
	}
	wg.Wait()

	_, ok, err := store.Get(ctx, "Counter", "shared")
	require.NoError(t, err)
	assert.True(t, ok)
}
