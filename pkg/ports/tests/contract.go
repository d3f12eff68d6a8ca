package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/implicate/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunAttributeStoreContract is a reusable test suite that verifies if an adapter complies with ports.AttributeStore.
// Values used by the suite survive a JSON round trip, so serializing stores are covered too.
func RunAttributeStoreContract(t *testing.T, store ports.AttributeStore) {
	t.Helper()

	ctx := context.Background()
	id := "contract-" + time.Now().Format("20060102150405.000000000")

	t.Run("Put and Get", func(t *testing.T) {
		err := store.Put(ctx, "FilePath", id, "name.json5")
		require.NoError(t, err, "Put should not return error")

		value, ok, err := store.Get(ctx, "FilePath", id)
		require.NoError(t, err, "Get should not return error")
		assert.True(t, ok)
		assert.Equal(t, "name.json5", value)
	})

	t.Run("Get Missing", func(t *testing.T) {
		value, ok, err := store.Get(ctx, "FilePath", "missing-"+id)
		require.NoError(t, err, "a missing key is not an error")
		assert.False(t, ok)
		assert.Nil(t, value)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "Owner", id, "alice"))
		require.NoError(t, store.Put(ctx, "Owner", id, "bob"))

		value, ok, err := store.Get(ctx, "Owner", id)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "bob", value)
	})

	t.Run("Key Isolation", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "Color", id, "red"))

		_, ok, err := store.Get(ctx, "Color", id+"-other")
		require.NoError(t, err)
		assert.False(t, ok, "ids must not leak into each other")

		_, ok, err = store.Get(ctx, "Shape", id)
		require.NoError(t, err)
		assert.False(t, ok, "types must not leak into each other")
	})

	t.Run("Structured Value", func(t *testing.T) {
		meta := map[string]any{"name": "report", "kind": "pdf"}
		require.NoError(t, store.Put(ctx, "Metadata", id, meta))

		value, ok, err := store.Get(ctx, "Metadata", id)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, meta, value)
	})
}
