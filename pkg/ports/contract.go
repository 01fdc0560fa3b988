package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/sticky/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")

	newSnapshot := func() *domain.Snapshot {
		return &domain.Snapshot{
			Current: "app.inbox",
			Params:  domain.Params{"folder": "spam"},
			Active:  []string{"", "app", "app.inbox"},
			Inactive: []domain.InactiveState{
				{Name: "app.settings", Params: domain.Params{"tab": "privacy"}, Views: []string{"main"}, Since: time.Now().UTC().Truncate(time.Second)},
			},
			Timestamp: time.Now().UTC().Truncate(time.Second),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		// 1. Save
		snap := newSnapshot()
		err := store.Save(ctx, key, snap)
		require.NoError(t, err, "Save should not return error")

		// 2. Load
		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.Current, loaded.Current)
		assert.Equal(t, "spam", loaded.Params["folder"])
		assert.Equal(t, snap.Active, loaded.Active)
		require.Len(t, loaded.Inactive, 1)
		assert.Equal(t, "app.settings", loaded.Inactive[0].Name)
		assert.Equal(t, []string{"main"}, loaded.Inactive[0].Views)
		assert.True(t, snap.Timestamp.Equal(loaded.Timestamp))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		snap := newSnapshot()
		snap.Current = "app.settings"
		snap.Inactive = nil
		require.NoError(t, store.Save(ctx, key, snap))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "app.settings", loaded.Current)
		assert.Empty(t, loaded.Inactive)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, newSnapshot()))

		err := store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")
	})

	t.Run("List", func(t *testing.T) {
		k1 := key + "-1"
		k2 := key + "-2"
		_ = store.Save(ctx, k1, newSnapshot())
		_ = store.Save(ctx, k2, newSnapshot())

		defer func() {
			_ = store.Delete(ctx, k1)
			_ = store.Delete(ctx, k2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
	})
}
