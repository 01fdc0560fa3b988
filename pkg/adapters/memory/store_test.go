package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/sticky/pkg/adapters/memory"
	"github.com/aretw0/sticky/pkg/domain"
	"github.com/aretw0/sticky/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSnapshotStoreContract(t, store)
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	snap := &domain.Snapshot{Current: "a", Params: domain.Params{"id": 1}, Active: []string{"", "a"}}
	require.NoError(t, store.Save(ctx, "k", snap))

	snap.Params["id"] = 2
	loaded, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Params["id"])

	loaded.Active[1] = "mutated"
	again, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "a", again.Active[1])
}
