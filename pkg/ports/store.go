package ports

import (
	"context"

	"github.com/aretw0/sticky/pkg/domain"
)

// SnapshotStore defines the interface for persisting registry snapshots.
// This allows an operator to inspect, or a process to report, which subtrees
// were retained after a restart.
type SnapshotStore interface {
	// Save persists the snapshot under key.
	Save(ctx context.Context, key string, snap *domain.Snapshot) error

	// Load retrieves the snapshot stored under key.
	// Returns domain.ErrSnapshotNotFound if the key does not exist.
	Load(ctx context.Context, key string) (*domain.Snapshot, error)

	// Delete removes the snapshot stored under key.
	Delete(ctx context.Context, key string) error

	// List returns the keys of all stored snapshots.
	List(ctx context.Context) ([]string, error)
}
