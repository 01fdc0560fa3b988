package runtime

import (
	"log/slog"

	"github.com/aretw0/sticky/pkg/domain"
	"github.com/aretw0/sticky/pkg/ports"
)

// DefaultSnapshotKey is the store key used when none is configured.
const DefaultSnapshotKey = "default"

// Option configures the Coordinator.
type Option func(*Coordinator)

// WithLogger sets a custom logger for the coordinator.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithObserver registers observability hooks. Multiple observers are merged.
func WithObserver(hooks domain.ObserverHooks) Option {
	return func(c *Coordinator) {
		c.observer = c.observer.Merge(hooks)
	}
}

// WithSnapshotStore persists a registry snapshot under key after every
// committed transition and reset.
func WithSnapshotStore(store ports.SnapshotStore, key string) Option {
	return func(c *Coordinator) {
		c.store = store
		if key == "" {
			key = DefaultSnapshotKey
		}
		c.storeKey = key
	}
}

// WithIDGenerator overrides how transition IDs and reload nonces are generated.
func WithIDGenerator(gen func() string) Option {
	return func(c *Coordinator) {
		c.newID = gen
	}
}
