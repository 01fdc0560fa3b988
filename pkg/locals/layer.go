package locals

import (
	"sort"
	"strings"
	"sync"
)

// Key builds the lookup key for a view declared by a state.
func Key(view, state string) string {
	return view + "@" + state
}

// SplitKey is the inverse of Key. The state part is empty for malformed keys.
func SplitKey(key string) (view, state string) {
	idx := strings.LastIndex(key, "@")
	if idx < 0 {
		return key, ""
	}
	return key[:idx], key[idx+1:]
}

// Layer is a mutable set of view entries owned by a single state.
// Safe for concurrent use.
type Layer struct {
	owner  string
	mu     sync.RWMutex
	values map[string]any
}

// NewLayer creates an empty layer owned by the named state.
func NewLayer(owner string) *Layer {
	return &Layer{
		owner:  owner,
		values: make(map[string]any),
	}
}

// Owner returns the name of the state that owns the layer.
func (l *Layer) Owner() string {
	return l.owner
}

// Set stores a value under key.
func (l *Layer) Set(key string, value any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values[key] = value
}

// Get returns the value stored under key in this layer only.
func (l *Layer) Get(key string) (any, bool) {
	if l == nil {
		return nil, false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.values[key]
	return v, ok
}

// Delete removes key from the layer.
func (l *Layer) Delete(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.values, key)
}

// Len reports the number of entries.
func (l *Layer) Len() int {
	if l == nil {
		return 0
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.values)
}

// Keys returns the entry keys in lexical order.
func (l *Layer) Keys() []string {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	keys := make([]string, 0, len(l.values))
	for k := range l.values {
		keys = append(keys, k)
	}
	l.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Entries returns a shallow copy of the layer's entries.
// The values themselves are shared, not copied.
func (l *Layer) Entries() map[string]any {
	out := make(map[string]any)
	if l == nil {
		return out
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	for k, v := range l.values {
		out[k] = v
	}
	return out
}

// Replace makes the layer hold exactly the given entries.
// Keys already holding the same value are left untouched; keys missing from
// entries are removed.
func (l *Layer) Replace(entries map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k := range l.values {
		if _, keep := entries[k]; !keep {
			delete(l.values, k)
		}
	}
	for k, v := range entries {
		l.values[k] = v
	}
}

// DeleteOwnedBy removes every entry whose key names the given state.
func (l *Layer) DeleteOwnedBy(state string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k := range l.values {
		if _, owner := SplitKey(k); owner == state {
			delete(l.values, k)
		}
	}
}
