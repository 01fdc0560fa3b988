package domain

import (
	"reflect"
	"sort"
)

// SnapshotDiff represents the changes between two registry snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// Current is set when the active leaf changed.
	Current *string `json:"current,omitempty"`

	// Params contains only changed, added or deleted parameters.
	// For deletions, the key is present with a nil value.
	Params map[string]any `json:"params,omitempty"`

	// Activated and Deactivated list states joining or leaving the active path.
	Activated   []string `json:"activated,omitempty"`
	Deactivated []string `json:"deactivated,omitempty"`

	// Inactivated and Released list states joining or leaving the inactive pool.
	Inactivated []string `json:"inactivated,omitempty"`
	Released    []string `json:"released,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap.
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}
	if oldSnap == nil {
		oldSnap = &Snapshot{}
	}

	diff := &SnapshotDiff{}

	if oldSnap.Current != newSnap.Current || oldSnap.Timestamp.IsZero() {
		current := newSnap.Current
		diff.Current = &current
	}

	diff.Params = diffParams(oldSnap.Params, newSnap.Params)
	diff.Activated, diff.Deactivated = diffNames(oldSnap.Active, newSnap.Active)
	diff.Inactivated, diff.Released = diffNames(oldSnap.InactiveNames(), newSnap.InactiveNames())

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffParams(old, new Params) map[string]any {
	delta := make(map[string]any)

	for k, newVal := range new {
		oldVal, exists := old[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			delta[k] = newVal
		}
	}
	for k := range old {
		if _, exists := new[k]; !exists {
			delta[k] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// diffNames returns the names only present in new (added) and only in old (removed).
func diffNames(old, new []string) (added, removed []string) {
	oldSet := make(map[string]struct{}, len(old))
	for _, n := range old {
		oldSet[n] = struct{}{}
	}
	newSet := make(map[string]struct{}, len(new))
	for _, n := range new {
		newSet[n] = struct{}{}
		if _, ok := oldSet[n]; !ok {
			added = append(added, n)
		}
	}
	for _, n := range old {
		if _, ok := newSet[n]; !ok {
			removed = append(removed, n)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.Current == nil &&
		len(d.Params) == 0 &&
		len(d.Activated) == 0 &&
		len(d.Deactivated) == 0 &&
		len(d.Inactivated) == 0 &&
		len(d.Released) == 0
}
