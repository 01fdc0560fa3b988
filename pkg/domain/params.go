package domain

import (
	"reflect"
	"sort"
)

// Params holds the parameter values of a transition, keyed by parameter name.
type Params map[string]any

// Clone returns a shallow copy. A nil receiver yields an empty map.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Only returns a copy containing the listed keys that are present.
func (p Params) Only(keys []string) Params {
	out := make(Params, len(keys))
	for _, k := range keys {
		if v, ok := p[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Without returns a copy with the listed keys removed.
func (p Params) Without(keys ...string) Params {
	out := p.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// EqualForKeys reports whether p and other agree on every listed key.
// A key missing from both sides counts as equal.
func (p Params) EqualForKeys(other Params, keys []string) bool {
	for _, k := range keys {
		a, okA := p[k]
		b, okB := other[k]
		if okA != okB {
			return false
		}
		if !reflect.DeepEqual(a, b) {
			return false
		}
	}
	return true
}

// Keys returns the parameter names in lexical order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
