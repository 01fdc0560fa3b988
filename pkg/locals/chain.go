package locals

// Chain is an ordered list of layers, strongest first.
type Chain struct {
	layers []*Layer
}

// NewChain builds a chain from the given layers, skipping nil entries.
func NewChain(layers ...*Layer) Chain {
	filtered := make([]*Layer, 0, len(layers))
	for _, l := range layers {
		if l != nil {
			filtered = append(filtered, l)
		}
	}
	return Chain{layers: filtered}
}

// Layers returns the chain's layers, strongest first.
func (c Chain) Layers() []*Layer {
	out := make([]*Layer, len(c.layers))
	copy(out, c.layers)
	return out
}

// Lookup resolves key against the chain front to back.
func (c Chain) Lookup(key string) (any, bool) {
	v, _, ok := c.Source(key)
	return v, ok
}

// Source resolves key and also reports the layer that provided the value.
func (c Chain) Source(key string) (any, *Layer, bool) {
	for _, l := range c.layers {
		if v, ok := l.Get(key); ok {
			return v, l, true
		}
	}
	return nil, nil, false
}

// Flatten merges the chain into a single map. Stronger layers win.
func (c Chain) Flatten() map[string]any {
	out := make(map[string]any)
	for i := len(c.layers) - 1; i >= 0; i-- {
		for k, v := range c.layers[i].Entries() {
			out[k] = v
		}
	}
	return out
}
