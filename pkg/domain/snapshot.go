package domain

import "time"

// InactiveState summarises one entry of the inactive registry.
type InactiveState struct {
	Name   string    `json:"name"`
	Params Params    `json:"params,omitempty"`
	Views  []string  `json:"views,omitempty"`
	Since  time.Time `json:"since"`
}

// Snapshot is a serialisable summary of the engine's registry.
// View data is not included; only the keys of retained views are.
type Snapshot struct {
	Current   string          `json:"current"`
	Params    Params          `json:"params,omitempty"`
	Active    []string        `json:"active"`
	Inactive  []InactiveState `json:"inactive,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// InactiveNames returns the names of the inactive states.
func (s *Snapshot) InactiveNames() []string {
	out := make([]string, len(s.Inactive))
	for i, in := range s.Inactive {
		out[i] = in.Name
	}
	return out
}
