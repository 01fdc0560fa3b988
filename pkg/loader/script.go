package loader

import (
	"fmt"
	"os"

	"github.com/aretw0/sticky/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Step is one action of a simulation script: either a transition to To or,
// when Reset is set, a reset of an inactive state ("*" resets all).
type Step struct {
	To         string         `json:"to" mapstructure:"to"`
	Params     map[string]any `json:"params" mapstructure:"params"`
	Reload     bool           `json:"reload" mapstructure:"reload"`
	ReloadFrom string         `json:"reload_from" mapstructure:"reload_from"`
	Relative   string         `json:"relative" mapstructure:"relative"`
	Inherit    bool           `json:"inherit" mapstructure:"inherit"`
	Reset      string         `json:"reset" mapstructure:"reset"`
}

// Options converts the step flags into transition options.
func (s Step) Options() domain.Options {
	return domain.Options{
		Reload:     s.Reload,
		ReloadFrom: s.ReloadFrom,
		Relative:   s.Relative,
		Inherit:    s.Inherit,
	}
}

// Script is an ordered list of steps.
type Script struct {
	Steps []Step `json:"steps" mapstructure:"steps"`
}

// LoadScript reads a YAML simulation script.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript decodes a YAML simulation script.
func ParseScript(data []byte) (*Script, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse script yaml: %w", err)
	}

	var script Script
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &script,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode script: %w", err)
	}

	for i, s := range script.Steps {
		if (s.To == "") == (s.Reset == "") {
			return nil, fmt.Errorf("step %d: exactly one of 'to' or 'reset' is required", i+1)
		}
	}
	return &script, nil
}
