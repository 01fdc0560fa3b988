// Package validator checks trees and simulation scripts without running them.
package validator

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/sticky/pkg/domain"
	"github.com/aretw0/sticky/pkg/loader"
	"github.com/aretw0/sticky/pkg/tree"
)

// ValidateTree reports parameter names declared more than once along a path.
// A shadowed name makes the inner state's param indistinguishable from the outer one.
func ValidateTree(t *tree.Tree) error {
	var errs []string
	for _, s := range t.States() {
		owner := make(map[string]string)
		for _, st := range s.CanonicalPath().States() {
			for _, p := range st.Params {
				if prev, ok := owner[p]; ok && st == s {
					errs = append(errs, fmt.Sprintf("param '%s' of '%s' shadows the one declared on '%s'", p, s, prev))
				}
				owner[p] = st.String()
			}
		}
	}
	return report(errs)
}

// ValidateScript checks every step of script against t: targets, relative
// anchors and reload boundaries must resolve, params must be declared on the
// target path and resets must name a sticky state.
func ValidateScript(t *tree.Tree, script *loader.Script) error {
	var errs []string
	for i, step := range script.Steps {
		if msg := validateStep(t, step); msg != "" {
			errs = append(errs, fmt.Sprintf("step %d: %s", i+1, msg))
		}
	}
	return report(errs)
}

func validateStep(t *tree.Tree, step loader.Step) string {
	if step.Reset != "" {
		if step.Reset == "*" {
			return ""
		}
		s, ok := t.Get(step.Reset)
		if !ok {
			return fmt.Sprintf("reset target '%s' is not declared", step.Reset)
		}
		if !s.IsSticky() {
			return fmt.Sprintf("reset target '%s' is not sticky and can never be inactive", step.Reset)
		}
		return ""
	}

	// 1. Anchor
	var relative *domain.State
	if step.Relative != "" {
		s, ok := t.Get(step.Relative)
		if !ok {
			return fmt.Sprintf("relative anchor '%s' is not declared", step.Relative)
		}
		relative = s
	}

	// 2. Target
	target, err := t.Lookup(step.To, relative)
	if err != nil {
		return fmt.Sprintf("target: %v", err)
	}

	// 3. Reload boundary
	if step.ReloadFrom != "" && step.ReloadFrom != domain.ReloadAll {
		boundary, err := t.Lookup(step.ReloadFrom, relative)
		if err != nil {
			return fmt.Sprintf("reload_from: %v", err)
		}
		if boundary != target && !boundary.IsAncestorOf(target) {
			return fmt.Sprintf("reload_from '%s' is not on the path to '%s'", boundary, target)
		}
	}

	// 4. Params
	declared := make(map[string]bool)
	for _, s := range target.CanonicalPath().States() {
		for _, p := range s.Params {
			declared[p] = true
		}
	}
	for _, name := range slices.Sorted(maps.Keys(step.Params)) {
		if !declared[name] {
			return fmt.Sprintf("param '%s' is not declared on the path to '%s'", name, target)
		}
	}
	return ""
}

func report(errs []string) error {
	if len(errs) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errs), strings.Join(errs, "\n- "))
	}
	return nil
}
