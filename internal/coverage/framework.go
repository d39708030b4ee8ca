// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package coverage audits the corpus against a versioned taxonomy
// framework and maintains the research agenda that closes the detected
// gaps. See docs/ARCHITECTURE § Coverage.
package coverage

import (
	"fmt"

	"github.com/spf13/afero"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

// DefaultFrameworkFile is the framework path used when the
// configuration leaves it empty.
const DefaultFrameworkFile = "coverage-framework.yaml"

// LoadFramework reads and validates a taxonomy framework. Validation
// fails fast: a category without an alias entry, a duplicate category
// name, or an alias pointing at an unknown category is a load error,
// not a silent skip (prd005-coverage R1.5).
func LoadFramework(fsys afero.Fs, path string) (*types.CoverageFramework, error) {
	raw, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading framework %s: %w", path, err)
	}

	var fw types.CoverageFramework
	if err := yaml.Unmarshal(raw, &fw); err != nil {
		return nil, fmt.Errorf("parsing framework %s: %w", path, err)
	}
	if err := validateFramework(&fw); err != nil {
		return nil, fmt.Errorf("validating framework %s: %w", path, err)
	}
	return &fw, nil
}

func validateFramework(fw *types.CoverageFramework) error {
	if fw.Version == "" {
		return fmt.Errorf("framework has no version")
	}
	if len(fw.Categories) == 0 {
		return fmt.Errorf("framework has no categories")
	}
	if fw.Aliases == nil {
		fw.Aliases = map[string][]string{}
	}

	seen := map[string]bool{}
	for _, cat := range fw.Categories {
		if cat.Name == "" {
			return fmt.Errorf("category with empty name")
		}
		if seen[cat.Name] {
			return fmt.Errorf("duplicate category %q", cat.Name)
		}
		seen[cat.Name] = true

		switch cat.Depth {
		case types.DepthOverview, types.DepthIntermediate, types.DepthDeep:
		default:
			return fmt.Errorf("category %q: unknown depth %q", cat.Name, cat.Depth)
		}
		switch cat.Priority {
		case types.PriorityCritical, types.PriorityHigh, types.PriorityMedium, types.PriorityLow:
		default:
			return fmt.Errorf("category %q: unknown priority %q", cat.Name, cat.Priority)
		}

		// Every taxonomy category maps onto physical folders through
		// the alias table. A category without an entry is a load
		// error, not a same-name fallback discovered mid-audit.
		if len(fw.Aliases[cat.Name]) == 0 {
			return fmt.Errorf("category %q has no alias entry", cat.Name)
		}
	}

	for name := range fw.Aliases {
		if !seen[name] {
			return fmt.Errorf("alias entry %q does not match any category", name)
		}
	}
	return nil
}

// depthMultiplier scales the expected document count for a category's
// target depth (R2.3).
func depthMultiplier(d types.Depth) int {
	switch d {
	case types.DepthIntermediate:
		return 2
	case types.DepthDeep:
		return 3
	}
	return 1
}
