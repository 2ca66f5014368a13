// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package consensus reconciles independent extraction runs into a single
// merged parameter set with per-parameter confidence.
// Implements: prd003-consensus (R1-R3).
package consensus

import (
	"sort"

	"github.com/pdiddy/spec-miner/pkg/types"
)

// Confidence grades the agreement between two extraction runs for one
// parameter name.
type Confidence string

const (
	// ConfidenceHigh means both runs found the name with the same
	// classification.
	ConfidenceHigh Confidence = "HIGH"

	// ConfidenceMedium means both runs found the name but disagree on
	// classification.
	ConfidenceMedium Confidence = "MEDIUM"

	// ConfidenceLow means only one run found the name.
	ConfidenceLow Confidence = "LOW"
)

// Metadata keys attached to merged parameters.
const (
	MetaConfidence       = "confidence"
	MetaFoundByPrimary   = "found_by_primary"
	MetaFoundBySecondary = "found_by_secondary"
)

// ConfidenceFor computes the confidence label for a name given both
// runs' name-indexed parameter sets. The label is a pure function of
// set membership and classification equality. Per R1.1-R1.3.
func ConfidenceFor(name string, primary, secondary map[string]types.Parameter) Confidence {
	p, inPrimary := primary[name]
	s, inSecondary := secondary[name]

	if inPrimary != inSecondary {
		return ConfidenceLow
	}
	if inPrimary && inSecondary {
		if p.Classification == s.Classification {
			return ConfidenceHigh
		}
		return ConfidenceMedium
	}
	return ConfidenceLow
}

// Merge combines two extraction runs into one consensus set covering the
// union of parameter names. The primary run's record is preferred when
// both runs found a name. Each merged record is a clone carrying its
// confidence and provenance in extraction_metadata; the inputs are never
// modified. Output is ordered by name so merges are deterministic.
// Per R2.1-R2.4.
func Merge(primary, secondary []types.Parameter) []types.Parameter {
	primaryByName := types.ByName(primary)
	secondaryByName := types.ByName(secondary)

	names := unionNames(primaryByName, secondaryByName)

	merged := make([]types.Parameter, 0, len(names))
	for _, name := range names {
		confidence := ConfidenceFor(name, primaryByName, secondaryByName)

		source, inPrimary := primaryByName[name]
		if !inPrimary {
			source = secondaryByName[name]
		}

		p := source.Clone()
		if p.ExtractionMetadata == nil {
			p.ExtractionMetadata = make(map[string]any, 3)
		}
		p.ExtractionMetadata[MetaConfidence] = string(confidence)
		p.ExtractionMetadata[MetaFoundByPrimary] = inPrimary
		_, inSecondary := secondaryByName[name]
		p.ExtractionMetadata[MetaFoundBySecondary] = inSecondary

		merged = append(merged, p)
	}

	return merged
}

// unionNames returns the sorted union of names across both sets.
func unionNames(primary, secondary map[string]types.Parameter) []string {
	seen := make(map[string]bool, len(primary)+len(secondary))
	var names []string
	for name := range primary {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for name := range secondary {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
