// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package consensus

import (
	"sort"

	"github.com/pdiddy/spec-miner/pkg/types"
)

// Summary holds the set-level counts of a comparison.
type Summary struct {
	TotalUniqueParams        int `json:"total_unique_params" yaml:"total_unique_params"`
	ConsensusParams          int `json:"consensus_params" yaml:"consensus_params"`
	OnlyPrimary              int `json:"only_primary" yaml:"only_primary"`
	OnlySecondary            int `json:"only_secondary" yaml:"only_secondary"`
	ClassificationMismatches int `json:"classification_mismatches" yaml:"classification_mismatches"`
}

// Mismatch records a consensus name whose classification differs
// between runs.
type Mismatch struct {
	Param                   string               `json:"param" yaml:"param"`
	PrimaryClassification   types.Classification `json:"primary_classification" yaml:"primary_classification"`
	SecondaryClassification types.Classification `json:"secondary_classification" yaml:"secondary_classification"`
}

// Report is the persisted model-comparison artifact. Per R3.1.
type Report struct {
	Summary                  Summary    `json:"summary" yaml:"summary"`
	Consensus                []string   `json:"consensus" yaml:"consensus"`
	OnlyPrimary              []string   `json:"only_primary" yaml:"only_primary"`
	OnlySecondary            []string   `json:"only_secondary" yaml:"only_secondary"`
	ClassificationMismatches []Mismatch `json:"classification_mismatches" yaml:"classification_mismatches"`
}

// Compare produces the comparison report for two extraction runs: the
// agreement partition, the per-side exclusives, and every consensus
// name whose classification disagrees. Name lists are sorted.
func Compare(primary, secondary []types.Parameter) *Report {
	primaryByName := types.ByName(primary)
	secondaryByName := types.ByName(secondary)

	var consensus, onlyPrimary, onlySecondary []string
	var mismatches []Mismatch

	for _, name := range unionNames(primaryByName, secondaryByName) {
		p, inPrimary := primaryByName[name]
		s, inSecondary := secondaryByName[name]

		switch {
		case inPrimary && inSecondary:
			consensus = append(consensus, name)
			if p.Classification != s.Classification {
				mismatches = append(mismatches, Mismatch{
					Param:                   name,
					PrimaryClassification:   p.Classification,
					SecondaryClassification: s.Classification,
				})
			}
		case inPrimary:
			onlyPrimary = append(onlyPrimary, name)
		default:
			onlySecondary = append(onlySecondary, name)
		}
	}

	sort.Slice(mismatches, func(i, j int) bool { return mismatches[i].Param < mismatches[j].Param })

	return &Report{
		Summary: Summary{
			TotalUniqueParams:        len(consensus) + len(onlyPrimary) + len(onlySecondary),
			ConsensusParams:          len(consensus),
			OnlyPrimary:              len(onlyPrimary),
			OnlySecondary:            len(onlySecondary),
			ClassificationMismatches: len(mismatches),
		},
		Consensus:                emptyIfNil(consensus),
		OnlyPrimary:              emptyIfNil(onlyPrimary),
		OnlySecondary:            emptyIfNil(onlySecondary),
		ClassificationMismatches: mismatches,
	}
}

// emptyIfNil keeps report lists as empty arrays rather than nulls in
// serialized artifacts.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
