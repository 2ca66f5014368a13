package consensus

import (
	"testing"

	"github.com/pdiddy/spec-miner/pkg/types"
)

func param(name string, class types.Classification) types.Parameter {
	return types.Parameter{
		Name:           name,
		Description:    "description of " + name,
		ParamType:      types.TypeInteger,
		Classification: class,
		SourceQuote:    "quote for " + name,
		Rationale:      "rationale for " + name,
	}
}

func byName(params ...types.Parameter) map[string]types.Parameter {
	return types.ByName(params)
}

func TestConfidenceFor(t *testing.T) {
	tests := []struct {
		name      string
		primary   map[string]types.Parameter
		secondary map[string]types.Parameter
		want      Confidence
	}{
		{
			name:      "both agree on classification",
			primary:   byName(param("cache_size", types.ClassUnnamed)),
			secondary: byName(param("cache_size", types.ClassUnnamed)),
			want:      ConfidenceHigh,
		},
		{
			name:      "both found with differing classification",
			primary:   byName(param("cache_size", types.ClassUnnamed)),
			secondary: byName(param("cache_size", types.ClassNamed)),
			want:      ConfidenceMedium,
		},
		{
			name:      "only primary found it",
			primary:   byName(param("cache_size", types.ClassUnnamed)),
			secondary: byName(),
			want:      ConfidenceLow,
		},
		{
			name:      "only secondary found it",
			primary:   byName(),
			secondary: byName(param("cache_size", types.ClassUnnamed)),
			want:      ConfidenceLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConfidenceFor("cache_size", tt.primary, tt.secondary)
			if got != tt.want {
				t.Errorf("ConfidenceFor() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMerge_UnionCardinality(t *testing.T) {
	primary := []types.Parameter{
		param("cache_size", types.ClassUnnamed),
		param("vlen", types.ClassNamed),
	}
	secondary := []types.Parameter{
		param("cache_size", types.ClassUnnamed),
		param("num_pmp_entries", types.ClassConfigDep),
	}

	merged := Merge(primary, secondary)
	if len(merged) != 3 {
		t.Fatalf("len(merged) = %d, want 3 (union of names)", len(merged))
	}

	// Output is sorted by name.
	wantOrder := []string{"cache_size", "num_pmp_entries", "vlen"}
	for i, name := range wantOrder {
		if merged[i].Name != name {
			t.Errorf("merged[%d].Name = %q, want %q", i, merged[i].Name, name)
		}
	}
}

func TestMerge_PrefersPrimaryRecord(t *testing.T) {
	p := param("cache_size", types.ClassUnnamed)
	p.Description = "primary description"
	s := param("cache_size", types.ClassUnnamed)
	s.Description = "secondary description"

	merged := Merge([]types.Parameter{p}, []types.Parameter{s})
	if merged[0].Description != "primary description" {
		t.Errorf("Description = %q, want the primary record", merged[0].Description)
	}
}

func TestMerge_Metadata(t *testing.T) {
	primary := []types.Parameter{
		param("cache_size", types.ClassUnnamed),
		param("vlen", types.ClassNamed),
	}
	secondary := []types.Parameter{
		param("cache_size", types.ClassNamed),
		param("num_pmp_entries", types.ClassConfigDep),
	}

	merged := Merge(primary, secondary)

	wantMeta := map[string]struct {
		confidence  Confidence
		inPrimary   bool
		inSecondary bool
	}{
		"cache_size":      {ConfidenceMedium, true, true},
		"vlen":            {ConfidenceLow, true, false},
		"num_pmp_entries": {ConfidenceLow, false, true},
	}

	for _, m := range merged {
		want := wantMeta[m.Name]
		if m.ExtractionMetadata[MetaConfidence] != string(want.confidence) {
			t.Errorf("%s: confidence = %v, want %s", m.Name, m.ExtractionMetadata[MetaConfidence], want.confidence)
		}
		if m.ExtractionMetadata[MetaFoundByPrimary] != want.inPrimary {
			t.Errorf("%s: found_by_primary = %v, want %v", m.Name, m.ExtractionMetadata[MetaFoundByPrimary], want.inPrimary)
		}
		if m.ExtractionMetadata[MetaFoundBySecondary] != want.inSecondary {
			t.Errorf("%s: found_by_secondary = %v, want %v", m.Name, m.ExtractionMetadata[MetaFoundBySecondary], want.inSecondary)
		}
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	primary := []types.Parameter{param("cache_size", types.ClassUnnamed)}
	secondary := []types.Parameter{param("cache_size", types.ClassNamed)}

	Merge(primary, secondary)

	if primary[0].ExtractionMetadata != nil {
		t.Error("Merge attached metadata to the primary input record")
	}
	if secondary[0].ExtractionMetadata != nil {
		t.Error("Merge attached metadata to the secondary input record")
	}
}

func TestMerge_EmptyInputs(t *testing.T) {
	if got := Merge(nil, nil); len(got) != 0 {
		t.Errorf("Merge(nil, nil) produced %d records, want 0", len(got))
	}

	only := []types.Parameter{param("vlen", types.ClassNamed)}
	merged := Merge(only, nil)
	if len(merged) != 1 {
		t.Fatalf("len(merged) = %d, want 1", len(merged))
	}
	if merged[0].ExtractionMetadata[MetaConfidence] != string(ConfidenceLow) {
		t.Errorf("confidence = %v, want LOW for single-run parameter", merged[0].ExtractionMetadata[MetaConfidence])
	}
}

func TestCompare(t *testing.T) {
	primary := []types.Parameter{
		param("cache_size", types.ClassUnnamed),
		param("vlen", types.ClassNamed),
		param("mtvec_alignment", types.ClassUnnamed),
	}
	secondary := []types.Parameter{
		param("cache_size", types.ClassNamed),
		param("vlen", types.ClassNamed),
		param("num_pmp_entries", types.ClassConfigDep),
	}

	report := Compare(primary, secondary)

	if report.Summary.TotalUniqueParams != 4 {
		t.Errorf("TotalUniqueParams = %d, want 4", report.Summary.TotalUniqueParams)
	}
	if report.Summary.ConsensusParams != 2 {
		t.Errorf("ConsensusParams = %d, want 2", report.Summary.ConsensusParams)
	}
	if report.Summary.OnlyPrimary != 1 || report.Summary.OnlySecondary != 1 {
		t.Errorf("exclusives = %d/%d, want 1/1", report.Summary.OnlyPrimary, report.Summary.OnlySecondary)
	}
	if report.Summary.ClassificationMismatches != 1 {
		t.Errorf("ClassificationMismatches = %d, want 1", report.Summary.ClassificationMismatches)
	}

	if len(report.OnlyPrimary) != 1 || report.OnlyPrimary[0] != "mtvec_alignment" {
		t.Errorf("OnlyPrimary = %v", report.OnlyPrimary)
	}
	if len(report.OnlySecondary) != 1 || report.OnlySecondary[0] != "num_pmp_entries" {
		t.Errorf("OnlySecondary = %v", report.OnlySecondary)
	}

	if len(report.ClassificationMismatches) != 1 {
		t.Fatalf("ClassificationMismatches = %v", report.ClassificationMismatches)
	}
	m := report.ClassificationMismatches[0]
	if m.Param != "cache_size" || m.PrimaryClassification != types.ClassUnnamed || m.SecondaryClassification != types.ClassNamed {
		t.Errorf("mismatch = %+v", m)
	}
}

func TestCompare_EmptyRuns(t *testing.T) {
	report := Compare(nil, nil)
	if report.Summary.TotalUniqueParams != 0 {
		t.Errorf("TotalUniqueParams = %d, want 0", report.Summary.TotalUniqueParams)
	}
	if report.Consensus == nil || report.OnlyPrimary == nil || report.OnlySecondary == nil {
		t.Error("report lists must be empty, not nil")
	}
}
