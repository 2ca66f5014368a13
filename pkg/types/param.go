// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "go.yaml.in/yaml/v3"

// ParamType is the value kind of an extracted parameter.
// Per prd002-extraction R1.2.
type ParamType string

const (
	TypeInteger ParamType = "integer"
	TypeBoolean ParamType = "boolean"
	TypeString  ParamType = "string"
	TypeRange   ParamType = "range"
	TypeEnum    ParamType = "enum"
	TypeBits    ParamType = "bits"
)

// ValidParamTypes is the closed set of accepted ParamType values.
var ValidParamTypes = map[ParamType]bool{
	TypeInteger: true,
	TypeBoolean: true,
	TypeString:  true,
	TypeRange:   true,
	TypeEnum:    true,
	TypeBits:    true,
}

// Classification records whether the source text names a parameter
// explicitly, describes it only in prose, or ties it to implementation
// configuration. Per prd002-extraction R1.3.
type Classification string

const (
	ClassNamed     Classification = "named"
	ClassUnnamed   Classification = "unnamed"
	ClassConfigDep Classification = "configuration-dependent"
)

// ValidClassifications is the closed set of accepted Classification values.
var ValidClassifications = map[Classification]bool{
	ClassNamed:     true,
	ClassUnnamed:   true,
	ClassConfigDep: true,
}

// Constraint is one architectural rule attached to a parameter.
type Constraint struct {
	// Rule is the constraint text (e.g. "Must be a power of two").
	Rule string `json:"rule" yaml:"rule"`

	// IsHardConstraint is true when the ISA forbids violating the rule.
	IsHardConstraint bool `json:"is_hard_constraint" yaml:"is_hard_constraint"`
}

// Parameter is one hardware-configurable behavior extracted from
// specification prose, with the verbatim evidence that grounds it.
// Per prd002-extraction R1.1-R1.6.
type Parameter struct {
	// Name is a unique snake_case identifier (e.g. "cache_block_size").
	Name string `json:"name" yaml:"name"`

	// TagName is the synthesized symbolic identifier. Empty until the
	// tag stage assigns one. Per prd005-tagging R1.1.
	TagName string `json:"tag_name,omitempty" yaml:"tag_name,omitempty"`

	// Description is the high-level architectural purpose.
	Description string `json:"description" yaml:"description"`

	// ParamType is the parameter's value kind.
	ParamType ParamType `json:"param_type" yaml:"param_type"`

	// Classification is immutable once extraction produces it; later
	// stages never rewrite it. Defaults to unnamed.
	Classification Classification `json:"classification" yaml:"classification"`

	// Constraints lists architectural rules governing legal values.
	Constraints []Constraint `json:"constraints" yaml:"constraints"`

	// ImplementationDefined is true when the text leaves the value to
	// the implementation. Defaults to true.
	ImplementationDefined bool `json:"implementation_defined" yaml:"implementation_defined"`

	// SourceQuote is verbatim text from the manual, kept for grounding
	// verification. Per prd004-validation R1.1.
	SourceQuote string `json:"source_quote" yaml:"source_quote"`

	// Rationale is the extractor's reasoning for why this is a parameter.
	Rationale string `json:"rationale" yaml:"rationale"`

	// ExtractionMetadata is an open key/value map for provenance added
	// by later stages (confidence, run IDs). Per prd003-consensus R2.3.
	ExtractionMetadata map[string]any `json:"extraction_metadata,omitempty" yaml:"extraction_metadata,omitempty"`
}

// UnmarshalYAML decodes a parameter, defaulting omitted optional fields:
// classification falls back to unnamed and implementation_defined to true.
// Per prd002-extraction R4.2.
func (p *Parameter) UnmarshalYAML(value *yaml.Node) error {
	var aux struct {
		Name                  string         `yaml:"name"`
		TagName               string         `yaml:"tag_name"`
		Description           string         `yaml:"description"`
		ParamType             ParamType      `yaml:"param_type"`
		Classification        Classification `yaml:"classification"`
		Constraints           []Constraint   `yaml:"constraints"`
		ImplementationDefined *bool          `yaml:"implementation_defined"`
		SourceQuote           string         `yaml:"source_quote"`
		Rationale             string         `yaml:"rationale"`
		ExtractionMetadata    map[string]any `yaml:"extraction_metadata"`
	}
	if err := value.Decode(&aux); err != nil {
		return err
	}

	p.Name = aux.Name
	p.TagName = aux.TagName
	p.Description = aux.Description
	p.ParamType = aux.ParamType
	p.Classification = aux.Classification
	p.Constraints = aux.Constraints
	p.SourceQuote = aux.SourceQuote
	p.Rationale = aux.Rationale
	p.ExtractionMetadata = aux.ExtractionMetadata

	if p.Classification == "" {
		p.Classification = ClassUnnamed
	}
	if p.Constraints == nil {
		p.Constraints = []Constraint{}
	}
	p.ImplementationDefined = true
	if aux.ImplementationDefined != nil {
		p.ImplementationDefined = *aux.ImplementationDefined
	}
	return nil
}

// Clone returns a deep copy of the parameter. Stages that attach metadata
// or tags operate on the copy so upstream values are never altered in
// place. Per prd003-consensus R2.2.
func (p Parameter) Clone() Parameter {
	out := p
	if p.Constraints != nil {
		out.Constraints = make([]Constraint, len(p.Constraints))
		copy(out.Constraints, p.Constraints)
	}
	if p.ExtractionMetadata != nil {
		out.ExtractionMetadata = make(map[string]any, len(p.ExtractionMetadata))
		for k, v := range p.ExtractionMetadata {
			out.ExtractionMetadata[k] = v
		}
	}
	return out
}

// Extraction is the persisted result of one extraction pass: the set of
// parameters one model produced for one span of text.
type Extraction struct {
	// Parameters holds the extracted parameter records.
	Parameters []Parameter `json:"parameters" yaml:"parameters"`

	// Model identifies the model that produced this extraction.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// RunID ties the extraction to one pipeline run.
	RunID string `json:"run_id,omitempty" yaml:"run_id,omitempty"`

	// Error records an extraction failure message. Empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ByName indexes parameters by name. The first occurrence of a name wins.
func ByName(params []Parameter) map[string]Parameter {
	m := make(map[string]Parameter, len(params))
	for _, p := range params {
		if _, ok := m[p.Name]; !ok {
			m[p.Name] = p
		}
	}
	return m
}
