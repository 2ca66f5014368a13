// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package examples loads few-shot example parameters from the RISC-V
// Unified Database (UDB) export for prompt construction.
// Implements: prd002-extraction (R2).
package examples

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/spec-miner/pkg/types"
)

// Example is one UDB parameter used for few-shot prompting.
type Example struct {
	Name                  string               `yaml:"name"`
	Description           string               `yaml:"description"`
	ParamType             string               `yaml:"param_type"`
	Classification        types.Classification `yaml:"classification"`
	ImplementationDefined bool                 `yaml:"implementation_defined"`
	SourceQuote           string               `yaml:"source_quote"`
	Constraints           []types.Constraint   `yaml:"constraints"`
}

// examplesFile is the on-disk shape of the UDB examples export.
type examplesFile struct {
	Examples []rawExample `yaml:"examples"`
}

// rawExample tolerates missing optional fields; Load applies defaults.
type rawExample struct {
	Name                  string               `yaml:"name"`
	Description           string               `yaml:"description"`
	ParamType             string               `yaml:"param_type"`
	Classification        types.Classification `yaml:"classification"`
	ImplementationDefined *bool                `yaml:"implementation_defined"`
	SourceQuote           string               `yaml:"source_quote"`
	Constraints           []types.Constraint   `yaml:"constraints"`
}

// Loader holds the loaded example set.
type Loader struct {
	examples []Example
}

// Load reads the UDB examples YAML file. A missing file yields an
// empty loader rather than an error; missing optional fields default
// to safe values. Malformed YAML is the only failure. Per R2.1-R2.2.
func Load(path string) (*Loader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Loader{}, nil
		}
		return nil, fmt.Errorf("reading UDB examples %s: %w", path, err)
	}

	var file examplesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing UDB examples %s: %w", path, err)
	}

	loader := &Loader{examples: make([]Example, 0, len(file.Examples))}
	for _, raw := range file.Examples {
		ex := Example{
			Name:           raw.Name,
			Description:    raw.Description,
			ParamType:      raw.ParamType,
			Classification: raw.Classification,
			SourceQuote:    raw.SourceQuote,
			Constraints:    raw.Constraints,
		}
		if ex.ParamType == "" {
			ex.ParamType = string(types.TypeString)
		}
		if ex.Classification == "" {
			ex.Classification = types.ClassNamed
		}
		if raw.ImplementationDefined != nil {
			ex.ImplementationDefined = *raw.ImplementationDefined
		}
		if ex.Constraints == nil {
			ex.Constraints = []types.Constraint{}
		}
		loader.examples = append(loader.examples, ex)
	}

	return loader, nil
}

// Len returns the number of loaded examples.
func (l *Loader) Len() int {
	return len(l.examples)
}

// Examples returns up to n examples, optionally filtered by
// classification (empty matches all).
func (l *Loader) Examples(n int, classification types.Classification) []Example {
	var out []Example
	for _, ex := range l.examples {
		if classification != "" && ex.Classification != classification {
			continue
		}
		out = append(out, ex)
		if len(out) == n {
			break
		}
	}
	return out
}

// FormatForPrompt renders up to n examples as prompt text.
func (l *Loader) FormatForPrompt(n int) string {
	examples := l.Examples(n, "")
	if len(examples) == 0 {
		return "No UDB examples available."
	}

	var b strings.Builder
	b.WriteString("Here are example parameters from the RISC-V Unified Database:\n\n")
	for i, ex := range examples {
		fmt.Fprintf(&b, "Example %d:\n", i+1)
		writeExample(&b, ex, false)
	}
	return b.String()
}

// BalancedPrompt renders an even mix of the three classifications,
// n/3 examples each.
func (l *Loader) BalancedPrompt(n int) string {
	perType := n / 3

	var all []Example
	all = append(all, l.Examples(perType, types.ClassNamed)...)
	all = append(all, l.Examples(perType, types.ClassUnnamed)...)
	all = append(all, l.Examples(perType, types.ClassConfigDep)...)

	if len(all) == 0 {
		return "No UDB examples available."
	}

	var b strings.Builder
	b.WriteString("Here are example parameters from the RISC-V Unified Database (balanced across all types):\n\n")
	for i, ex := range all {
		fmt.Fprintf(&b, "Example %d [%s]:\n", i+1, strings.ToUpper(string(ex.Classification)))
		writeExample(&b, ex, true)
	}
	return b.String()
}

// writeExample renders one example. Balanced mode truncates long
// quotes to keep prompt budgets predictable.
func writeExample(b *strings.Builder, ex Example, truncateQuote bool) {
	fmt.Fprintf(b, "  Name: %s\n", ex.Name)
	fmt.Fprintf(b, "  Description: %s\n", ex.Description)
	fmt.Fprintf(b, "  Type: %s\n", ex.ParamType)
	if !truncateQuote {
		fmt.Fprintf(b, "  Classification: %s\n", ex.Classification)
	}
	fmt.Fprintf(b, "  Implementation-defined: %v\n", ex.ImplementationDefined)

	if ex.SourceQuote != "" {
		quote := ex.SourceQuote
		if truncateQuote && len(quote) > 100 {
			quote = quote[:100] + "..."
		}
		fmt.Fprintf(b, "  Source Quote: %q\n", quote)
	}

	if !truncateQuote && len(ex.Constraints) > 0 {
		b.WriteString("  Constraints:\n")
		for _, c := range ex.Constraints {
			fmt.Fprintf(b, "    - %s\n", c.Rule)
		}
	}

	b.WriteString("\n")
}
