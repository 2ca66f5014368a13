// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package examples

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/spec-miner/pkg/types"
)

const fixtureYAML = `examples:
  - name: VLEN
    description: Vector register length in bits
    param_type: integer
    classification: named
    implementation_defined: true
    source_quote: "VLEN is implementation-defined"
    constraints:
      - rule: "Must be a power of 2"
        is_hard_constraint: true
  - name: CACHE_BLOCK_SIZE
    description: Size of a cache block in bytes
    param_type: integer
    classification: unnamed
    implementation_defined: true
    source_quote: "The size of the cache block is implementation-defined"
  - name: MISA_WRITABLE
    description: Whether misa is writable
    param_type: boolean
    classification: configuration-dependent
    implementation_defined: true
    source_quote: "misa fields may be writable"
  - name: MXLEN
    description: Machine XLEN
    param_type: integer
    classification: named
    implementation_defined: false
    source_quote: "MXLEN is the width of an integer register in M-mode"
`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "udb_examples.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	loader, err := Load(writeFixture(t, fixtureYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loader.Len() != 4 {
		t.Fatalf("Len = %d, want 4", loader.Len())
	}
}

func TestLoadMissingFile(t *testing.T) {
	loader, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load missing file: %v", err)
	}
	if loader.Len() != 0 {
		t.Fatalf("Len = %d, want 0 for missing file", loader.Len())
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	if _, err := Load(writeFixture(t, "examples:\n  - {name: broken\n")); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoadDefaults(t *testing.T) {
	loader, err := Load(writeFixture(t, "examples:\n  - name: BARE\n    description: minimal\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ex := loader.Examples(1, "")[0]
	if ex.ParamType != "string" {
		t.Errorf("ParamType = %q, want string", ex.ParamType)
	}
	if ex.Classification != types.ClassNamed {
		t.Errorf("Classification = %q, want named", ex.Classification)
	}
	if ex.ImplementationDefined {
		t.Error("ImplementationDefined should default to false")
	}
	if ex.Constraints == nil {
		t.Error("Constraints should default to empty slice, not nil")
	}
}

func TestExamplesFilter(t *testing.T) {
	loader, err := Load(writeFixture(t, fixtureYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	named := loader.Examples(10, types.ClassNamed)
	if len(named) != 2 {
		t.Fatalf("named examples = %d, want 2", len(named))
	}
	for _, ex := range named {
		if ex.Classification != types.ClassNamed {
			t.Errorf("filter leaked classification %q", ex.Classification)
		}
	}

	limited := loader.Examples(1, "")
	if len(limited) != 1 || limited[0].Name != "VLEN" {
		t.Errorf("Examples(1) = %+v, want first example only", limited)
	}
}

func TestFormatForPrompt(t *testing.T) {
	loader, err := Load(writeFixture(t, fixtureYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	prompt := loader.FormatForPrompt(2)
	if !strings.Contains(prompt, "Example 1:") || !strings.Contains(prompt, "Example 2:") {
		t.Errorf("prompt missing example markers:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Name: VLEN") {
		t.Errorf("prompt missing first example name:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Must be a power of 2") {
		t.Errorf("prompt missing constraint rule:\n%s", prompt)
	}
	if strings.Contains(prompt, "MISA_WRITABLE") {
		t.Errorf("prompt should stop at 2 examples:\n%s", prompt)
	}
}

func TestFormatForPromptEmpty(t *testing.T) {
	loader := &Loader{}
	if got := loader.FormatForPrompt(3); got != "No UDB examples available." {
		t.Errorf("empty prompt = %q", got)
	}
}

func TestBalancedPrompt(t *testing.T) {
	loader, err := Load(writeFixture(t, fixtureYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	prompt := loader.BalancedPrompt(3)
	for _, want := range []string{"[NAMED]", "[UNNAMED]", "[CONFIGURATION-DEPENDENT]"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("balanced prompt missing %s:\n%s", want, prompt)
		}
	}
	// One per classification: the second named example stays out.
	if strings.Contains(prompt, "MXLEN") {
		t.Errorf("balanced prompt should take n/3 per classification:\n%s", prompt)
	}
}
