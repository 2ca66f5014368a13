// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/spec-miner/pkg/types"
)

// minerPromptTmpl is the prompt sent to the model for each snippet of
// specification prose. It frames the model as a silicon verification
// expert mining implementation-defined parameters. Per prd002-extraction R1.1.
var minerPromptTmpl = template.Must(template.New("miner").Parse(`Act as a Linux Kernel Engineer and Senior Silicon Verification Expert.

Extract hardware parameters from RISC-V specification snippets that are
required for system discovery tools (e.g., lscpu, dmidecode, /proc/cpuinfo).

Instructions:
1. Identify implementation-defined variables (e.g., cache levels, block sizes).
2. Capture fixed architectural constants (e.g., address widths, bit-field mappings).
3. Look for linguistic triggers: 'shall', 'may', 'should', 'implementation-specific'.
4. Focus on parameters critical for Device Tree (DT) generation and OS hardware abstraction.

For each parameter report:
- name: the parameter name (the spec's own identifier when one exists, e.g. "VLEN")
- description: what the parameter controls
- param_type: one of "integer", "boolean", "string", "range", "enum", "bits"
- classification: "named" if the spec names it, "unnamed" if implied but unnamed, "configuration-dependent" if it only exists under certain configurations
- constraints: architectural rules on legal values, each with "rule" and "is_hard_constraint"
- implementation_defined: whether the value is left to the implementation
- source_quote: the EXACT sentence from the snippet that grounds the parameter (verbatim, do not paraphrase)
- rationale: why an OS or discovery tool needs this parameter

Respond with a JSON object containing a "parameters" array. Do not include
any text outside the JSON object.

{{if .Examples}}{{.Examples}}

{{end}}Specification snippet:
{{.Snippet}}
`))

// renderPrompt executes the miner template for one snippet.
func renderPrompt(snippet, examples string) (string, error) {
	var buf bytes.Buffer
	err := minerPromptTmpl.Execute(&buf, struct{ Snippet, Examples string }{
		Snippet:  snippet,
		Examples: examples,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// responseBody is the JSON object the prompt asks the model to emit.
type responseBody struct {
	Parameters []types.Parameter `json:"parameters"`
}

// parseParameters decodes the model's JSON response. Models often wrap
// JSON in Markdown code fences despite instructions, so fences are
// stripped first. Per prd002-extraction R1.4.
func parseParameters(text string) ([]types.Parameter, error) {
	cleaned := stripCodeFences(text)

	var body responseBody
	if err := json.Unmarshal([]byte(cleaned), &body); err != nil {
		return nil, fmt.Errorf("parsing model response JSON: %w", err)
	}
	return body.Parameters, nil
}

// stripCodeFences removes a surrounding ```json ... ``` block if present.
func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the fence language tag line ("json").
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
