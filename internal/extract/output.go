// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/spec-miner/pkg/types"
)

// Default artifact file names under the outputs directory.
const (
	ExtractedFile  = "extracted_parameters.yaml"
	ComparisonFile = "model_comparison.yaml"
	ValidationFile = "validation_report.yaml"
)

// WriteArtifact serializes v to path in the requested format, creating
// parent directories as needed. Per prd002-extraction R4.1.
func WriteArtifact(path string, format types.OutputFormat, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	var data []byte
	var err error
	switch format {
	case types.OutputJSON:
		data, err = json.MarshalIndent(v, "", "  ")
	case types.OutputYAML, "":
		data, err = yaml.Marshal(v)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return fmt.Errorf("marshaling artifact: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// extractedArtifact is the on-disk shape of the extraction artifact.
type extractedArtifact struct {
	ExtractionInfo extractionInfo    `json:"extraction_info" yaml:"extraction_info"`
	Parameters     []types.Parameter `json:"parameters" yaml:"parameters"`
}

type extractionInfo struct {
	Model      string `json:"model" yaml:"model"`
	RunID      string `json:"run_id" yaml:"run_id"`
	TotalCount int    `json:"total_count" yaml:"total_count"`
}

// WriteExtraction writes the extracted-parameters artifact (R4.2).
func WriteExtraction(path string, format types.OutputFormat, extraction types.Extraction) error {
	artifact := extractedArtifact{
		ExtractionInfo: extractionInfo{
			Model:      extraction.Model,
			RunID:      extraction.RunID,
			TotalCount: len(extraction.Parameters),
		},
		Parameters: extraction.Parameters,
	}
	if artifact.Parameters == nil {
		artifact.Parameters = []types.Parameter{}
	}
	return WriteArtifact(path, format, artifact)
}

// ReadExtraction loads a previously written extraction artifact.
func ReadExtraction(path string) (types.Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Extraction{}, fmt.Errorf("reading extraction %s: %w", path, err)
	}

	var artifact extractedArtifact
	if err := yaml.Unmarshal(data, &artifact); err != nil {
		return types.Extraction{}, fmt.Errorf("parsing extraction %s: %w", path, err)
	}

	return types.Extraction{
		Parameters: artifact.Parameters,
		Model:      artifact.ExtractionInfo.Model,
		RunID:      artifact.ExtractionInfo.RunID,
	}, nil
}
