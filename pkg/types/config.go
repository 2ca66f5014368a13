package types

import "time"

// SegmenterConfig holds settings for document segmentation and chunking.
// Per prd001-segmentation R3.1-R3.3.
type SegmenterConfig struct {
	// ChunkTokens is the target chunk size in tokens (default 3000).
	// Chunk boundaries are computed in characters at roughly 4 chars
	// per token.
	ChunkTokens int `json:"chunk_tokens" yaml:"chunk_tokens"`

	// OverlapChars is the approximate overlap between consecutive
	// chunks in characters (default 200). Zero disables overlap.
	OverlapChars int `json:"overlap_chars" yaml:"overlap_chars"`
}

// MaxChars returns the chunk size cap in characters.
func (c SegmenterConfig) MaxChars() int {
	tokens := c.ChunkTokens
	if tokens <= 0 {
		tokens = 3000
	}
	return tokens * 4
}

// AIConfig holds shared settings for one model backend.
type AIConfig struct {
	// Model is the model identifier (e.g. "gemini-2.5-flash", "llama3.1").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for hosted APIs.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the backend endpoint (e.g. a local Ollama host).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxRetries is the number of retry attempts for failed calls (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// MaxTokens caps the response length per request (default 4000).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Temperature is the sampling temperature (default 0.0).
	Temperature float64 `json:"temperature" yaml:"temperature"`
}

// ExtractionConfig holds settings for the extraction stage.
// Per prd002-extraction R3.1-R3.5.
type ExtractionConfig struct {
	// Primary is the first-pass model backend.
	Primary AIConfig `json:"primary" yaml:"primary"`

	// Secondary is the independent second model used for consensus.
	Secondary AIConfig `json:"secondary" yaml:"secondary"`

	// RequestDelay is the minimum delay between model calls, kept even
	// on success to respect free-tier rate limits (default 5s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// ExamplesPath points at the UDB few-shot examples YAML file.
	ExamplesPath string `json:"examples_path" yaml:"examples_path"`

	// NumExamples is the number of UDB examples per prompt (default 12).
	NumExamples int `json:"num_examples" yaml:"num_examples"`

	// BalancedExamples selects an even mix of classifications.
	BalancedExamples bool `json:"balanced_examples" yaml:"balanced_examples"`

	// OutputDir is the directory for extraction artifacts (default "outputs").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// VerificationConfig holds settings for grounding verification.
// Per prd004-validation R3.1.
type VerificationConfig struct {
	// SimilarityThreshold is the minimum fuzzy-match ratio for a quote
	// to count as grounded (default 0.85).
	SimilarityThreshold float64 `json:"similarity_threshold" yaml:"similarity_threshold"`

	// EnableHallucinationDetection runs verification after extraction.
	EnableHallucinationDetection bool `json:"enable_hallucination_detection" yaml:"enable_hallucination_detection"`

	// EnableTagGeneration assigns tags after extraction.
	EnableTagGeneration bool `json:"enable_tag_generation" yaml:"enable_tag_generation"`
}

// StoreConfig holds settings for the parameter store.
// Per prd006-store R1.2.
type StoreConfig struct {
	// StoreDir is the base directory for the store database and exports
	// (default "store").
	StoreDir string `json:"store_dir" yaml:"store_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// OutputFormat selects the report serialization format.
type OutputFormat string

const (
	OutputYAML OutputFormat = "yaml"
	OutputJSON OutputFormat = "json"
)

// OutputConfig holds settings for report artifacts.
type OutputConfig struct {
	// Format selects yaml or json artifacts (default yaml).
	Format OutputFormat `json:"format" yaml:"format"`

	// ExtractedPath is the extracted-parameters artifact path.
	ExtractedPath string `json:"extracted_path" yaml:"extracted_path"`

	// ComparisonPath is the model-comparison artifact path.
	ComparisonPath string `json:"comparison_path" yaml:"comparison_path"`

	// ValidationPath is the validation-report artifact path.
	ValidationPath string `json:"validation_path" yaml:"validation_path"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Segmenter    SegmenterConfig    `json:"segmenter" yaml:"segmenter"`
	Extraction   ExtractionConfig   `json:"extraction" yaml:"extraction"`
	Verification VerificationConfig `json:"verification" yaml:"verification"`
	Store        StoreConfig        `json:"store" yaml:"store"`
	Output       OutputConfig       `json:"output" yaml:"output"`
}
