// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/spec-miner/internal/consensus"
	"github.com/pdiddy/spec-miner/internal/examples"
	"github.com/pdiddy/spec-miner/internal/extract"
	"github.com/pdiddy/spec-miner/internal/segment"
	"github.com/pdiddy/spec-miner/internal/tag"
	"github.com/pdiddy/spec-miner/internal/verify"
	"github.com/pdiddy/spec-miner/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract <spec-file>",
	Short: "Extract implementation-defined parameters from a specification chapter",
	Long: `Extract segments a chapter into chunks and runs each chunk through the
primary model backend (Gemini). With --secondary-model a second backend
(Ollama) extracts independently and the two result sets are merged by
consensus, with agreement recorded per parameter.

Artifacts are written under --output-dir: extracted_parameters.yaml,
model_comparison.yaml (dual-model runs), and validation_report.yaml
(with --verify).`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().Int("chapter", 0, "chapter number to extract (required)")
	extractCmd.Flags().String("primary-model", "gemini-2.5-flash", "primary model identifier")
	extractCmd.Flags().String("secondary-model", "", "secondary model for consensus (e.g. llama3.1); empty disables")
	extractCmd.Flags().String("api-key", "", "Gemini API key (default: .secrets/gemini-api-key)")
	extractCmd.Flags().String("ollama-url", "", "Ollama base URL (default: .secrets/ollama-base-url or http://localhost:11434)")
	extractCmd.Flags().String("examples", "data/udb_examples.yaml", "UDB few-shot examples file")
	extractCmd.Flags().Int("num-examples", 12, "number of few-shot examples per prompt")
	extractCmd.Flags().Bool("balanced", false, "balance few-shot examples across classifications")
	extractCmd.Flags().Duration("delay", 0, "delay between model calls (default 5s)")
	extractCmd.Flags().Int("chunk-tokens", 0, "target chunk size in tokens (default 3000)")
	extractCmd.Flags().Int("overlap", 200, "approximate chunk overlap in characters")
	extractCmd.Flags().String("output-dir", "outputs", "directory for extraction artifacts")
	extractCmd.Flags().String("format", "yaml", "artifact format: yaml or json")
	extractCmd.Flags().Bool("verify", false, "verify extracted quotes against the chapter text")
	extractCmd.Flags().Float64("threshold", 0, "fuzzy-match similarity threshold (default 0.85)")
	extractCmd.Flags().Bool("tags", false, "synthesize UDB-style tag names for extracted parameters")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	chapterNum, _ := cmd.Flags().GetInt("chapter")
	if chapterNum <= 0 {
		return fmt.Errorf("provide a chapter number with --chapter")
	}

	doc, err := segment.Load(args[0])
	if err != nil {
		return err
	}
	ch, ok := doc.Chapter(chapterNum)
	if !ok {
		return fmt.Errorf("chapter %d not found in %s", chapterNum, args[0])
	}

	chunkTokens, _ := cmd.Flags().GetInt("chunk-tokens")
	overlap, _ := cmd.Flags().GetInt("overlap")
	segCfg := types.SegmenterConfig{ChunkTokens: chunkTokens, OverlapChars: overlap}
	chunks := segment.ChunkText(ch.Content, segCfg.MaxChars(), segCfg.OverlapChars)
	fmt.Fprintf(os.Stderr, "chapter %d %q: %d chunk(s)\n", ch.Number, ch.Title, len(chunks))

	cfg, err := extractionConfig(cmd)
	if err != nil {
		return err
	}

	runner := &extract.Runner{
		Primary: &extract.GeminiBackend{Config: cfg.Primary},
		Config:  cfg,
	}
	if cfg.Secondary.Model != "" {
		runner.Secondary = &extract.OllamaBackend{Config: cfg.Secondary}
	}

	examplesText, err := renderExamples(cfg)
	if err != nil {
		return err
	}

	result, err := runner.Run(context.Background(), chunks, examplesText, os.Stdout)
	if err != nil {
		return err
	}

	format := outputFormat(cmd)
	outputDir, _ := cmd.Flags().GetString("output-dir")

	// Dual-model runs merge by consensus; the merged set becomes the
	// extraction artifact and the comparison report records agreement.
	final := result.Primary
	if result.Secondary != nil {
		report := consensus.Compare(result.Primary.Parameters, result.Secondary.Parameters)
		comparisonPath := filepath.Join(outputDir, extract.ComparisonFile)
		if err := extract.WriteArtifact(comparisonPath, format, report); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s (consensus: %d, primary-only: %d, secondary-only: %d)\n",
			comparisonPath, report.Summary.ConsensusParams, report.Summary.OnlyPrimary, report.Summary.OnlySecondary)

		final.Parameters = consensus.Merge(result.Primary.Parameters, result.Secondary.Parameters)
	}

	if wantTags, _ := cmd.Flags().GetBool("tags"); wantTags {
		assignTags(final.Parameters, ch.Content)
	}

	extractedPath := filepath.Join(outputDir, extract.ExtractedFile)
	if err := extract.WriteExtraction(extractedPath, format, final); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%d parameters)\n", extractedPath, len(final.Parameters))

	if wantVerify, _ := cmd.Flags().GetBool("verify"); wantVerify {
		threshold, _ := cmd.Flags().GetFloat64("threshold")
		report := verify.NewVerifier(ch.Content, threshold).VerifyAll(final.Parameters).BuildReport()

		validationPath := filepath.Join(outputDir, extract.ValidationFile)
		if err := extract.WriteArtifact(validationPath, format, report); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s (verified: %d, suspicious: %d, hallucinated: %d)\n",
			validationPath, report.Summary.Verified, report.Summary.Suspicious, report.Summary.Hallucinated)
	}

	return nil
}

// extractionConfig assembles the extraction configuration from flags
// and loaded secrets.
func extractionConfig(cmd *cobra.Command) (types.ExtractionConfig, error) {
	primaryModel, _ := cmd.Flags().GetString("primary-model")
	secondaryModel, _ := cmd.Flags().GetString("secondary-model")
	apiKey, _ := cmd.Flags().GetString("api-key")
	ollamaURL, _ := cmd.Flags().GetString("ollama-url")
	delay, _ := cmd.Flags().GetDuration("delay")
	examplesPath, _ := cmd.Flags().GetString("examples")
	numExamples, _ := cmd.Flags().GetInt("num-examples")
	balanced, _ := cmd.Flags().GetBool("balanced")
	outputDir, _ := cmd.Flags().GetString("output-dir")

	apiKey = secretDefault("gemini-api-key", apiKey)
	if apiKey == "" {
		return types.ExtractionConfig{}, fmt.Errorf("Gemini API key required: pass --api-key or create .secrets/gemini-api-key")
	}

	if delay == 0 {
		delay = 5 * time.Second
	}

	cfg := types.ExtractionConfig{
		Primary: types.AIConfig{
			Model:  primaryModel,
			APIKey: apiKey,
		},
		RequestDelay:     delay,
		ExamplesPath:     examplesPath,
		NumExamples:      numExamples,
		BalancedExamples: balanced,
		OutputDir:        outputDir,
	}
	if secondaryModel != "" {
		cfg.Secondary = types.AIConfig{
			Model:   secondaryModel,
			BaseURL: secretDefault("ollama-base-url", ollamaURL),
		}
	}
	return cfg, nil
}

// renderExamples loads the UDB few-shot examples and formats them for
// the prompt. A missing examples file renders an empty block.
func renderExamples(cfg types.ExtractionConfig) (string, error) {
	loader, err := examples.Load(cfg.ExamplesPath)
	if err != nil {
		return "", err
	}
	if loader.Len() == 0 {
		return "", nil
	}
	if cfg.BalancedExamples {
		return loader.BalancedPrompt(cfg.NumExamples), nil
	}
	return loader.FormatForPrompt(cfg.NumExamples), nil
}

// assignTags fills TagName for every parameter using the chapter text
// for section context.
func assignTags(params []types.Parameter, chapterText string) {
	tags := tag.NewSynthesizer().GenerateAll(params, chapterText)
	for i := range params {
		if t, ok := tags[params[i].Name]; ok {
			params[i].TagName = t
		}
	}
}

// outputFormat maps the --format flag to an OutputFormat.
func outputFormat(cmd *cobra.Command) types.OutputFormat {
	format, _ := cmd.Flags().GetString("format")
	if format == "json" {
		return types.OutputJSON
	}
	return types.OutputYAML
}
