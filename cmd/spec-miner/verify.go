// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/spec-miner/internal/extract"
	"github.com/pdiddy/spec-miner/internal/segment"
	"github.com/pdiddy/spec-miner/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <extraction.yaml> <spec-file>",
	Short: "Verify extracted parameters against the specification text",
	Long: `Verify checks every extracted parameter against the source text:
source quotes must appear verbatim or near-verbatim, named parameters
must exist in the document, and weak descriptions or rationales are
flagged. The validation report partitions parameters into verified,
suspicious, and hallucinated.

With --chapter the check runs against that chapter's span only;
otherwise the whole document is used.`,
	Args: cobra.ExactArgs(2),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().Int("chapter", 0, "restrict verification to one chapter span (0 = whole document)")
	verifyCmd.Flags().Float64("threshold", 0, "fuzzy-match similarity threshold (default 0.85)")
	verifyCmd.Flags().String("output-dir", "outputs", "directory for the validation report")
	verifyCmd.Flags().String("format", "yaml", "artifact format: yaml or json")

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	extraction, err := extract.ReadExtraction(args[0])
	if err != nil {
		return err
	}

	doc, err := segment.Load(args[1])
	if err != nil {
		return err
	}

	specText := doc.Content()
	if chapterNum, _ := cmd.Flags().GetInt("chapter"); chapterNum > 0 {
		ch, ok := doc.Chapter(chapterNum)
		if !ok {
			return fmt.Errorf("chapter %d not found in %s", chapterNum, args[1])
		}
		specText = ch.Content
	}

	threshold, _ := cmd.Flags().GetFloat64("threshold")
	report := verify.NewVerifier(specText, threshold).VerifyAll(extraction.Parameters).BuildReport()

	format := outputFormat(cmd)
	outputDir, _ := cmd.Flags().GetString("output-dir")
	validationPath := filepath.Join(outputDir, extract.ValidationFile)
	if err := extract.WriteArtifact(validationPath, format, report); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "wrote %s\n", validationPath)
	fmt.Printf("total:            %d\n", report.Summary.TotalParams)
	fmt.Printf("verified:         %d\n", report.Summary.Verified)
	fmt.Printf("suspicious:       %d\n", report.Summary.Suspicious)
	fmt.Printf("hallucinated:     %d\n", report.Summary.Hallucinated)
	fmt.Printf("verification rate: %.1f%%\n", report.Summary.VerificationRate*100)

	if report.Summary.Hallucinated > 0 {
		return fmt.Errorf("%d parameter(s) failed grounding checks", report.Summary.Hallucinated)
	}
	return nil
}
