// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/spec-miner/internal/consensus"
	"github.com/pdiddy/spec-miner/internal/extract"
)

var compareCmd = &cobra.Command{
	Use:   "compare <primary.yaml> <secondary.yaml>",
	Short: "Compare two extraction runs and build a consensus set",
	Long: `Compare reads two extraction artifacts, partitions their parameters
into consensus and per-model exclusives, and writes the comparison
report. With --merge it also writes the merged consensus parameter set
with per-parameter agreement metadata.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().String("output-dir", "outputs", "directory for comparison artifacts")
	compareCmd.Flags().String("format", "yaml", "artifact format: yaml or json")
	compareCmd.Flags().Bool("merge", false, "also write the merged consensus parameter set")

	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	primary, err := extract.ReadExtraction(args[0])
	if err != nil {
		return err
	}
	secondary, err := extract.ReadExtraction(args[1])
	if err != nil {
		return err
	}

	report := consensus.Compare(primary.Parameters, secondary.Parameters)

	format := outputFormat(cmd)
	outputDir, _ := cmd.Flags().GetString("output-dir")

	comparisonPath := filepath.Join(outputDir, extract.ComparisonFile)
	if err := extract.WriteArtifact(comparisonPath, format, report); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "wrote %s\n", comparisonPath)
	fmt.Printf("unique parameters: %d\n", report.Summary.TotalUniqueParams)
	fmt.Printf("consensus:         %d\n", report.Summary.ConsensusParams)
	fmt.Printf("only primary:      %d\n", report.Summary.OnlyPrimary)
	fmt.Printf("only secondary:    %d\n", report.Summary.OnlySecondary)
	fmt.Printf("class mismatches:  %d\n", report.Summary.ClassificationMismatches)

	if doMerge, _ := cmd.Flags().GetBool("merge"); doMerge {
		merged := primary
		merged.Parameters = consensus.Merge(primary.Parameters, secondary.Parameters)

		mergedPath := filepath.Join(outputDir, extract.ExtractedFile)
		if err := extract.WriteExtraction(mergedPath, format, merged); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s (%d parameters)\n", mergedPath, len(merged.Parameters))
	}

	return nil
}
