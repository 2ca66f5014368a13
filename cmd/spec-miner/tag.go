// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/spec-miner/internal/extract"
	"github.com/pdiddy/spec-miner/internal/segment"
)

var tagCmd = &cobra.Command{
	Use:   "tag <extraction.yaml>",
	Short: "Synthesize UDB-style tag names for extracted parameters",
	Long: `Tag assigns a unique uppercase tag name to every parameter in an
extraction artifact. Named parameters keep their sanitized spec name;
unnamed parameters get a synthetic tag built from section context and
description key terms. The artifact is rewritten in place unless
--output is given.

Pass --spec to locate each parameter's source quote in the document,
which improves section context for synthetic tags.`,
	Args: cobra.ExactArgs(1),
	RunE: runTag,
}

func init() {
	tagCmd.Flags().String("spec", "", "specification file for section context")
	tagCmd.Flags().String("output", "", "output path (default: rewrite the input artifact)")
	tagCmd.Flags().String("format", "yaml", "artifact format: yaml or json")

	rootCmd.AddCommand(tagCmd)
}

func runTag(cmd *cobra.Command, args []string) error {
	extraction, err := extract.ReadExtraction(args[0])
	if err != nil {
		return err
	}

	specText := ""
	if specPath, _ := cmd.Flags().GetString("spec"); specPath != "" {
		doc, err := segment.Load(specPath)
		if err != nil {
			return err
		}
		specText = doc.Content()
	}

	assignTags(extraction.Parameters, specText)

	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		outPath = args[0]
	}
	if err := extract.WriteExtraction(outPath, outputFormat(cmd), extraction); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "wrote %s (%d parameters tagged)\n", outPath, len(extraction.Parameters))
	return nil
}
