package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/spec-miner/internal/segment"
	"github.com/pdiddy/spec-miner/pkg/types"
)

var segmentCmd = &cobra.Command{
	Use:   "segment <spec-file>",
	Short: "Inspect chapters and chunking for a specification document",
	Long: `Segment loads a specification document (Markdown or AsciiDoc), locates
a chapter by number, and reports its sections and chunk layout. Use
--chunks to print the chunk texts that extraction would see.`,
	Args: cobra.ExactArgs(1),
	RunE: runSegment,
}

func init() {
	segmentCmd.Flags().Int("chapter", 0, "chapter number to inspect (required)")
	segmentCmd.Flags().Bool("chunks", false, "print full chunk texts instead of metadata")
	segmentCmd.Flags().Int("chunk-tokens", 0, "target chunk size in tokens (default 3000)")
	segmentCmd.Flags().Int("overlap", 200, "approximate chunk overlap in characters (0 disables)")

	rootCmd.AddCommand(segmentCmd)
}

func runSegment(cmd *cobra.Command, args []string) error {
	chapterNum, _ := cmd.Flags().GetInt("chapter")
	if chapterNum <= 0 {
		return fmt.Errorf("provide a chapter number with --chapter")
	}

	doc, err := segment.Load(args[0])
	if err != nil {
		return err
	}

	chunkTokens, _ := cmd.Flags().GetInt("chunk-tokens")
	overlap, _ := cmd.Flags().GetInt("overlap")
	segCfg := types.SegmenterConfig{ChunkTokens: chunkTokens, OverlapChars: overlap}

	showChunks, _ := cmd.Flags().GetBool("chunks")
	if showChunks {
		ch, ok := doc.Chapter(chapterNum)
		if !ok {
			return fmt.Errorf("chapter %d not found in %s", chapterNum, args[0])
		}
		for _, chunk := range segment.ChunkText(ch.Content, segCfg.MaxChars(), segCfg.OverlapChars) {
			fmt.Printf("--- chunk %d (%d chars) ---\n%s\n\n", chunk.Index, len(chunk.Text), chunk.Text)
		}
		return nil
	}

	meta, ok := doc.Metadata(chapterNum, segCfg.MaxChars(), segCfg.OverlapChars)
	if !ok {
		return fmt.Errorf("chapter %d not found in %s", chapterNum, args[0])
	}

	fmt.Fprintf(os.Stderr, "dialect: %s\n", doc.Dialect())
	data, err := yaml.Marshal(meta)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
