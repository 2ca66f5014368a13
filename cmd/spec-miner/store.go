// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/spec-miner/internal/store"
	"github.com/pdiddy/spec-miner/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the parameter store (ingest, retrieve, export)",
	Long: `Store manages a local SQLite database built from extraction artifacts.
Use subcommands to ingest parameters, query them, or export.`,
}

// --- ingest subcommand ---

var storeIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest extraction artifacts into the parameter store",
	Long: `Ingest reads extraction YAML files from the outputs directory, loads
their parameters into a SQLite database with FTS5 indexing, and writes
an export file. Unchanged files are skipped on subsequent runs.`,
	RunE: runStoreIngest,
}

func runStoreIngest(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	outputsDir, _ := cmd.Flags().GetString("outputs-dir")

	summary, err := s.Ingest(context.Background(), outputsDir, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed ingestion", summary.Failed)
	}
	return nil
}

// --- retrieve subcommand ---

var storeRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query the parameter store with full-text search and filters",
	Long: `Retrieve searches stored parameters using FTS5 full-text search over
names, descriptions, and source quotes, structured filters
(classification, type, model), or a combination of both.`,
	RunE: runStoreRetrieve,
}

func runStoreRetrieve(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --classification, --type, or --model")
	}

	results, err := s.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(results, jsonOutput)
}

func formatRetrieveOutput(results []store.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-24s  %-8s  %-24s  %-40s\n",
		"Rank", "Name", "Type", "Classification", "Description")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 106))

	for i, r := range results {
		name := r.Name
		if len(name) > 24 {
			name = name[:21] + "..."
		}
		desc := r.Description
		if len(desc) > 40 {
			desc = desc[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-24s  %-8s  %-24s  %-40s\n",
			i+1, name, r.ParamType, r.Classification, desc)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the parameter store to YAML or JSON",
	Long: `Export writes the full store (or a filtered subset) to export.yaml or
export.json in the store directory. Supports the same filter flags as
retrieve for partial exports.`,
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := queryOptsFromFlags(cmd, args)

	storeDir, _ := cmd.Flags().GetString("store-dir")
	switch format {
	case "yaml", "":
		if err := s.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.yaml\n", storeDir)
	case "json":
		if err := s.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.json\n", storeDir)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*store.Store, error) {
	storeDir, _ := cmd.Flags().GetString("store-dir")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return store.NewStore(types.StoreConfig{
		StoreDir:   storeDir,
		MaxResults: maxResults,
	})
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) store.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	classification, _ := cmd.Flags().GetString("classification")
	paramType, _ := cmd.Flags().GetString("type")
	model, _ := cmd.Flags().GetString("model")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.QueryOptions{
		Query:          queryText,
		Classification: types.Classification(classification),
		ParamType:      types.ParamType(paramType),
		Model:          model,
		MaxResults:     limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	storeCmd.PersistentFlags().String("store-dir", "store", "base directory for the store database and exports")
	storeCmd.PersistentFlags().String("outputs-dir", "outputs", "directory of extraction artifacts to ingest")
	storeCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Retrieve flags.
	storeRetrieveCmd.Flags().String("query", "", "full-text search query")
	storeRetrieveCmd.Flags().String("classification", "", "filter by classification: named, unnamed, configuration-dependent")
	storeRetrieveCmd.Flags().String("type", "", "filter by parameter type: integer, boolean, string, range, enum, bits")
	storeRetrieveCmd.Flags().String("model", "", "filter by extracting model")
	storeRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	storeRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	storeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	storeExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	storeExportCmd.Flags().String("classification", "", "filter by classification for partial export")
	storeExportCmd.Flags().String("type", "", "filter by parameter type for partial export")
	storeExportCmd.Flags().String("model", "", "filter by extracting model for partial export")
	storeExportCmd.Flags().Int("limit", 0, "maximum parameters to export (0 = all)")

	// Wire subcommands.
	storeCmd.AddCommand(storeIngestCmd)
	storeCmd.AddCommand(storeRetrieveCmd)
	storeCmd.AddCommand(storeExportCmd)

	rootCmd.AddCommand(storeCmd)
}
