// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists extracted parameters and builds a retrieval index.
// Implements: prd006-store (R1-R4).
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/spec-miner/pkg/types"
)

const dbFile = "params.db"

// extractionFile mirrors the extraction artifact layout written by the
// extract stage.
type extractionFile struct {
	ExtractionInfo struct {
		Model string `yaml:"model"`
		RunID string `yaml:"run_id"`
	} `yaml:"extraction_info"`
	Parameters []types.Parameter `yaml:"parameters"`
}

// Store manages the parameter SQLite database.
type Store struct {
	db         *sql.DB
	storeDir   string
	maxResults int
}

// NewStore opens or creates the parameter database at storeDir/params.db
// and creates the schema if it does not exist (R1.1, R1.2).
func NewStore(cfg types.StoreConfig) (*Store, error) {
	storeDir := cfg.StoreDir
	if storeDir == "" {
		storeDir = "store"
	}
	if err := os.MkdirAll(storeDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(storeDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		storeDir:   storeDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS params (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			name TEXT NOT NULL,
			tag_name TEXT,
			description TEXT,
			param_type TEXT NOT NULL,
			classification TEXT NOT NULL,
			implementation_defined INTEGER,
			source_quote TEXT,
			rationale TEXT,
			constraints TEXT,
			metadata TEXT,
			model TEXT,
			run_id TEXT,
			UNIQUE(source, name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_params_classification ON params(classification)`,
		`CREATE INDEX IF NOT EXISTS idx_params_type ON params(param_type)`,
		`CREATE TABLE IF NOT EXISTS ingest_status (
			source TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='params_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE params_fts USING fts5(name, description, source_quote, content=params, content_rowid=rowid)`,
			`CREATE TRIGGER params_ai AFTER INSERT ON params BEGIN
				INSERT INTO params_fts(rowid, name, description, source_quote)
				VALUES (new.rowid, new.name, new.description, new.source_quote);
			END`,
			`CREATE TRIGGER params_ad AFTER DELETE ON params BEGIN
				INSERT INTO params_fts(params_fts, rowid, name, description, source_quote)
				VALUES('delete', old.rowid, old.name, old.description, old.source_quote);
			END`,
			`CREATE TRIGGER params_au AFTER UPDATE ON params BEGIN
				INSERT INTO params_fts(params_fts, rowid, name, description, source_quote)
				VALUES('delete', old.rowid, old.name, old.description, old.source_quote);
				INSERT INTO params_fts(rowid, name, description, source_quote)
				VALUES (new.rowid, new.name, new.description, new.source_quote);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from a store indexing run (R2.4).
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads extraction artifact YAML files from outputsDir and
// populates the database. Unchanged files are skipped by modification
// time; changed files replace their previous rows (R2.1-R2.3). On
// success it writes export.yaml (R4.3).
func (s *Store) Ingest(ctx context.Context, outputsDir string, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(outputsDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading outputs directory %s: %w", outputsDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		source := strings.TrimSuffix(entry.Name(), ".yaml")
		filePath := filepath.Join(outputsDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", source, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM ingest_status WHERE source = ?`, source,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", source)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		data, err := os.ReadFile(filePath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", source, err)
			summary.Failed++
			continue
		}

		var file extractionFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", source, err)
			summary.Failed++
			continue
		}

		// Files without a parameters list are other artifacts
		// (comparison and validation reports); skip them quietly.
		if file.Parameters == nil {
			continue
		}

		if err := s.ingestFile(ctx, source, &file, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", source, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d parameters)\n", source, len(file.Parameters))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d parameters)\n", source, len(file.Parameters))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

func (s *Store) ingestFile(ctx context.Context, source string, file *extractionFile, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Remove old rows if updating (R2.2).
	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM params WHERE source = ?`, source); err != nil {
			return fmt.Errorf("deleting old parameters: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO params
			(source, name, tag_name, description, param_type, classification,
			 implementation_defined, source_quote, rationale, constraints, metadata, model, run_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range file.Parameters {
		constraintsJSON, _ := json.Marshal(p.Constraints)
		metadataJSON, _ := json.Marshal(p.ExtractionMetadata)
		_, err := stmt.ExecContext(ctx,
			source, p.Name, p.TagName, p.Description,
			string(p.ParamType), string(p.Classification),
			p.ImplementationDefined, p.SourceQuote, p.Rationale,
			string(constraintsJSON), string(metadataJSON),
			file.ExtractionInfo.Model, file.ExtractionInfo.RunID,
		)
		if err != nil {
			return fmt.Errorf("inserting parameter %s: %w", p.Name, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ingest_status (source, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(source) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		source, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating ingest status: %w", err)
	}

	return tx.Commit()
}
