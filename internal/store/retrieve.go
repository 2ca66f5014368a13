// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/spec-miner/pkg/types"
)

// QueryOptions holds parameters for store queries (R3).
type QueryOptions struct {
	// Query is the FTS5 full-text search string over name, description,
	// and source quote (R3.1).
	Query string

	// Classification filters by parameter classification (R3.2).
	Classification types.Classification

	// ParamType filters by parameter type (R3.2).
	ParamType types.ParamType

	// Model filters by the extracting model (R3.3).
	Model string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Classification == "" && q.ParamType == "" && q.Model == ""
}

// QueryResult is a stored parameter with its ingest provenance.
type QueryResult struct {
	types.Parameter `yaml:",inline"`

	Source string `json:"source" yaml:"source"`
	Model  string `json:"model,omitempty" yaml:"model,omitempty"`
	RunID  string `json:"run_id,omitempty" yaml:"run_id,omitempty"`
}

// Retrieve queries the store with optional full-text search and
// structured filters. Full-text results are ranked by relevance;
// structured-only queries are sorted by name (R3.4).
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT p.source, p.name, p.tag_name, p.description, p.param_type,
				p.classification, p.implementation_defined, p.source_quote,
				p.rationale, p.constraints, p.metadata, p.model, p.run_id
			FROM params_fts
			JOIN params p ON p.rowid = params_fts.rowid
			WHERE params_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT p.source, p.name, p.tag_name, p.description, p.param_type,
				p.classification, p.implementation_defined, p.source_quote,
				p.rationale, p.constraints, p.metadata, p.model, p.run_id
			FROM params p
			WHERE 1=1`)
	}

	if opts.Classification != "" {
		qb.WriteString(` AND p.classification = ?`)
		args = append(args, string(opts.Classification))
	}

	if opts.ParamType != "" {
		qb.WriteString(` AND p.param_type = ?`)
		args = append(args, string(opts.ParamType))
	}

	if opts.Model != "" {
		qb.WriteString(` AND p.model = ?`)
		args = append(args, opts.Model)
	}

	if useFTS {
		qb.WriteString(` ORDER BY params_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY p.name`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying store: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr              QueryResult
			tagName         sql.NullString
			implDefined     sql.NullBool
			constraintsJSON sql.NullString
			metadataJSON    sql.NullString
			model           sql.NullString
			runID           sql.NullString
			paramType       string
			classification  string
		)

		if err := rows.Scan(
			&qr.Source, &qr.Name, &tagName, &qr.Description, &paramType,
			&classification, &implDefined, &qr.SourceQuote,
			&qr.Rationale, &constraintsJSON, &metadataJSON, &model, &runID,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		qr.ParamType = types.ParamType(paramType)
		qr.Classification = types.Classification(classification)

		if tagName.Valid {
			qr.TagName = tagName.String
		}
		if implDefined.Valid {
			qr.ImplementationDefined = implDefined.Bool
		}
		if constraintsJSON.Valid {
			json.Unmarshal([]byte(constraintsJSON.String), &qr.Constraints)
		}
		if metadataJSON.Valid {
			json.Unmarshal([]byte(metadataJSON.String), &qr.ExtractionMetadata)
		}
		if model.Valid {
			qr.Model = model.String
		}
		if runID.Valid {
			qr.RunID = runID.String
		}

		results = append(results, qr)
	}

	return results, rows.Err()
}
