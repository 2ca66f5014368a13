// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract mines implementation-defined hardware parameters from
// specification text via model backends.
// Implements: prd002-extraction (R1, R3, R4).
package extract

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/spec-miner/internal/segment"
	"github.com/pdiddy/spec-miner/pkg/types"
)

// Metadata keys attached to each extracted parameter.
const (
	MetaRunID = "run_id"
	MetaModel = "model"
	MetaChunk = "chunk_index"
)

// Result holds the outcome of one extraction run. Secondary is nil
// when no second model was configured.
type Result struct {
	Primary   types.Extraction
	Secondary *types.Extraction
}

// Runner drives extraction over a chapter's chunks with one or two
// model backends. Per prd002-extraction R3.1.
type Runner struct {
	Primary   Backend
	Secondary Backend
	Config    types.ExtractionConfig
}

// Run extracts parameters from every chunk, calling the primary backend
// and, when configured, the secondary backend per chunk. A mandatory
// delay separates model calls to respect free-tier rate limits (R3.4).
// Progress lines are written to w.
func (r *Runner) Run(ctx context.Context, chunks []segment.Chunk, examples string, w io.Writer) (*Result, error) {
	if r.Primary == nil {
		return nil, fmt.Errorf("no primary backend configured")
	}

	maxRetries := r.Config.Primary.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	result := &Result{
		Primary: types.Extraction{
			Model: r.Primary.Model(),
			RunID: uuid.NewString(),
		},
	}
	if r.Secondary != nil {
		result.Secondary = &types.Extraction{
			Model: r.Secondary.Model(),
			RunID: uuid.NewString(),
		}
	}

	first := true
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk.Text) == "" {
			continue
		}

		if !first {
			if err := r.delay(ctx); err != nil {
				return nil, err
			}
		}
		first = false

		fmt.Fprintf(w, "extracting chunk %d (%s)\n", chunk.Index, r.Primary.Model())
		params, err := r.extractChunk(ctx, r.Primary, chunk, examples, maxRetries, result.Primary.RunID)
		if err != nil {
			return nil, fmt.Errorf("chunk %d (%s): %w", chunk.Index, r.Primary.Model(), err)
		}
		result.Primary.Parameters = append(result.Primary.Parameters, params...)

		if r.Secondary == nil {
			continue
		}

		if err := r.delay(ctx); err != nil {
			return nil, err
		}

		fmt.Fprintf(w, "extracting chunk %d (%s)\n", chunk.Index, r.Secondary.Model())
		params, err = r.extractChunk(ctx, r.Secondary, chunk, examples, maxRetries, result.Secondary.RunID)
		if err != nil {
			return nil, fmt.Errorf("chunk %d (%s): %w", chunk.Index, r.Secondary.Model(), err)
		}
		result.Secondary.Parameters = append(result.Secondary.Parameters, params...)
	}

	fmt.Fprintf(w, "extracted %d parameters (%s)\n", len(result.Primary.Parameters), result.Primary.Model)
	if result.Secondary != nil {
		fmt.Fprintf(w, "extracted %d parameters (%s)\n", len(result.Secondary.Parameters), result.Secondary.Model)
	}

	return result, nil
}

// extractChunk runs one backend over one chunk and validates the
// returned parameters.
func (r *Runner) extractChunk(ctx context.Context, backend Backend, chunk segment.Chunk, examples string, maxRetries int, runID string) ([]types.Parameter, error) {
	extraction, err := callWithRetry(ctx, backend, chunk.Text, examples, maxRetries)
	if err != nil {
		return nil, err
	}

	params, validationErrors := validateParams(extraction.Parameters)
	if len(validationErrors) > 0 {
		return nil, fmt.Errorf("validation errors: %s", strings.Join(validationErrors, "; "))
	}

	for i := range params {
		if params[i].ExtractionMetadata == nil {
			params[i].ExtractionMetadata = map[string]any{}
		}
		params[i].ExtractionMetadata[MetaRunID] = runID
		params[i].ExtractionMetadata[MetaModel] = backend.Model()
		params[i].ExtractionMetadata[MetaChunk] = chunk.Index
	}

	return params, nil
}

// delay sleeps for the configured inter-call delay, honoring ctx.
func (r *Runner) delay(ctx context.Context) error {
	d := r.Config.RequestDelay
	if d <= 0 {
		d = 5 * time.Second
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// callWithRetry calls the backend with exponential backoff (R3.3).
func callWithRetry(ctx context.Context, backend Backend, snippet, examples string, maxRetries int) (types.Extraction, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return types.Extraction{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		extraction, err := backend.Extract(ctx, snippet, examples)
		if err == nil {
			return extraction, nil
		}
		lastErr = err
	}
	return types.Extraction{}, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// validateParams checks model-reported parameters and applies field
// defaults (R1.5). Unknown param_type values are rejected; a missing
// classification defaults to unnamed; nil constraints become empty.
func validateParams(params []types.Parameter) ([]types.Parameter, []string) {
	var result []types.Parameter
	var errors []string

	for i, p := range params {
		if strings.TrimSpace(p.Name) == "" {
			errors = append(errors, fmt.Sprintf("parameter %d: empty name", i))
			continue
		}
		if !types.ValidParamTypes[p.ParamType] {
			errors = append(errors, fmt.Sprintf("parameter %d (%s): invalid param_type %q", i, p.Name, p.ParamType))
			continue
		}

		if p.Classification == "" {
			p.Classification = types.ClassUnnamed
		} else if !types.ValidClassifications[p.Classification] {
			errors = append(errors, fmt.Sprintf("parameter %d (%s): invalid classification %q", i, p.Name, p.Classification))
			continue
		}

		if p.Constraints == nil {
			p.Constraints = []types.Constraint{}
		}

		result = append(result, p)
	}

	return result, errors
}
