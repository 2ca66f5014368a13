// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify checks that extracted parameters are grounded in the
// source text they were extracted from, catching model hallucinations.
// Implements: prd004-validation (R1-R4).
package verify

import (
	"strings"

	"github.com/pdiddy/spec-miner/pkg/types"
)

// MatchType describes how a source quote was located in the span.
type MatchType string

const (
	MatchExact MatchType = "exact"
	MatchFuzzy MatchType = "fuzzy"
	MatchNone  MatchType = "none"
)

// Status is the overall grounding verdict for one parameter.
type Status string

const (
	StatusVerified     Status = "verified"
	StatusSuspicious   Status = "suspicious"
	StatusHallucinated Status = "hallucinated"
)

// Suspicion codes emitted by FlagSuspicions.
const (
	SuspicionQuoteTooShort    = "source_quote_too_short"
	SuspicionGenericQuote     = "generic_quote"
	SuspicionNameNotInQuote   = "named_param_not_in_quote"
	SuspicionVagueDescription = "vague_description"
	SuspicionWeakRationale    = "weak_rationale"
)

// DefaultSimilarityThreshold is the fuzzy-match acceptance ratio used
// when no threshold is configured.
const DefaultSimilarityThreshold = 0.85

// genericPhrases are hedge phrases that make a short quote suspect: a
// model inventing evidence tends to fall back on boilerplate like this.
var genericPhrases = []string{
	"implementation defined",
	"implementation specific",
	"may be",
	"can be",
	"is defined",
}

// vagueWords are generic nouns that carry no information in a very
// short description.
var vagueWords = map[string]bool{
	"parameter":     true,
	"value":         true,
	"setting":       true,
	"option":        true,
	"configuration": true,
}

// Verifier checks parameters against the span of text they were
// extracted from. It is constructed once per span and is safe for
// repeated use; it never mutates the records it inspects.
type Verifier struct {
	specText       string
	normalizedSpec string
	specWords      []string
	threshold      float64
}

// NewVerifier builds a verifier over the given span. A threshold of
// zero or less selects DefaultSimilarityThreshold.
func NewVerifier(specText string, threshold float64) *Verifier {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	normalized := normalizeText(specText)
	return &Verifier{
		specText:       specText,
		normalizedSpec: normalized,
		specWords:      strings.Fields(normalized),
		threshold:      threshold,
	}
}

// VerifyQuote reports whether the parameter's source quote occurs in
// the span, exactly or approximately. An exact normalized substring
// scores 1.0. Otherwise a sliding window the width of the quote's word
// count scans the span; the first window whose similarity reaches the
// threshold accepts the quote as a fuzzy match. Per R1.1-R1.3.
func (v *Verifier) VerifyQuote(p types.Parameter) (bool, float64, MatchType) {
	if p.SourceQuote == "" {
		return false, 0.0, MatchNone
	}

	quote := normalizeText(p.SourceQuote)
	if strings.Contains(v.normalizedSpec, quote) {
		return true, 1.0, MatchExact
	}

	window := len(strings.Fields(quote))
	best := 0.0
	for i := 0; i+window <= len(v.specWords); i++ {
		candidate := strings.Join(v.specWords[i:i+window], " ")
		if sim := ratio(quote, candidate); sim > best {
			best = sim
		}
		if best >= v.threshold {
			return true, best, MatchFuzzy
		}
	}

	return false, best, MatchNone
}

// VerifyName reports whether a named parameter's name occurs anywhere
// in the span, case-insensitively. The check does not apply to other
// classifications. Per R1.4.
func (v *Verifier) VerifyName(p types.Parameter) bool {
	if p.Classification != types.ClassNamed {
		return true
	}
	return strings.Contains(strings.ToLower(v.specText), strings.ToLower(p.Name))
}

// FlagSuspicions runs the heuristic hallucination checks. Each check is
// independent; all triggered codes accumulate. Per R2.1-R2.5.
func (v *Verifier) FlagSuspicions(p types.Parameter) []string {
	var suspicions []string

	quoteWords := len(strings.Fields(p.SourceQuote))
	if quoteWords < 5 {
		suspicions = append(suspicions, SuspicionQuoteTooShort)
	}

	lowerQuote := strings.ToLower(p.SourceQuote)
	for _, phrase := range genericPhrases {
		if strings.Contains(lowerQuote, phrase) && quoteWords < 10 {
			suspicions = append(suspicions, SuspicionGenericQuote)
			break
		}
	}

	if p.Classification == types.ClassNamed &&
		!strings.Contains(lowerQuote, strings.ToLower(p.Name)) {
		suspicions = append(suspicions, SuspicionNameNotInQuote)
	}

	descWords := strings.Fields(strings.ToLower(p.Description))
	if len(descWords) < 5 {
		for _, w := range descWords {
			if vagueWords[w] {
				suspicions = append(suspicions, SuspicionVagueDescription)
				break
			}
		}
	}

	if len(strings.Fields(p.Rationale)) < 10 {
		suspicions = append(suspicions, SuspicionWeakRationale)
	}

	return suspicions
}

// Outcome is the grounding check result for one parameter.
type Outcome struct {
	Status          Status    `json:"status" yaml:"status"`
	QuoteVerified   bool      `json:"quote_verified" yaml:"quote_verified"`
	QuoteSimilarity float64   `json:"quote_similarity" yaml:"quote_similarity"`
	QuoteMatchType  MatchType `json:"quote_match_type" yaml:"quote_match_type"`
	NameVerified    bool      `json:"name_verified" yaml:"name_verified"`
	Suspicions      []string  `json:"suspicions" yaml:"suspicions"`
	SuspicionCount  int       `json:"suspicion_count" yaml:"suspicion_count"`
}

// Verify runs every check on a single parameter and derives the overall
// status: verified requires both hard checks and zero suspicions; a
// failed hard check is hallucinated regardless of suspicions; anything
// else is suspicious. Per R3.2.
func (v *Verifier) Verify(p types.Parameter) Outcome {
	quoteVerified, similarity, matchType := v.VerifyQuote(p)
	nameVerified := v.VerifyName(p)
	suspicions := v.FlagSuspicions(p)

	var status Status
	switch {
	case quoteVerified && nameVerified && len(suspicions) == 0:
		status = StatusVerified
	case !quoteVerified || !nameVerified:
		status = StatusHallucinated
	default:
		status = StatusSuspicious
	}

	return Outcome{
		Status:          status,
		QuoteVerified:   quoteVerified,
		QuoteSimilarity: similarity,
		QuoteMatchType:  matchType,
		NameVerified:    nameVerified,
		Suspicions:      suspicions,
		SuspicionCount:  len(suspicions),
	}
}

// Result partitions a batch of parameters by grounding status and keeps
// the per-parameter detail.
type Result struct {
	Verified     []types.Parameter
	Suspicious   []types.Parameter
	Hallucinated []types.Parameter
	Details      map[string]Outcome
}

// VerifyAll verifies a batch of parameters. Per R4.1.
func (v *Verifier) VerifyAll(params []types.Parameter) *Result {
	res := &Result{Details: make(map[string]Outcome, len(params))}

	for _, p := range params {
		outcome := v.Verify(p)
		res.Details[p.Name] = outcome

		switch outcome.Status {
		case StatusVerified:
			res.Verified = append(res.Verified, p)
		case StatusSuspicious:
			res.Suspicious = append(res.Suspicious, p)
		default:
			res.Hallucinated = append(res.Hallucinated, p)
		}
	}

	return res
}
