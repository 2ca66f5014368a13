// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tag synthesizes unique symbolic identifiers for parameters
// the source text does not name explicitly, using nearby document
// structure as context.
// Implements: prd005-tagging (R1-R4).
package tag

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/spec-miner/pkg/types"
)

// Suffix appended to every synthesized (non-named) tag.
const Suffix = "_TAG"

// maxTagParts caps how many context/key-term parts a tag is built from.
const maxTagParts = 4

// stopWords are skipped when pulling key terms out of a description.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true, "from": true,
	"is": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "being": true, "have": true, "has": true, "had": true,
	"do": true, "does": true, "did": true, "will": true, "would": true,
	"should": true, "could": true, "may": true, "might": true,
	"must": true, "can": true, "this": true, "that": true,
	"these": true, "those": true, "implementation": true,
	"specific": true, "defined": true, "parameter": true,
}

var (
	nonAlnumRe = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	spacesRe   = regexp.MustCompile(`\s+`)
)

// Sanitize reduces text to a tag token: letters, digits, and spaces
// survive, space runs become single underscores, and the result is
// upper-cased.
func Sanitize(text string) string {
	s := nonAlnumRe.ReplaceAllString(text, "")
	s = spacesRe.ReplaceAllString(s, "_")
	return strings.ToUpper(s)
}

// ExtractKeyTerms pulls up to maxTerms informative tokens from a
// description, in original order, skipping stop words and tokens of
// two characters or fewer.
func ExtractKeyTerms(description string, maxTerms int) []string {
	var terms []string
	for _, w := range strings.Fields(strings.ToLower(description)) {
		if stopWords[w] || len(w) <= 2 {
			continue
		}
		terms = append(terms, w)
		if len(terms) == maxTerms {
			break
		}
	}
	return terms
}

// Context is the local document context a tag is built from.
type Context struct {
	// SectionTitle is the nearest enclosing section heading.
	SectionTitle string

	// ChapterNumber is the enclosing chapter, zero when unknown.
	ChapterNumber int

	// ParentConcept names a broader concept the parameter belongs to.
	ParentConcept string

	// RelatedParams lists sibling parameter names.
	RelatedParams []string
}

// Synthesizer issues unique tags for one extraction session. The
// uniqueness registry is owned by the instance; unrelated runs must use
// separate synthesizers (or Reset) so tags never leak between sessions.
type Synthesizer struct {
	issued map[string]bool
}

// NewSynthesizer returns a synthesizer with an empty registry.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{issued: make(map[string]bool)}
}

// Reset clears the registry for reuse in a fresh session.
func (s *Synthesizer) Reset() {
	s.issued = make(map[string]bool)
}

// EnsureUnique registers and returns the candidate, appending _2, _3, …
// until an unissued variant is found. Resolution is deterministic given
// insertion order. Per R2.1-R2.2.
func (s *Synthesizer) EnsureUnique(candidate string) string {
	if !s.issued[candidate] {
		s.issued[candidate] = true
		return candidate
	}

	for counter := 2; ; counter++ {
		variant := fmt.Sprintf("%s_%d", candidate, counter)
		if !s.issued[variant] {
			s.issued[variant] = true
			return variant
		}
	}
}

// Generate builds a tag for the parameter. Named parameters keep their
// sanitized name. Unnamed parameters combine up to two words of the
// enclosing section title with up to three key terms from the
// description, capped at four parts, falling back to the first three
// description words, always with the _TAG suffix. Per R1.1-R1.4.
func (s *Synthesizer) Generate(p types.Parameter, ctx *Context) string {
	if p.Classification == types.ClassNamed {
		return s.EnsureUnique(Sanitize(p.Name))
	}

	var parts []string

	if ctx != nil && ctx.SectionTitle != "" {
		sectionWords := strings.Split(Sanitize(ctx.SectionTitle), "_")
		if len(sectionWords) > 2 {
			sectionWords = sectionWords[:2]
		}
		parts = append(parts, sectionWords...)
	}

	for _, term := range ExtractKeyTerms(p.Description, 3) {
		parts = append(parts, Sanitize(term))
	}

	var base string
	if len(parts) > 0 {
		if len(parts) > maxTagParts {
			parts = parts[:maxTagParts]
		}
		base = strings.Join(parts, "_")
	} else {
		descWords := strings.Fields(p.Description)
		if len(descWords) > 3 {
			descWords = descWords[:3]
		}
		sanitized := make([]string, len(descWords))
		for i, w := range descWords {
			sanitized[i] = Sanitize(w)
		}
		base = strings.Join(sanitized, "_")
	}

	return s.EnsureUnique(base + Suffix)
}

// GenerateAll assigns tags for every parameter, deriving section
// context from the document text when available. Returns parameter
// name to tag. Per R4.1.
func (s *Synthesizer) GenerateAll(params []types.Parameter, specText string) map[string]string {
	tags := make(map[string]string, len(params))
	for _, p := range params {
		var ctx *Context
		if specText != "" {
			c := ExtractSectionContext(specText, p)
			ctx = &c
		}
		tags[p.Name] = s.Generate(p, ctx)
	}
	return tags
}
