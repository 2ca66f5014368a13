// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package segment splits specification documents into addressable
// chapters and token-bounded chunks for model extraction.
// Implements: prd001-segmentation (R1-R3).
package segment

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Dialect identifies the markup flavor of a specification document.
type Dialect string

const (
	DialectMarkdown Dialect = "markdown"
	DialectAsciiDoc Dialect = "asciidoc"
)

// dialectProbe is how much of the document DetectDialect inspects.
const dialectProbe = 1000

// DetectDialect inspects the first portion of the document for markup
// cues. AsciiDoc documents open with "= " title sigils and "==" section
// sigils; anything ambiguous is treated as Markdown. Per R1.1.
func DetectDialect(content string) Dialect {
	head := content
	if len(head) > dialectProbe {
		head = head[:dialectProbe]
	}
	if strings.Contains(head, "= ") && strings.Contains(head, "==") {
		return DialectAsciiDoc
	}
	return DialectMarkdown
}

// dialectForPath maps a file extension to a dialect, falling back to
// content sniffing for unknown extensions.
func dialectForPath(path, content string) Dialect {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return DialectMarkdown
	case ".adoc", ".asciidoc":
		return DialectAsciiDoc
	default:
		return DetectDialect(content)
	}
}

// Chapter is one numbered top-level unit of a specification document.
type Chapter struct {
	// Number is the chapter number as it appears in the heading.
	Number int `json:"number" yaml:"number"`

	// Title is the heading text after the chapter label.
	Title string `json:"title" yaml:"title"`

	// Content is the chapter span, from its heading line up to (but
	// excluding) the next chapter heading.
	Content string `json:"content" yaml:"content"`

	// Sections lists the immediate subsection titles in order.
	Sections []string `json:"sections" yaml:"sections"`
}

// Document is an immutable specification document with a detected dialect.
type Document struct {
	content string
	dialect Dialect
}

// NewDocument wraps raw specification text, sniffing the dialect from
// the content.
func NewDocument(content string) *Document {
	return &Document{content: content, dialect: DetectDialect(content)}
}

// Load reads a specification file. A missing file is the one fatal
// input error in the pipeline. Per R1.3.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec file %s: %w", path, err)
	}
	content := string(data)
	return &Document{content: content, dialect: dialectForPath(path, content)}, nil
}

// Content returns the full document text.
func (d *Document) Content() string {
	return d.content
}

// Dialect returns the detected markup dialect.
func (d *Document) Dialect() Dialect {
	return d.dialect
}

// headingSigil returns the top-level heading marker for the dialect.
func (d *Document) headingSigil() string {
	if d.dialect == DialectAsciiDoc {
		return "="
	}
	return "#"
}

// Chapter locates the heading for chapter n and captures its span.
// The heading matches "<sigil> [Chapter ]N: Title" case-insensitively.
// The span ends before the heading of chapter n+1 or at end of document.
// A missing chapter returns ok=false; malformed documents never cause
// an error, they simply have no chapters. Per R2.1-R2.4.
func (d *Document) Chapter(n int) (Chapter, bool) {
	sigil := d.headingSigil()
	chapterRe := regexp.MustCompile(fmt.Sprintf(`(?i)^%s\s+(?:Chapter\s+)?%d[\s:]+(.+)$`, sigil, n))
	nextRe := regexp.MustCompile(fmt.Sprintf(`(?i)^%s\s+(?:Chapter\s+)?%d[\s:]`, sigil, n+1))

	lines := strings.Split(d.content, "\n")

	start := -1
	title := ""
	for i, line := range lines {
		if m := chapterRe.FindStringSubmatch(line); m != nil {
			start = i
			title = strings.TrimSpace(m[1])
			break
		}
	}
	if start < 0 {
		return Chapter{}, false
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if nextRe.MatchString(lines[i]) {
			end = i
			break
		}
	}

	content := strings.Join(lines[start:end], "\n")
	return Chapter{
		Number:   n,
		Title:    title,
		Content:  content,
		Sections: d.sectionTitles(content),
	}, true
}

// sectionTitles collects immediate subsection headings from a chapter span.
func (d *Document) sectionTitles(content string) []string {
	sectionRe := regexp.MustCompile(`^##\s+(.+)$`)
	if d.dialect == DialectAsciiDoc {
		sectionRe = regexp.MustCompile(`^==\s+(.+)$`)
	}

	var sections []string
	for _, line := range strings.Split(content, "\n") {
		if m := sectionRe.FindStringSubmatch(line); m != nil {
			sections = append(sections, strings.TrimSpace(m[1]))
		}
	}
	return sections
}

// ChapterMetadata summarizes a chapter without carrying its content.
type ChapterMetadata struct {
	Number          int      `json:"number" yaml:"number"`
	Title           string   `json:"title" yaml:"title"`
	NumSections     int      `json:"num_sections" yaml:"num_sections"`
	Sections        []string `json:"sections" yaml:"sections"`
	ContentLength   int      `json:"content_length" yaml:"content_length"`
	EstimatedChunks int      `json:"estimated_chunks" yaml:"estimated_chunks"`
}

// Metadata returns chapter statistics, including how many chunks the
// chapter would produce at the given sizing.
func (d *Document) Metadata(n, maxChars, overlapChars int) (ChapterMetadata, bool) {
	ch, ok := d.Chapter(n)
	if !ok {
		return ChapterMetadata{}, false
	}
	return ChapterMetadata{
		Number:          ch.Number,
		Title:           ch.Title,
		NumSections:     len(ch.Sections),
		Sections:        ch.Sections,
		ContentLength:   len(ch.Content),
		EstimatedChunks: len(ChunkText(ch.Content, maxChars, overlapChars)),
	}, true
}
