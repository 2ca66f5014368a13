// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

import "strings"

// Chunk is a content-bounded slice of chapter text sized for one
// extraction call.
type Chunk struct {
	// Index is the chunk's ordinal position within the sequence.
	Index int `json:"index" yaml:"index"`

	// Text is the chunk content.
	Text string `json:"text" yaml:"text"`
}

// defaultMaxChars is the chunk cap when none is configured: 3000 tokens
// at roughly 4 characters per token.
const defaultMaxChars = 12000

// ChunkText splits text into chunks no larger than maxChars, breaking
// only on blank-line paragraph boundaries. Paragraphs accumulate
// greedily; when the next paragraph would overflow the cap, the chunk
// closes and the next one is seeded with the closed chunk's last
// paragraph so evidence spanning the boundary survives in both halves.
// A single paragraph longer than maxChars is emitted whole rather than
// split mid-sentence, so a chunk may exceed maxChars by at most one
// paragraph. overlapChars <= 0 disables the overlap seed.
//
// The function is pure: every call recomputes from the input alone.
// Per R3.1-R3.4.
func ChunkText(text string, maxChars, overlapChars int) []Chunk {
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}

	if len(text) <= maxChars {
		return []Chunk{{Index: 0, Text: text}}
	}

	paragraphs := strings.Split(text, "\n\n")

	var chunks []Chunk
	var current []string
	currentLen := 0

	flush := func() {
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Text:  strings.Join(current, "\n\n"),
		})
	}

	for _, para := range paragraphs {
		if currentLen+len(para) > maxChars && len(current) > 0 {
			flush()

			// Seed the next chunk with the trailing paragraph of the
			// closed one; that paragraph is the overlap unit.
			if overlapChars > 0 {
				overlap := current[len(current)-1]
				current = []string{overlap}
				currentLen = len(overlap)
			} else {
				current = nil
				currentLen = 0
			}
		}

		current = append(current, para)
		currentLen += len(para)
	}

	if len(current) > 0 {
		flush()
	}

	return chunks
}
