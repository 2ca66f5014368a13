package tag

import (
	"strings"
	"testing"

	"github.com/pdiddy/spec-miner/pkg/types"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Cache Block Size (bytes)", "CACHE_BLOCK_SIZE_BYTES"},
		{"CSR[11:8] Address", "CSR118_ADDRESS"},
		{"already_clean", "ALREADY_CLEAN"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractKeyTerms(t *testing.T) {
	terms := ExtractKeyTerms("The size of a cache block in bytes", 3)
	want := []string{"size", "cache", "block"}
	if len(terms) != len(want) {
		t.Fatalf("terms = %v, want %v", terms, want)
	}
	for i := range want {
		if terms[i] != want[i] {
			t.Errorf("terms[%d] = %q, want %q", i, terms[i], want[i])
		}
	}
}

func TestExtractKeyTerms_FiltersStopAndShortWords(t *testing.T) {
	terms := ExtractKeyTerms("The implementation of an OS parameter", 5)
	for _, term := range terms {
		if term == "the" || term == "of" || term == "implementation" || term == "parameter" {
			t.Errorf("stop word %q survived filtering", term)
		}
		if len(term) <= 2 {
			t.Errorf("short token %q survived filtering", term)
		}
	}
}

func TestEnsureUnique_SuffixSequence(t *testing.T) {
	s := NewSynthesizer()

	got := []string{
		s.EnsureUnique("CACHE_SIZE_TAG"),
		s.EnsureUnique("CACHE_SIZE_TAG"),
		s.EnsureUnique("CACHE_SIZE_TAG"),
	}
	want := []string{"CACHE_SIZE_TAG", "CACHE_SIZE_TAG_2", "CACHE_SIZE_TAG_3"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i+1, got[i], want[i])
		}
	}
}

func TestGenerate_NamedParameter(t *testing.T) {
	s := NewSynthesizer()
	p := types.Parameter{
		Name:           "VLEN",
		Description:    "Vector register length",
		ParamType:      types.TypeInteger,
		Classification: types.ClassNamed,
		SourceQuote:    "VLEN is implementation defined",
		Rationale:      "test",
	}

	if got := s.Generate(p, nil); got != "VLEN" {
		t.Errorf("Generate() = %q, want VLEN", got)
	}
}

func TestGenerate_UnnamedWithContext(t *testing.T) {
	s := NewSynthesizer()
	p := types.Parameter{
		Name:           "cache_block_size",
		Description:    "Size of cache block in bytes",
		ParamType:      types.TypeInteger,
		Classification: types.ClassUnnamed,
		SourceQuote:    "Cache block size is implementation specific",
		Rationale:      "test",
	}
	ctx := &Context{SectionTitle: "Cache Organization"}

	got := s.Generate(p, ctx)
	if !strings.HasPrefix(got, "CACHE_ORGANIZATION_") {
		t.Errorf("Generate() = %q, want section words first", got)
	}
	if !strings.HasSuffix(got, Suffix) {
		t.Errorf("Generate() = %q, want %s suffix", got, Suffix)
	}

	// 2 section words + key terms, capped at 4 parts before the suffix.
	parts := strings.Split(strings.TrimSuffix(got, Suffix), "_")
	if len(parts) > 4 {
		t.Errorf("tag has %d parts, want at most 4: %q", len(parts), got)
	}
}

func TestGenerate_UnnamedWithoutContext(t *testing.T) {
	s := NewSynthesizer()
	p := types.Parameter{
		Name:           "cache_block_size",
		Description:    "Size of cache block in bytes",
		ParamType:      types.TypeInteger,
		Classification: types.ClassUnnamed,
		SourceQuote:    "Cache block size is implementation specific",
		Rationale:      "test",
	}

	got := s.Generate(p, nil)
	if got != "SIZE_CACHE_BLOCK"+Suffix {
		t.Errorf("Generate() = %q, want SIZE_CACHE_BLOCK%s", got, Suffix)
	}
}

func TestGenerate_FallbackToDescriptionWords(t *testing.T) {
	s := NewSynthesizer()
	// Every description token is a stop word or too short, so key-term
	// extraction yields nothing and the first three raw words are used.
	p := types.Parameter{
		Name:           "odd_param",
		Description:    "the of an is",
		ParamType:      types.TypeString,
		Classification: types.ClassUnnamed,
		SourceQuote:    "quote",
		Rationale:      "test",
	}

	got := s.Generate(p, nil)
	if got != "THE_OF_AN"+Suffix {
		t.Errorf("Generate() = %q, want THE_OF_AN%s", got, Suffix)
	}
}

func TestGenerate_CollisionGetsNumericSuffix(t *testing.T) {
	s := NewSynthesizer()
	p := types.Parameter{
		Name:           "VLEN",
		Description:    "Vector register length",
		ParamType:      types.TypeInteger,
		Classification: types.ClassNamed,
		SourceQuote:    "VLEN is implementation defined",
		Rationale:      "test",
	}

	first := s.Generate(p, nil)
	second := s.Generate(p, nil)
	if first != "VLEN" || second != "VLEN_2" {
		t.Errorf("got (%q, %q), want (VLEN, VLEN_2)", first, second)
	}
}

func TestReset(t *testing.T) {
	s := NewSynthesizer()
	s.EnsureUnique("CACHE_SIZE_TAG")
	s.Reset()

	if got := s.EnsureUnique("CACHE_SIZE_TAG"); got != "CACHE_SIZE_TAG" {
		t.Errorf("after Reset, EnsureUnique = %q, want CACHE_SIZE_TAG", got)
	}
}

func TestGenerateAll(t *testing.T) {
	specText := "# Chapter 2: Memory Model\n\n## Cache Organization\n\nCache block size is implementation specific.\n"

	s := NewSynthesizer()
	params := []types.Parameter{
		{
			Name:           "VLEN",
			Description:    "Vector register length",
			Classification: types.ClassNamed,
			SourceQuote:    "VLEN is implementation defined",
		},
		{
			Name:           "cache_block_size",
			Description:    "Size of cache block in bytes",
			Classification: types.ClassUnnamed,
			SourceQuote:    "Cache block size is implementation specific.",
		},
	}

	tags := s.GenerateAll(params, specText)
	if tags["VLEN"] != "VLEN" {
		t.Errorf(`tags["VLEN"] = %q, want VLEN`, tags["VLEN"])
	}
	if !strings.HasPrefix(tags["cache_block_size"], "CACHE_ORGANIZATION_") {
		t.Errorf(`tags["cache_block_size"] = %q, want section context prefix`, tags["cache_block_size"])
	}

	// Session-wide uniqueness across the whole batch.
	seen := map[string]bool{}
	for _, tg := range tags {
		if seen[tg] {
			t.Errorf("duplicate tag issued: %q", tg)
		}
		seen[tg] = true
	}
}
