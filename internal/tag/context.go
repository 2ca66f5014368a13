// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tag

import (
	"regexp"
	"strings"

	"github.com/pdiddy/spec-miner/pkg/types"
)

// headingRes are tried most-specific first when walking backward from a
// quote to its enclosing heading.
var headingRes = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^###\s+(.+)$`),
	regexp.MustCompile(`(?m)^##\s+(.+)$`),
	regexp.MustCompile(`(?m)^#\s+(.+)$`),
	regexp.MustCompile(`(?m)^===\s+(.+)$`),
	regexp.MustCompile(`(?m)^==\s+(.+)$`),
}

var chapterMarkerRe = regexp.MustCompile(`(?i)Chapter\s+(\d+)`)

// ExtractSectionContext locates the parameter's quote in the document
// and walks backward to the nearest preceding heading and chapter
// marker. A quote that cannot be found verbatim yields an empty
// context; the lookup never fails. Per R3.1-R3.3.
func ExtractSectionContext(specText string, p types.Parameter) Context {
	var ctx Context

	pos := strings.Index(specText, p.SourceQuote)
	if pos < 0 || p.SourceQuote == "" {
		return ctx
	}

	before := specText[:pos]

	for _, re := range headingRes {
		matches := re.FindAllStringSubmatch(before, -1)
		if len(matches) > 0 {
			ctx.SectionTitle = strings.TrimSpace(matches[len(matches)-1][1])
			break
		}
	}

	chapters := chapterMarkerRe.FindAllStringSubmatch(before, -1)
	if len(chapters) > 0 {
		ctx.ChapterNumber = atoiSafe(chapters[len(chapters)-1][1])
	}

	return ctx
}

// RegisterInfo is a best-effort analysis of whether a parameter
// concerns a control/status register.
type RegisterInfo struct {
	// IsCSR is true when the description mentions register keywords.
	IsCSR bool `json:"is_csr" yaml:"is_csr"`

	// Address is the 3-hex-digit CSR address pulled from the quote,
	// empty when none was found.
	Address string `json:"csr_address,omitempty" yaml:"csr_address,omitempty"`

	// PrivilegeLevel is "M", "S", or "U" when the quote names a
	// privilege mode, empty otherwise.
	PrivilegeLevel string `json:"privilege_level,omitempty" yaml:"privilege_level,omitempty"`

	// RelatedCSRs lists associated register names.
	RelatedCSRs []string `json:"related_csrs" yaml:"related_csrs"`
}

var csrKeywords = []string{"csr", "control", "status", "register"}

var csrAddressRe = regexp.MustCompile(`0x[0-9A-Fa-f]{3}`)

// AnalyzeRegisterHierarchy flags register-flavored parameters and pulls
// the CSR address and privilege level out of the quote when present.
// Absent cues leave fields unset; the analysis never fails. Per R3.4.
func AnalyzeRegisterHierarchy(p types.Parameter) RegisterInfo {
	info := RegisterInfo{RelatedCSRs: []string{}}

	desc := strings.ToLower(p.Description)
	for _, kw := range csrKeywords {
		if strings.Contains(desc, kw) {
			info.IsCSR = true
			break
		}
	}
	if !info.IsCSR {
		return info
	}

	if m := csrAddressRe.FindString(p.SourceQuote); m != "" {
		info.Address = m
	}

	quote := strings.ToLower(p.SourceQuote)
	switch {
	case strings.Contains(quote, "machine"):
		info.PrivilegeLevel = "M"
	case strings.Contains(quote, "supervisor"):
		info.PrivilegeLevel = "S"
	case strings.Contains(quote, "user"):
		info.PrivilegeLevel = "U"
	}

	return info
}

// atoiSafe parses a digits-only string, returning 0 on overflow-free
// failure. The chapter regex guarantees digits.
func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
