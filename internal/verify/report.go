// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

// Summary holds the batch-level counts of a validation run.
type Summary struct {
	TotalParams      int     `json:"total_params" yaml:"total_params"`
	Verified         int     `json:"verified" yaml:"verified"`
	Suspicious       int     `json:"suspicious" yaml:"suspicious"`
	Hallucinated     int     `json:"hallucinated" yaml:"hallucinated"`
	VerificationRate float64 `json:"verification_rate" yaml:"verification_rate"`
}

// SuspiciousEntry names a suspicious parameter and its triggered codes.
type SuspiciousEntry struct {
	Name       string   `json:"name" yaml:"name"`
	Suspicions []string `json:"suspicions" yaml:"suspicions"`
}

// HallucinatedEntry names a hallucinated parameter and which hard check
// failed.
type HallucinatedEntry struct {
	Name            string  `json:"name" yaml:"name"`
	QuoteVerified   bool    `json:"quote_verified" yaml:"quote_verified"`
	NameVerified    bool    `json:"name_verified" yaml:"name_verified"`
	QuoteSimilarity float64 `json:"quote_similarity" yaml:"quote_similarity"`
}

// Report is the persisted validation artifact. Per R4.2.
type Report struct {
	Summary            Summary             `json:"summary" yaml:"summary"`
	VerifiedParams     []string            `json:"verified_params" yaml:"verified_params"`
	SuspiciousParams   []SuspiciousEntry   `json:"suspicious_params" yaml:"suspicious_params"`
	HallucinatedParams []HallucinatedEntry `json:"hallucinated_params" yaml:"hallucinated_params"`
	Details            map[string]Outcome  `json:"details" yaml:"details"`
}

// BuildReport flattens a verification result into the persisted report
// shape. The verification rate is verified over total, or 0.0 for an
// empty batch.
func (r *Result) BuildReport() *Report {
	total := len(r.Verified) + len(r.Suspicious) + len(r.Hallucinated)

	rate := 0.0
	if total > 0 {
		rate = float64(len(r.Verified)) / float64(total)
	}

	report := &Report{
		Summary: Summary{
			TotalParams:      total,
			Verified:         len(r.Verified),
			Suspicious:       len(r.Suspicious),
			Hallucinated:     len(r.Hallucinated),
			VerificationRate: rate,
		},
		VerifiedParams:     []string{},
		SuspiciousParams:   []SuspiciousEntry{},
		HallucinatedParams: []HallucinatedEntry{},
		Details:            r.Details,
	}

	for _, p := range r.Verified {
		report.VerifiedParams = append(report.VerifiedParams, p.Name)
	}
	for _, p := range r.Suspicious {
		report.SuspiciousParams = append(report.SuspiciousParams, SuspiciousEntry{
			Name:       p.Name,
			Suspicions: r.Details[p.Name].Suspicions,
		})
	}
	for _, p := range r.Hallucinated {
		d := r.Details[p.Name]
		report.HallucinatedParams = append(report.HallucinatedParams, HallucinatedEntry{
			Name:            p.Name,
			QuoteVerified:   d.QuoteVerified,
			NameVerified:    d.NameVerified,
			QuoteSimilarity: d.QuoteSimilarity,
		})
	}

	return report
}
