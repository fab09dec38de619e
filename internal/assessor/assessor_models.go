package assessor

import "strings"

// Source tags which fallback produced a RiskAssessment.
type Source string

const (
	SourceKTC     Source = "ktc"
	SourceAI      Source = "ai"
	SourceKeyword Source = "keyword"
)

// RiskLevel is the displayed risk tier.
type RiskLevel string

const (
	RiskHigh     RiskLevel = "high"
	RiskModerate RiskLevel = "moderate"
	RiskLow      RiskLevel = "low"
	RiskUnknown  RiskLevel = "unknown"
)

// ParseRiskLevel accepts a tier name in any case. ok is false for anything
// outside high/moderate/low/unknown.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch l := RiskLevel(strings.ToLower(strings.TrimSpace(s))); l {
	case RiskHigh, RiskModerate, RiskLow, RiskUnknown:
		return l, true
	}
	return RiskUnknown, false
}

// Rank orders tiers for sorting; higher is worse.
func (l RiskLevel) Rank() int {
	switch l {
	case RiskHigh:
		return 3
	case RiskModerate:
		return 2
	case RiskLow:
		return 1
	}
	return 0
}

const (
	KTCDisclaimer     = "Based on the KnowTheChain benchmark. Scores reflect company disclosures, not audited conditions."
	AIDisclaimer      = "AI-generated estimate. It may be inaccurate; verify before relying on it."
	KeywordDisclaimer = "Keyword heuristic only. Terms on this page suggest topics to check, not a verified risk."

	aiUnavailableReason = "AI assessment unavailable"
)

// Themes are the seven KnowTheChain benchmark themes, each scored 0-100.
type Themes struct {
	CommitmentGovernance       float64 `json:"commitment_governance" yaml:"commitment_governance"`
	TraceabilityRiskAssessment float64 `json:"traceability_risk_assessment" yaml:"traceability_risk_assessment"`
	PurchasingPractices        float64 `json:"purchasing_practices" yaml:"purchasing_practices"`
	Recruitment                float64 `json:"recruitment" yaml:"recruitment"`
	WorkerVoice                float64 `json:"worker_voice" yaml:"worker_voice"`
	Monitoring                 float64 `json:"monitoring" yaml:"monitoring"`
	Remedy                     float64 `json:"remedy" yaml:"remedy"`
}

// ThemeScore is one labelled theme.
type ThemeScore struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Entries lists the themes in benchmark order.
func (t Themes) Entries() []ThemeScore {
	return []ThemeScore{
		{"commitment_governance", "Commitment & Governance", t.CommitmentGovernance},
		{"traceability_risk_assessment", "Traceability & Risk Assessment", t.TraceabilityRiskAssessment},
		{"purchasing_practices", "Purchasing Practices", t.PurchasingPractices},
		{"recruitment", "Recruitment", t.Recruitment},
		{"worker_voice", "Worker Voice", t.WorkerVoice},
		{"monitoring", "Monitoring", t.Monitoring},
		{"remedy", "Remedy", t.Remedy},
	}
}

// KeywordMatch is one term found on the page.
type KeywordMatch struct {
	Term   string    `json:"term"`
	Weight int       `json:"weight"`
	Reason string    `json:"reason"`
	Level  RiskLevel `json:"level"`
}

// RiskAssessment is the verdict shown for one page state. Source-specific
// fields are zero for other sources.
type RiskAssessment struct {
	Source     Source    `json:"source"`
	RiskLevel  RiskLevel `json:"risk_level"`
	Reason     string    `json:"reason"`
	Disclaimer string    `json:"disclaimer"`
	Brand      string    `json:"brand,omitempty"`

	// ktc
	KTCScore      float64 `json:"ktc_score,omitempty"`
	KTCRank       int     `json:"ktc_rank,omitempty"`
	BenchmarkYear int     `json:"benchmark_year,omitempty"`
	Themes        *Themes `json:"themes,omitempty"`
	SourceURL     string  `json:"source_url,omitempty"`

	// ai; HasConfidence is false when the verdict carried no confidence
	Confidence    float64 `json:"confidence,omitempty"`
	HasConfidence bool    `json:"has_confidence,omitempty"`

	// keyword
	Score   int            `json:"score,omitempty"`
	Matches []KeywordMatch `json:"matches,omitempty"`
}

// UnavailableAI is the verdict for an AI answer that could not be used.
func UnavailableAI(brand string) RiskAssessment {
	return RiskAssessment{
		Source:     SourceAI,
		RiskLevel:  RiskUnknown,
		Reason:     aiUnavailableReason,
		Disclaimer: AIDisclaimer,
		Brand:      brand,
	}
}
