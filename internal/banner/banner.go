// Package banner turns a RiskAssessment into the on-page indicator and keeps
// exactly one of them visible.
package banner

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/raysh454/ethicheck/internal/assessor"
)

// MaxKeywords caps the matches listed on a keyword banner.
const MaxKeywords = 5

// Banner is the rendered-agnostic indicator. Exactly one detail pointer is
// set, matching Source.
type Banner struct {
	ID          string          `json:"id"`
	Source      assessor.Source `json:"source"`
	Title       string          `json:"title"`
	Dismissible bool            `json:"dismissible"`
	Pill        Pill            `json:"pill"`
	Brand       string          `json:"brand,omitempty"`
	Reason      string          `json:"reason"`
	Disclaimer  string          `json:"disclaimer"`

	Benchmark *BenchmarkDetail `json:"benchmark,omitempty"`
	AI        *AIDetail        `json:"ai,omitempty"`
	Keywords  *KeywordDetail   `json:"keywords,omitempty"`
}

// Pill is the risk-tier badge.
type Pill struct {
	Level assessor.RiskLevel `json:"level"`
	Label string             `json:"label"`
}

type BenchmarkDetail struct {
	Score     float64 `json:"score"`
	Rank      int     `json:"rank,omitempty"`
	Year      int     `json:"year,omitempty"`
	Bars      []Bar   `json:"bars,omitempty"`
	SourceURL string  `json:"source_url,omitempty"`
}

// Bar is one theme score, 0-100.
type Bar struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type AIDetail struct {
	Confidence float64 `json:"confidence"`
	Line       string  `json:"line"`
}

type KeywordDetail struct {
	Score   int                     `json:"score"`
	Total   int                     `json:"total"`
	Matches []assessor.KeywordMatch `json:"matches"`
}

var titles = map[assessor.Source]string{
	assessor.SourceKTC:     "Supply chain benchmark",
	assessor.SourceAI:      "AI supply chain estimate",
	assessor.SourceKeyword: "Supply chain signals on this page",
}

// PillLabel is the badge text for a tier.
func PillLabel(l assessor.RiskLevel) string {
	switch l {
	case assessor.RiskHigh:
		return "High risk"
	case assessor.RiskModerate:
		return "Moderate risk"
	case assessor.RiskLow:
		return "Low risk"
	}
	return "Unknown risk"
}

// Build composes the common shell with the detail for a.Source.
func Build(a assessor.RiskAssessment) Banner {
	title, ok := titles[a.Source]
	if !ok {
		title = "Supply chain risk"
	}
	level := a.RiskLevel
	if level == "" {
		level = assessor.RiskUnknown
	}

	b := Banner{
		ID:          uuid.NewString(),
		Source:      a.Source,
		Title:       title,
		Dismissible: true,
		Pill:        Pill{Level: level, Label: PillLabel(level)},
		Brand:       a.Brand,
		Reason:      a.Reason,
		Disclaimer:  a.Disclaimer,
	}

	switch a.Source {
	case assessor.SourceKTC:
		d := &BenchmarkDetail{Score: a.KTCScore, Rank: a.KTCRank, Year: a.BenchmarkYear, SourceURL: a.SourceURL}
		if a.Themes != nil {
			for _, th := range a.Themes.Entries() {
				d.Bars = append(d.Bars, Bar{Label: th.Label, Score: clampScore(th.Score)})
			}
		}
		b.Benchmark = d
	case assessor.SourceAI:
		b.AI = &AIDetail{Confidence: a.Confidence, Line: confidenceLine(a)}
	case assessor.SourceKeyword:
		b.Keywords = &KeywordDetail{Score: a.Score, Total: len(a.Matches), Matches: TopMatches(a.Matches, MaxKeywords)}
	}
	return b
}

func confidenceLine(a assessor.RiskAssessment) string {
	if a.RiskLevel == assessor.RiskUnknown || a.RiskLevel == "" || !a.HasConfidence {
		return "Confidence: n/a"
	}
	return fmt.Sprintf("Confidence: %.0f%%", a.Confidence*100)
}

// TopMatches returns up to n matches, high tier first, then by weight.
// Equal matches keep their original order.
func TopMatches(matches []assessor.KeywordMatch, n int) []assessor.KeywordMatch {
	out := append([]assessor.KeywordMatch(nil), matches...)
	sort.SliceStable(out, func(i, j int) bool {
		if ri, rj := out[i].Level.Rank(), out[j].Level.Rank(); ri != rj {
			return ri > rj
		}
		return out[i].Weight > out[j].Weight
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func clampScore(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 100:
		return 100
	}
	return f
}
