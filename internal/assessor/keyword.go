package assessor

import (
	"fmt"
	"strings"

	"github.com/raysh454/ethicheck/internal/page"
	"github.com/raysh454/ethicheck/internal/utils"
)

// KeywordScanner is the local fallback: it scans normalized page text
// against the term tables.
type KeywordScanner struct {
	high     []Term
	moderate []Term
}

// NewKeywordScanner uses the given tables, or the built-in ones when both
// are nil.
func NewKeywordScanner(high, moderate []Term) *KeywordScanner {
	if high == nil && moderate == nil {
		high, moderate = HighRiskTerms, ModerateRiskTerms
	}
	return &KeywordScanner{high: high, moderate: moderate}
}

// PageText gathers the text the scanner looks at: og:title, og:site_name,
// <title>, the first heading, the description and visible body text.
func PageText(pc *page.Context) string {
	if !pc.HasDOM() {
		return ""
	}
	parts := []string{
		pc.Meta("og:title"),
		pc.Meta("og:site_name"),
		pc.Title(),
		pc.FirstHeading(),
		pc.Meta("description"),
		pc.VisibleText(),
	}
	return utils.NormalizeText(strings.Join(parts, " "))
}

// Scan scores a page.
func (k *KeywordScanner) Scan(pc *page.Context) RiskAssessment {
	return k.ScanText(PageText(pc))
}

// ScanText scores already gathered text. Each term found contributes its
// weight once.
func (k *KeywordScanner) ScanText(text string) RiskAssessment {
	text = utils.NormalizeText(text)

	var matches []KeywordMatch
	score := 0
	hasHigh := false
	for _, table := range [][]Term{k.high, k.moderate} {
		for _, t := range table {
			if t.Term == "" || !strings.Contains(text, t.Term) {
				continue
			}
			matches = append(matches, KeywordMatch{Term: t.Term, Weight: t.Weight, Reason: t.Reason, Level: t.Level})
			score += t.Weight
			if t.Level == RiskHigh {
				hasHigh = true
			}
		}
	}

	level := RiskLow
	switch {
	case hasHigh:
		level = RiskHigh
	case score > 0:
		level = RiskModerate
	}

	return RiskAssessment{
		Source:     SourceKeyword,
		RiskLevel:  level,
		Reason:     keywordReason(level, matches),
		Disclaimer: KeywordDisclaimer,
		Score:      score,
		Matches:    matches,
	}
}

func keywordReason(level RiskLevel, matches []KeywordMatch) string {
	if len(matches) == 0 {
		return "No supply-chain risk terms found on this page."
	}
	terms := make([]string, 0, len(matches))
	for _, m := range matches {
		if level != RiskHigh || m.Level == RiskHigh {
			terms = append(terms, m.Term)
		}
	}
	if level == RiskHigh {
		return fmt.Sprintf("Page mentions high-risk terms: %s.", strings.Join(terms, ", "))
	}
	return fmt.Sprintf("Page mentions supply-chain risk topics: %s.", strings.Join(terms, ", "))
}
