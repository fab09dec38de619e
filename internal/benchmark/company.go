// Package benchmark is the reference data behind the risk endpoint: a SQLite
// table of assessed companies (KnowTheChain scores, UFLPA listings) and the
// service that turns a lookup into a verdict.
package benchmark

import (
	"errors"
	"strings"

	"github.com/raysh454/ethicheck/internal/assessor"
	"github.com/raysh454/ethicheck/internal/utils"
)

var (
	// ErrNotFound is returned by Store.Lookup when no brand or alias matches.
	ErrNotFound = errors.New("benchmark: company not found")

	// ErrNoVerdict is returned by Service.Assess when neither the store nor
	// the AI assessor can answer.
	ErrNoVerdict = errors.New("benchmark: no verdict")
)

// Company is one row of reference data.
type Company struct {
	Brand             string             `yaml:"brand" json:"brand"`
	Aliases           []string           `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	ProductCategories []string           `yaml:"product_categories,omitempty" json:"product_categories,omitempty"`
	Countries         []string           `yaml:"countries,omitempty" json:"countries,omitempty"`
	RiskLevel         assessor.RiskLevel `yaml:"risk_level" json:"risk_level"`
	Sources           []string           `yaml:"sources,omitempty" json:"sources,omitempty"`
	Reason            string             `yaml:"reason" json:"reason"`
	KTCScore          *float64           `yaml:"ktc_score,omitempty" json:"ktc_score,omitempty"`
	KTCRank           *int               `yaml:"ktc_rank,omitempty" json:"ktc_rank,omitempty"`
	BenchmarkYear     *int               `yaml:"benchmark_year,omitempty" json:"benchmark_year,omitempty"`
	Themes            *assessor.Themes   `yaml:"themes,omitempty" json:"themes,omitempty"`
	SourceURL         string             `yaml:"source_url,omitempty" json:"source_url,omitempty"`
	LastUpdated       string             `yaml:"last_updated,omitempty" json:"last_updated,omitempty"`
}

// Key is the lookup form of a brand or alias: lowercase, single-spaced,
// without surrounding punctuation.
func Key(name string) string {
	return strings.Trim(utils.NormalizeText(name), ".,;:'\"()")
}

// Assessment turns a stored company into a benchmark verdict.
func (c *Company) Assessment() assessor.RiskAssessment {
	level, ok := assessor.ParseRiskLevel(string(c.RiskLevel))
	if !ok {
		level = assessor.RiskUnknown
	}
	a := assessor.RiskAssessment{
		Source:     assessor.SourceKTC,
		RiskLevel:  level,
		Reason:     c.Reason,
		Disclaimer: assessor.KTCDisclaimer,
		Brand:      c.Brand,
		Themes:     c.Themes,
		SourceURL:  c.SourceURL,
	}
	if c.KTCScore != nil {
		a.KTCScore = *c.KTCScore
	}
	if c.KTCRank != nil {
		a.KTCRank = *c.KTCRank
	}
	if c.BenchmarkYear != nil {
		a.BenchmarkYear = *c.BenchmarkYear
	}
	return a
}
