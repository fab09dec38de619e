package assessor

import (
	"context"

	"github.com/raysh454/ethicheck/internal/extractor"
	"github.com/raysh454/ethicheck/internal/logging"
	"github.com/raysh454/ethicheck/internal/page"
)

// Resolver produces exactly one assessment per page: remote first when there
// is a brand and a remote is configured, the keyword scan otherwise.
type Resolver struct {
	remote   Remote
	keywords *KeywordScanner
	logger   logging.Logger
}

// NewResolver accepts a nil remote (keyword-only) and a nil scanner (built-in
// tables).
func NewResolver(remote Remote, keywords *KeywordScanner, logger logging.Logger) *Resolver {
	if keywords == nil {
		keywords = NewKeywordScanner(nil, nil)
	}
	return &Resolver{
		remote:   remote,
		keywords: keywords,
		logger:   logging.OrNop(logger).With(logging.Component("risk-resolver")),
	}
}

// Resolve never fails. Remote errors are logged and fall through to the
// keyword scan.
func (r *Resolver) Resolve(ctx context.Context, sig *extractor.PageSignal, pc *page.Context) RiskAssessment {
	if r.remote != nil && sig.HasBrand() {
		a, err := r.remote.Assess(ctx, sig)
		if err == nil && a != nil {
			return *a
		}
		if err != nil {
			r.logger.Warn("remote assessment failed, using keyword fallback",
				logging.Field{Key: "brand", Value: sig.Brand},
				logging.Err(err))
		}
	}

	a := r.keywords.Scan(pc)
	if sig != nil {
		a.Brand = sig.Brand
	}
	return a
}
