package app

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/raysh454/ethicheck/internal/assessor"
	"github.com/raysh454/ethicheck/internal/banner"
	"github.com/raysh454/ethicheck/internal/classifier"
	"github.com/raysh454/ethicheck/internal/extractor"
	"github.com/raysh454/ethicheck/internal/logging"
	"github.com/raysh454/ethicheck/internal/page"
	"github.com/raysh454/ethicheck/internal/webclient"
)

// Outcome is everything one pipeline run produced.
type Outcome struct {
	URL            string                    `json:"url"`
	Checkout       bool                      `json:"checkout"`
	Classification classifier.Classification `json:"classification"`
	Signal         *extractor.PageSignal     `json:"signal,omitempty"`
	Assessment     *assessor.RiskAssessment  `json:"assessment,omitempty"`
	Banner         *banner.Banner            `json:"banner,omitempty"`
	FetchError     string                    `json:"fetch_error,omitempty"`
	AssessedAt     time.Time                 `json:"assessed_at"`
}

// Pipeline runs classify, fetch, extract and assess for one URL.
type Pipeline struct {
	classifier *classifier.Classifier
	wc         webclient.WebClient
	extractor  *extractor.Resolver
	risk       *assessor.Resolver
	logger     logging.Logger
}

func NewPipeline(cl *classifier.Classifier, wc webclient.WebClient, ex *extractor.Resolver, risk *assessor.Resolver, logger logging.Logger) *Pipeline {
	return &Pipeline{
		classifier: cl,
		wc:         wc,
		extractor:  ex,
		risk:       risk,
		logger:     logging.OrNop(logger).With(logging.Component("pipeline")),
	}
}

// IsCheckout classifies rawURL.
func (p *Pipeline) IsCheckout(rawURL string) bool {
	return p.classifier.IsCheckout(rawURL)
}

// Classify explains how rawURL was classified.
func (p *Pipeline) Classify(rawURL string) classifier.Classification {
	return p.classifier.Classify(rawURL)
}

// Assess runs the whole pipeline. A page that is not checkout-like returns
// an Outcome with only the classification. A failed fetch degrades to an
// empty page so something is always rendered. The only error is ctx's.
func (p *Pipeline) Assess(ctx context.Context, rawURL string) (*Outcome, error) {
	out := &Outcome{
		URL:            rawURL,
		Classification: p.classifier.Classify(rawURL),
		AssessedAt:     time.Now().UTC(),
	}
	out.Checkout = out.Classification.Checkout
	if !out.Checkout {
		return out, nil
	}

	pc := p.fetch(ctx, rawURL, out)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sig := p.extractor.Resolve(pc)
	a := p.risk.Resolve(ctx, sig, pc)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := banner.Build(a)

	out.Signal, out.Assessment, out.Banner = sig, &a, &b
	p.logger.Info("page assessed",
		logging.Field{Key: "url", Value: rawURL},
		logging.Field{Key: "brand", Value: sig.Brand},
		logging.Field{Key: "strategy", Value: sig.Strategy},
		logging.Field{Key: "source", Value: string(a.Source)},
		logging.Field{Key: "risk_level", Value: string(a.RiskLevel)})
	return out, nil
}

func (p *Pipeline) fetch(ctx context.Context, rawURL string, out *Outcome) *page.Context {
	resp, err := p.wc.Get(ctx, rawURL)
	if err == nil && !resp.OK() {
		err = errors.New(httpStatusText(resp.StatusCode))
	}
	if err != nil {
		out.FetchError = err.Error()
		p.logger.Warn("fetch failed, assessing without page content",
			logging.Field{Key: "url", Value: rawURL}, logging.Err(err))
		return page.Empty(rawURL)
	}

	pc, err := page.Parse(rawURL, resp.Body)
	if err != nil {
		p.logger.Debug("html parse error", logging.Field{Key: "url", Value: rawURL}, logging.Err(err))
	}
	return pc
}

func httpStatusText(code int) string {
	return "unexpected status " + strconv.Itoa(code)
}
