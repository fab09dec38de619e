package assessor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/raysh454/ethicheck/internal/extractor"
	"github.com/raysh454/ethicheck/internal/logging"
	"github.com/raysh454/ethicheck/internal/utils"
	"github.com/raysh454/ethicheck/internal/webclient"
)

// ErrUnavailable means the remote endpoint gave no usable verdict. Callers
// fall back to the keyword scan.
var ErrUnavailable = errors.New("assessor: remote assessment unavailable")

// DefaultRemoteTimeout bounds one remote call.
const DefaultRemoteTimeout = 10 * time.Second

// RemoteConfig points at the risk endpoint.
type RemoteConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Token    string        `yaml:"token"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Query is the body sent to the risk endpoint.
type Query struct {
	Brand   string `json:"brand"`
	Product string `json:"product,omitempty"`
	Country string `json:"country,omitempty"`
}

// QueryFromSignal copies the identity fields of sig.
func QueryFromSignal(sig *extractor.PageSignal) Query {
	if sig == nil {
		return Query{}
	}
	return Query{Brand: sig.Brand, Product: sig.Product, Country: sig.Country}
}

// Verdict is the wire form of a remote answer. Pointer fields distinguish
// "absent" from zero.
type Verdict struct {
	Source        string   `json:"source"`
	Brand         string   `json:"brand,omitempty"`
	RiskLevel     string   `json:"risk_level"`
	Reason        string   `json:"reason,omitempty"`
	Disclaimer    string   `json:"disclaimer,omitempty"`
	KTCScore      *float64 `json:"ktc_score,omitempty"`
	KTCRank       *int     `json:"ktc_rank,omitempty"`
	BenchmarkYear *int     `json:"benchmark_year,omitempty"`
	Themes        *Themes  `json:"themes,omitempty"`
	SourceURL     string   `json:"source_url,omitempty"`
	Confidence    *float64 `json:"confidence,omitempty"`
}

// VerdictFrom converts an assessment to its wire form.
func VerdictFrom(a RiskAssessment) Verdict {
	v := Verdict{
		Source:     string(a.Source),
		Brand:      a.Brand,
		RiskLevel:  string(a.RiskLevel),
		Reason:     a.Reason,
		Disclaimer: a.Disclaimer,
		Themes:     a.Themes,
		SourceURL:  a.SourceURL,
	}
	switch a.Source {
	case SourceKTC:
		v.KTCScore, v.KTCRank, v.BenchmarkYear = &a.KTCScore, &a.KTCRank, &a.BenchmarkYear
	case SourceAI:
		if a.HasConfidence {
			v.Confidence = &a.Confidence
		}
	}
	return v
}

// Remote is anything that can produce a remote verdict for a signal.
type Remote interface {
	Assess(ctx context.Context, sig *extractor.PageSignal) (*RiskAssessment, error)
}

// RemoteClient POSTs signals to the risk endpoint through a web client.
type RemoteClient struct {
	cfg    RemoteConfig
	wc     webclient.WebClient
	logger logging.Logger
}

// NewRemoteClient needs an absolute endpoint and a web client that can POST.
func NewRemoteClient(cfg RemoteConfig, wc webclient.WebClient, logger logging.Logger) (*RemoteClient, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("assessor: remote endpoint is empty")
	}
	if wc == nil {
		return nil, errors.New("assessor: nil webclient")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRemoteTimeout
	}
	return &RemoteClient{
		cfg:    cfg,
		wc:     wc,
		logger: logging.OrNop(logger).With(logging.Component("remote-assessor")),
	}, nil
}

// Assess returns ErrUnavailable (wrapped) for transport failures, non-2xx
// answers and unknown sources. A 2xx body that cannot be used as an AI
// verdict yields an explicit unknown verdict instead.
func (c *RemoteClient) Assess(ctx context.Context, sig *extractor.PageSignal) (*RiskAssessment, error) {
	q := QueryFromSignal(sig)
	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		headers.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.wc.Do(ctx, &webclient.Request{
		Method:  http.MethodPost,
		URL:     c.cfg.Endpoint,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var v Verdict
	if err := json.Unmarshal(resp.Body, &v); err != nil {
		c.logger.Warn("malformed remote verdict", logging.Field{Key: "brand", Value: q.Brand}, logging.Err(err))
		a := UnavailableAI(q.Brand)
		return &a, nil
	}
	return fromVerdict(v, q.Brand)
}

func fromVerdict(v Verdict, brand string) (*RiskAssessment, error) {
	level, ok := ParseRiskLevel(v.RiskLevel)
	brand = utils.FirstNonEmpty(v.Brand, brand)

	switch Source(strings.ToLower(v.Source)) {
	case SourceKTC:
		a := RiskAssessment{
			Source:     SourceKTC,
			RiskLevel:  level,
			Reason:     v.Reason,
			Disclaimer: utils.FirstNonEmpty(v.Disclaimer, KTCDisclaimer),
			Brand:      brand,
			Themes:     v.Themes,
			SourceURL:  v.SourceURL,
		}
		if v.KTCScore != nil {
			a.KTCScore = *v.KTCScore
		}
		if v.KTCRank != nil {
			a.KTCRank = *v.KTCRank
		}
		if v.BenchmarkYear != nil {
			a.BenchmarkYear = *v.BenchmarkYear
		}
		return &a, nil

	case SourceAI:
		if !ok || level == RiskUnknown || strings.TrimSpace(v.Reason) == "" {
			a := UnavailableAI(brand)
			return &a, nil
		}
		a := RiskAssessment{
			Source:     SourceAI,
			RiskLevel:  level,
			Reason:     v.Reason,
			Disclaimer: utils.FirstNonEmpty(v.Disclaimer, AIDisclaimer),
			Brand:      brand,
		}
		if v.Confidence != nil {
			a.Confidence, a.HasConfidence = clamp01(*v.Confidence), true
		}
		return &a, nil
	}
	return nil, fmt.Errorf("%w: unexpected source %q", ErrUnavailable, v.Source)
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
