package benchmark

import (
	"context"
	"errors"
	"fmt"

	"github.com/raysh454/ethicheck/internal/assessor"
	"github.com/raysh454/ethicheck/internal/extractor"
	"github.com/raysh454/ethicheck/internal/logging"
)

// AIAssessor produces a verdict for a brand the store does not know.
type AIAssessor interface {
	Assess(ctx context.Context, q assessor.Query) (assessor.RiskAssessment, error)
}

// Lookuper is the read side of Store.
type Lookuper interface {
	Lookup(ctx context.Context, name string) (*Company, error)
}

// Service answers risk queries: store first, then the AI assessor.
type Service struct {
	store  Lookuper
	ai     AIAssessor
	logger logging.Logger
}

// NewService accepts a nil ai to disable the AI fallback.
func NewService(store Lookuper, ai AIAssessor, logger logging.Logger) *Service {
	return &Service{
		store:  store,
		ai:     ai,
		logger: logging.OrNop(logger).With(logging.Component("benchmark-service")),
	}
}

// Assess returns ErrNoVerdict when nothing can answer.
func (s *Service) Assess(ctx context.Context, q assessor.Query) (assessor.RiskAssessment, error) {
	if q.Brand == "" {
		return assessor.RiskAssessment{}, ErrNoVerdict
	}

	if s.store != nil {
		c, err := s.store.Lookup(ctx, q.Brand)
		switch {
		case err == nil:
			return c.Assessment(), nil
		case !errors.Is(err, ErrNotFound):
			s.logger.Warn("benchmark lookup failed", logging.Field{Key: "brand", Value: q.Brand}, logging.Err(err))
		}
	}

	if s.ai == nil {
		return assessor.RiskAssessment{}, ErrNoVerdict
	}
	a, err := s.ai.Assess(ctx, q)
	if err != nil {
		s.logger.Warn("ai assessment failed", logging.Field{Key: "brand", Value: q.Brand}, logging.Err(err))
		return assessor.RiskAssessment{}, fmt.Errorf("%w: %v", ErrNoVerdict, err)
	}
	return a, nil
}

// AsRemote lets the pipeline consult the service in-process, as if it were
// the remote endpoint.
func (s *Service) AsRemote() assessor.Remote {
	return localRemote{s}
}

type localRemote struct{ s *Service }

func (l localRemote) Assess(ctx context.Context, sig *extractor.PageSignal) (*assessor.RiskAssessment, error) {
	a, err := l.s.Assess(ctx, assessor.QueryFromSignal(sig))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", assessor.ErrUnavailable, err)
	}
	return &a, nil
}
