package extractor

import (
	"fmt"

	"github.com/raysh454/ethicheck/internal/logging"
	"github.com/raysh454/ethicheck/internal/page"
)

// DefaultStrategies returns the built-in strategies in priority order.
func DefaultStrategies() []Strategy {
	return []Strategy{
		StructuredData{},
		AmazonExtractor{},
		WalmartExtractor{},
		OpenGraph{},
		Microdata{},
		HostnameHeuristic{},
	}
}

// Resolver runs strategies in order and keeps the first one that yields a
// brand. Later strategies are not consulted and nothing is merged.
type Resolver struct {
	strategies []Strategy
	logger     logging.Logger
}

// NewResolver builds a resolver over strategies, or DefaultStrategies when
// none are given.
func NewResolver(logger logging.Logger, strategies ...Strategy) *Resolver {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Resolver{
		strategies: strategies,
		logger:     logging.OrNop(logger).With(logging.Component("extractor")),
	}
}

// Strategies returns the strategy names in priority order.
func (r *Resolver) Strategies() []string {
	names := make([]string, 0, len(r.strategies))
	for _, s := range r.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Resolve never returns nil. When no strategy finds a brand, it returns the
// last brand-less signal seen (the hostname heuristic's product guess with
// the default order), or an empty signal.
func (r *Resolver) Resolve(pc *page.Context) *PageSignal {
	var fallback *PageSignal

	for _, s := range r.strategies {
		sig, err := r.try(s, pc)
		if err != nil {
			r.logger.Debug("extraction strategy failed",
				logging.Field{Key: "strategy", Value: s.Name()},
				logging.Err(err))
			continue
		}
		if sig == nil {
			continue
		}
		sig.clean()
		sig.Strategy = s.Name()
		if sig.HasBrand() {
			r.logger.Debug("brand resolved",
				logging.Field{Key: "strategy", Value: s.Name()},
				logging.Field{Key: "brand", Value: sig.Brand})
			return sig
		}
		fallback = sig
	}

	if fallback == nil {
		return &PageSignal{}
	}
	return fallback
}

func (r *Resolver) try(s Strategy, pc *page.Context) (sig *PageSignal, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			sig, err = nil, fmt.Errorf("strategy %s panicked: %v", s.Name(), rec)
		}
	}()
	return s.TryExtract(pc)
}
