package recommend

import (
	"context"
	"errors"
	"log/slog"

	"github.com/polisai/archwise/internal/governance"
	"github.com/polisai/archwise/pkg/domain"
)

// GuardedSource puts a circuit breaker in front of another Source. Once the
// breaker opens, calls fail immediately with the same generic
// recommendation error until a trial call succeeds. Invalid problem
// descriptions never count against the breaker.
type GuardedSource struct {
	next    Source
	breaker *governance.CircuitBreaker
}

// NewGuardedSource wraps next. Breaker transitions are logged.
func NewGuardedSource(next Source, cfg governance.BreakerConfig, logger *slog.Logger) *GuardedSource {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "recommend")
	breaker := governance.NewCircuitBreaker(cfg)
	breaker.OnStateChange(func(from, to governance.State) {
		logger.Warn("recommendation breaker state changed", "from", from, "to", to)
	})
	return &GuardedSource{next: next, breaker: breaker}
}

// Breaker exposes the breaker, e.g. for status reporting.
func (g *GuardedSource) Breaker() *governance.CircuitBreaker {
	return g.breaker
}

// Recommend calls the wrapped source unless the breaker is open.
func (g *GuardedSource) Recommend(ctx context.Context, desc domain.ProblemDescription) (*domain.Recommendation, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	var rec *domain.Recommendation
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		rec, err = g.next.Recommend(ctx, desc)
		return err
	}, countsAgainstBreaker)

	switch {
	case err == nil:
		return rec, nil
	case errors.Is(err, governance.ErrCircuitOpen), errors.Is(err, context.Canceled):
		return nil, domain.NewRecommendationError(err)
	default:
		return nil, err
	}
}

func countsAgainstBreaker(err error) bool {
	return !errors.Is(err, domain.ErrInvalidProblem) && !errors.Is(err, context.Canceled)
}
