package recommend

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/polisai/archwise/internal/governance"
	"github.com/polisai/archwise/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardedSourceOpensOnUpstreamFailures(t *testing.T) {
	var calls atomic.Int32
	srv := fakeLLM(t, http.StatusBadGateway, "", &calls, nil)
	guarded := NewGuardedSource(newTestSource(srv.URL),
		governance.BreakerConfig{MaxFailures: 2, OpenTimeout: time.Hour}, nil)

	for range 2 {
		_, err := guarded.Recommend(context.Background(), sampleProblem())
		require.ErrorIs(t, err, domain.ErrRecommendationFailed)
	}
	assert.Equal(t, governance.StateOpen, guarded.Breaker().State())

	_, err := guarded.Recommend(context.Background(), sampleProblem())
	require.ErrorIs(t, err, domain.ErrRecommendationFailed)
	require.ErrorIs(t, err, governance.ErrCircuitOpen)
	assert.Equal(t, domain.RecommendationRetryMessage, err.Error())
	assert.Equal(t, int32(2), calls.Load(), "open breaker must not reach the model")
}

func TestGuardedSourceIgnoresInvalidProblems(t *testing.T) {
	var calls atomic.Int32
	srv := fakeLLM(t, http.StatusOK, validReply, &calls, nil)
	guarded := NewGuardedSource(newTestSource(srv.URL),
		governance.BreakerConfig{MaxFailures: 1, OpenTimeout: time.Hour}, nil)

	desc := sampleProblem()
	desc.Industry = ""
	for range 3 {
		_, err := guarded.Recommend(context.Background(), desc)
		require.ErrorIs(t, err, domain.ErrInvalidProblem)
	}
	assert.Equal(t, governance.StateClosed, guarded.Breaker().State())

	rec, err := guarded.Recommend(context.Background(), sampleProblem())
	require.NoError(t, err)
	assert.Equal(t, "microservices", rec.Architecture)
	assert.Equal(t, int32(1), calls.Load())
}

type cancelSource struct{}

func (cancelSource) Recommend(ctx context.Context, _ domain.ProblemDescription) (*domain.Recommendation, error) {
	return nil, domain.NewRecommendationError(context.Canceled)
}

func TestGuardedSourceCancellationDoesNotTrip(t *testing.T) {
	guarded := NewGuardedSource(cancelSource{},
		governance.BreakerConfig{MaxFailures: 1, OpenTimeout: time.Hour}, nil)

	_, err := guarded.Recommend(context.Background(), sampleProblem())
	require.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, governance.StateClosed, guarded.Breaker().State())
}
