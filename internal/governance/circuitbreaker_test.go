package governance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream down")

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newBreaker(maxFailures int, timeout time.Duration) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(BreakerConfig{MaxFailures: maxFailures, OpenTimeout: timeout})
	cb.now = clock.Now
	return cb, clock
}

func fail(context.Context) error    { return errUpstream }
func succeed(context.Context) error { return nil }

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	cb, _ := newBreaker(3, time.Minute)
	ctx := context.Background()

	for range 2 {
		require.ErrorIs(t, cb.Execute(ctx, fail, nil), errUpstream)
	}
	assert.Equal(t, StateClosed, cb.State())

	// A success resets the count.
	require.NoError(t, cb.Execute(ctx, succeed, nil))
	for range 3 {
		require.ErrorIs(t, cb.Execute(ctx, fail, nil), errUpstream)
	}
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil }, nil)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerHalfOpenTrial(t *testing.T) {
	cb, clock := newBreaker(1, 10*time.Second)
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, fail, nil))
	require.Equal(t, StateOpen, cb.State())

	clock.Advance(11 * time.Second)
	require.ErrorIs(t, cb.Execute(ctx, fail, nil), errUpstream)
	assert.Equal(t, StateOpen, cb.State(), "failed trial re-opens")
	require.ErrorIs(t, cb.Execute(ctx, succeed, nil), ErrCircuitOpen)

	clock.Advance(11 * time.Second)
	require.NoError(t, cb.Execute(ctx, succeed, nil))
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerSingleTrialInFlight(t *testing.T) {
	cb, clock := newBreaker(1, time.Second)
	ctx := context.Background()
	require.Error(t, cb.Execute(ctx, fail, nil))
	clock.Advance(2 * time.Second)

	err := cb.Execute(ctx, func(ctx context.Context) error {
		assert.Equal(t, StateHalfOpen, cb.State())
		assert.ErrorIs(t, cb.Execute(ctx, succeed, nil), ErrCircuitOpen)
		return nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerFailureFilter(t *testing.T) {
	cb, _ := newBreaker(1, time.Minute)
	errCaller := errors.New("caller mistake")
	onlyUpstream := func(err error) bool { return errors.Is(err, errUpstream) }

	for range 5 {
		err := cb.Execute(context.Background(), func(context.Context) error { return errCaller }, onlyUpstream)
		require.ErrorIs(t, err, errCaller)
	}
	assert.Equal(t, StateClosed, cb.State())

	require.Error(t, cb.Execute(context.Background(), fail, onlyUpstream))
	assert.Equal(t, StateOpen, cb.State())
}

func TestBreakerIgnoredTrialStaysHalfOpen(t *testing.T) {
	cb, clock := newBreaker(1, 10*time.Second)
	ctx := context.Background()
	errCaller := errors.New("caller mistake")
	onlyUpstream := func(err error) bool { return errors.Is(err, errUpstream) }

	require.Error(t, cb.Execute(ctx, fail, onlyUpstream))
	require.Equal(t, StateOpen, cb.State())
	clock.Advance(11 * time.Second)

	err := cb.Execute(ctx, func(context.Context) error { return errCaller }, onlyUpstream)
	require.ErrorIs(t, err, errCaller)
	assert.Equal(t, StateHalfOpen, cb.State())

	// The slot is free again, and a real failure re-opens.
	require.ErrorIs(t, cb.Execute(ctx, fail, onlyUpstream), errUpstream)
	assert.Equal(t, StateOpen, cb.State())

	clock.Advance(11 * time.Second)
	require.ErrorIs(t, cb.Execute(ctx, func(context.Context) error { return context.Canceled }, onlyUpstream), context.Canceled)
	assert.Equal(t, StateHalfOpen, cb.State())
	require.NoError(t, cb.Execute(ctx, succeed, onlyUpstream))
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerDisabled(t *testing.T) {
	cb, _ := newBreaker(0, time.Minute)
	for range 20 {
		require.ErrorIs(t, cb.Execute(context.Background(), fail, nil), errUpstream)
	}
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerCancelledContext(t *testing.T) {
	cb, _ := newBreaker(1, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, cb.Execute(ctx, succeed, nil), context.Canceled)
	assert.Equal(t, 0, cb.Stats().ConsecutiveFailures)
}

func TestBreakerStateChangeAndReset(t *testing.T) {
	cb, _ := newBreaker(2, time.Minute)
	var transitions []string
	cb.OnStateChange(func(from, to State) {
		transitions = append(transitions, string(from)+"->"+string(to))
	})

	_ = cb.Execute(context.Background(), fail, nil)
	assert.Equal(t, 1, cb.Stats().ConsecutiveFailures)
	_ = cb.Execute(context.Background(), fail, nil)
	assert.Equal(t, StateOpen, cb.Stats().State)

	cb.Reset()
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, []string{"closed->open", "open->closed"}, transitions)
}
