package governance

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the breaker state.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

// BreakerConfig sets the breaker thresholds.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the
	// breaker. Zero disables it.
	MaxFailures int
	// OpenTimeout is how long the breaker stays open before admitting a
	// single trial call.
	OpenTimeout time.Duration
}

// DefaultBreakerConfig returns the defaults used when nothing is configured.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures: 5,
		OpenTimeout: 30 * time.Second,
	}
}

// CircuitBreaker counts consecutive failures of a guarded call. After
// MaxFailures it opens and rejects calls until OpenTimeout elapses; then one
// trial call is let through and its outcome closes or re-opens the breaker.
type CircuitBreaker struct {
	mu        sync.Mutex
	cfg       BreakerConfig
	state     State
	failures  int
	openUntil time.Time
	trial     bool
	changed   time.Time
	now       func() time.Time
	onChange  func(from, to State)
}

// NewCircuitBreaker creates a closed breaker.
func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures < 0 {
		cfg.MaxFailures = 0
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = DefaultBreakerConfig().OpenTimeout
	}
	return &CircuitBreaker{
		cfg:     cfg,
		state:   StateClosed,
		changed: time.Now(),
		now:     time.Now,
	}
}

// OnStateChange registers fn to run on every transition. fn runs with the
// breaker lock held and must not call back into the breaker.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onChange = fn
}

// Execute runs fn unless the breaker is open. failure decides which errors
// count against the breaker; a nil failure counts every non-nil error.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error, failure func(error) bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := cb.before(); err != nil {
		return err
	}
	err := fn(ctx)
	switch {
	case err == nil:
		cb.after(outcomeSuccess)
	case failure == nil || failure(err):
		cb.after(outcomeFailure)
	default:
		cb.after(outcomeIgnored)
	}
	return err
}

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeFailure
	// outcomeIgnored is an error that says nothing about upstream health.
	outcomeIgnored
)

func (cb *CircuitBreaker) before() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Before(cb.openUntil) {
			return ErrCircuitOpen
		}
		cb.transitionLocked(StateHalfOpen)
		cb.trial = true
		return nil
	case StateHalfOpen:
		if cb.trial {
			return ErrCircuitOpen
		}
		cb.trial = true
		return nil
	default:
		return nil
	}
}

func (cb *CircuitBreaker) after(o outcome) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		// An ignored trial proves nothing; the next call becomes the trial.
		cb.trial = false
		switch o {
		case outcomeFailure:
			cb.transitionLocked(StateOpen)
		case outcomeSuccess:
			cb.transitionLocked(StateClosed)
		}
		return
	}

	switch o {
	case outcomeIgnored:
		return
	case outcomeSuccess:
		cb.failures = 0
		return
	}
	cb.failures++
	if cb.cfg.MaxFailures > 0 && cb.failures >= cb.cfg.MaxFailures {
		cb.transitionLocked(StateOpen)
	}
}

func (cb *CircuitBreaker) transitionLocked(to State) {
	if cb.state == to {
		return
	}
	from := cb.state
	cb.state = to
	cb.failures = 0
	cb.changed = cb.now()
	if to == StateOpen {
		cb.openUntil = cb.changed.Add(cb.cfg.OpenTimeout)
	}
	if cb.onChange != nil {
		cb.onChange(from, to)
	}
}

// State returns the current state. An open breaker whose timeout has passed
// still reports open until the next call.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// BreakerStats is a snapshot of the breaker.
type BreakerStats struct {
	State               State  `json:"state"`
	ConsecutiveFailures int    `json:"consecutiveFailures"`
	LastStateChange     string `json:"lastStateChange"`
}

// Stats returns a snapshot of the breaker.
func (cb *CircuitBreaker) Stats() BreakerStats {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return BreakerStats{
		State:               cb.state,
		ConsecutiveFailures: cb.failures,
		LastStateChange:     cb.changed.Format(time.RFC3339),
	}
}

// Reset closes the breaker.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.transitionLocked(StateClosed)
	cb.failures = 0
	cb.trial = false
}
