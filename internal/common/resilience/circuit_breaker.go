package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/perplexiplay/backend/internal/common/clock"
	"github.com/perplexiplay/backend/internal/common/logger"
	"github.com/perplexiplay/backend/internal/observability/metrics"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker rejects calls for ResetAfter once Threshold consecutive
// calls have failed. The first call after that window is let through; its
// result closes the circuit again or restarts the window.
type CircuitBreaker struct {
	mu          sync.Mutex
	failures    int
	lastFailure time.Time
	threshold   int
	resetAfter  time.Duration
	name        string
	clock       clock.Clock
	log         *logger.Logger
}

type CircuitBreakerConfig struct {
	Threshold  int
	ResetAfter time.Duration
	Name       string
	Clock      clock.Clock
	Logger     *logger.Logger
}

func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	clk := config.Clock
	if clk == nil {
		clk = clock.NewRealClock()
	}
	threshold := config.Threshold
	if threshold <= 0 {
		threshold = 1
	}
	return &CircuitBreaker{
		threshold:  threshold,
		resetAfter: config.ResetAfter,
		name:       config.Name,
		clock:      clk,
		log:        config.Logger,
	}
}

// IsOpen reports whether calls are currently rejected. It does not use up
// the half-open probe.
func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures >= cb.threshold && cb.clock.Since(cb.lastFailure) <= cb.resetAfter
}

func (cb *CircuitBreaker) rejectLocked() bool {
	if cb.failures < cb.threshold {
		cb.setState(0)
		return false
	}

	if cb.clock.Since(cb.lastFailure) > cb.resetAfter {
		// half-open: allow one probe without clearing the failure count
		cb.lastFailure = cb.clock.Now()
		cb.setState(0)
		return false
	}

	cb.setState(1)
	return true
}

func (cb *CircuitBreaker) Call(ctx context.Context, fn func(context.Context) error) error {
	cb.mu.Lock()
	if cb.rejectLocked() {
		cb.mu.Unlock()
		if cb.log != nil {
			cb.log.Warnf("circuit breaker [%s]: circuit is open, rejecting call", cb.name)
		}
		return ErrCircuitOpen
	}
	cb.mu.Unlock()

	if err := fn(ctx); err != nil {
		cb.recordFailure()
		return err
	}

	cb.reset()
	return nil
}

func (cb *CircuitBreaker) recordFailure() {
	cb.mu.Lock()
	cb.failures++
	cb.lastFailure = cb.clock.Now()
	failures := cb.failures
	cb.mu.Unlock()

	if cb.name != "" {
		metrics.CircuitBreakerFailures.WithLabelValues(cb.name).Inc()
	}
	if cb.log != nil {
		cb.log.Warnf("circuit breaker [%s]: failure recorded (%d/%d)", cb.name, failures, cb.threshold)
	}
}

func (cb *CircuitBreaker) reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.lastFailure = time.Time{}
	cb.setState(0)
}

func (cb *CircuitBreaker) setState(state float64) {
	if cb.name != "" {
		metrics.CircuitBreakerState.WithLabelValues(cb.name).Set(state)
	}
}
