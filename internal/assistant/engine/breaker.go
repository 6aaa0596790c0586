package engine

import (
	"sync"
	"time"
)

// CircuitBreaker gates the remote-model path. It counts consecutive
// exhausted-candidate failures; once the threshold is reached within the
// cool-down window the breaker is open and callers go straight to the local
// responder. The counter resets on any success, and also once the cool-down
// elapses regardless of success.
//
// State is process-wide and shared across in-flight calls, so all access is
// serialized here.
type CircuitBreaker struct {
	mu          sync.Mutex
	failures    int
	lastFailure time.Time

	maxFailures int
	cooldown    time.Duration
	now         func() time.Time
}

// NewCircuitBreaker builds a breaker. Non-positive arguments fall back to
// 5 failures / 5 minutes.
func NewCircuitBreaker(maxFailures int, cooldown time.Duration) *CircuitBreaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if cooldown <= 0 {
		cooldown = 5 * time.Minute
	}
	return &CircuitBreaker{
		maxFailures: maxFailures,
		cooldown:    cooldown,
		now:         time.Now,
	}
}

// withClock swaps the time source. Tests use it to step through cool-downs.
func (b *CircuitBreaker) withClock(now func() time.Time) *CircuitBreaker {
	b.now = now
	return b
}

// Allow reports whether a remote attempt may proceed. An elapsed cool-down
// resets the failure counter even without a success.
func (b *CircuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if b.failures >= b.maxFailures && now.Sub(b.lastFailure) < b.cooldown {
		return false
	}
	if !b.lastFailure.IsZero() && now.Sub(b.lastFailure) >= b.cooldown {
		b.failures = 0
	}
	return true
}

// RecordSuccess resets the consecutive-failure counter.
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
}

// RecordFailure counts one exhausted-candidates failure and reports whether
// the threshold has now been reached.
func (b *CircuitBreaker) RecordFailure() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.lastFailure = b.now()
	return b.failures >= b.maxFailures
}

// Failures returns the current consecutive-failure count.
func (b *CircuitBreaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}
