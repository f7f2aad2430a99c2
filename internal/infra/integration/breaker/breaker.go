// Package breaker guards an enrichment provider with a circuit breaker so a failing
// upstream is not hammered by every portal request.
package breaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/agencyos/enrich-api/internal/entity"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type State string

const (
	StateClosed   State = "CLOSED"
	StateOpen     State = "OPEN"
	StateHalfOpen State = "HALF_OPEN"
)

func (s State) String() string {
	return string(s)
}

type CircuitBreaker struct {
	mu               sync.Mutex
	state            State
	failureCount     int
	failureThreshold int
	resetTimeout     time.Duration
	nextRetryTime    time.Time
	now              func() time.Time
	logger           *zap.Logger
}

func NewCircuitBreaker(failureThreshold int, resetTimeout time.Duration, logger *zap.Logger) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CircuitBreaker{
		state:            StateClosed,
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		now:              time.Now,
		logger:           logger,
	}
}

// State reports the current state, moving OPEN to HALF_OPEN once the reset timeout passed.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && !cb.now().Before(cb.nextRetryTime) {
		cb.transitionTo(StateHalfOpen)
	}
	return cb.state
}

func (cb *CircuitBreaker) CanExecute() bool {
	return cb.State() != StateOpen
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.logger.Info("Circuit breaker: provider recovered")
		cb.failureCount = 0
		cb.transitionTo(StateClosed)
		return
	}
	cb.failureCount = 0
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	cb.logger.Warn("Circuit breaker: failure recorded",
		zap.Int("count", cb.failureCount),
		zap.Int("threshold", cb.failureThreshold),
	)

	if cb.state == StateHalfOpen || cb.failureCount >= cb.failureThreshold {
		cb.nextRetryTime = cb.now().Add(cb.resetTimeout)
		cb.transitionTo(StateOpen)
	}
}

// must be called with mu held
func (cb *CircuitBreaker) transitionTo(newState State) {
	oldState := cb.state
	cb.state = newState

	nextRetry := "n/a"
	if newState == StateOpen {
		nextRetry = cb.nextRetryTime.Format(time.RFC3339)
	}

	cb.logger.Info("Circuit breaker: state transition",
		zap.String("from", oldState.String()),
		zap.String("to", newState.String()),
		zap.Int("failure_count", cb.failureCount),
		zap.String("next_retry", nextRetry),
	)
}

// Provider wraps another provider with a circuit breaker.
type Provider struct {
	next    entity.Provider
	breaker *CircuitBreaker
}

func NewProvider(next entity.Provider, cb *CircuitBreaker) *Provider {
	return &Provider{next: next, breaker: cb}
}

func (p *Provider) Name() string {
	return p.next.Name()
}

func (p *Provider) Breaker() *CircuitBreaker {
	return p.breaker
}

func (p *Provider) Lookup(ctx context.Context, email string) (*entity.EnrichmentProfile, error) {
	if !p.breaker.CanExecute() {
		return nil, entity.NewProviderError(p.next.Name(), entity.FailureUnavailable, ErrCircuitOpen)
	}

	profile, err := p.next.Lookup(ctx, email)
	switch {
	case err == nil:
		p.breaker.RecordSuccess()
	case errors.Is(err, context.Canceled):
		// caller went away; says nothing about provider health
	case isNoMatch(err):
		p.breaker.RecordSuccess()
	default:
		p.breaker.RecordFailure()
	}
	return profile, err
}

func isNoMatch(err error) bool {
	pe, ok := entity.AsProviderError(err)
	return ok && pe.Failure == entity.FailureNoMatch
}
