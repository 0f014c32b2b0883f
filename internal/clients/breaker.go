package clients

import (
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	applog "pujcovna/internal/log"
	"pujcovna/internal/metrics"
)

// ErrUpstream marks every failure that originates in a remote API or in
// reaching it, so handlers can answer 502 without knowing the client.
var ErrUpstream = errors.New("upstream service error")

// APIError is a non-2xx answer from a remote API.
type APIError struct {
	Service string
	Status  int
	Body    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Service, e.Status, e.Body)
}

func (e *APIError) Is(target error) bool { return target == ErrUpstream }

// Breaker wraps gobreaker with metrics and logging.
type Breaker struct {
	cb   *gobreaker.CircuitBreaker
	name string
}

func NewBreaker(name string) *Breaker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,                // allowed in half-open
		Interval:    30 * time.Second, // failure counting window
		Timeout:     30 * time.Second, // open -> half-open
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && ratio >= 0.6
		},
		IsSuccessful: healthy,
		OnStateChange: func(cbName string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(cbName).Set(stateValue(to))
			applog.WithFields(map[string]any{
				"circuit": cbName,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	return &Breaker{cb: cb, name: name}
}

// Execute runs fn through the breaker. An open breaker yields ErrUpstream.
func (b *Breaker) Execute(fn func() (any, error)) (any, error) {
	out, err := b.cb.Execute(fn)
	if err != nil {
		if !rejected(err) && !healthy(err) {
			metrics.CircuitBreakerFailures.WithLabelValues(b.name).Inc()
		}
		return nil, b.formatError(err)
	}
	return out, nil
}

// healthy reports whether the breaker records err as a success. A rejected
// request (4xx) says nothing about the remote's health.
func healthy(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status < 500
	}
	return err == nil
}

// rejected is true when the breaker refused the call without running it.
func rejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func (b *Breaker) State() string { return b.cb.State().String() }

func (b *Breaker) formatError(err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState):
		return fmt.Errorf("%w: circuit breaker %s is open", ErrUpstream, b.name)
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: circuit breaker %s: too many requests in half-open state", ErrUpstream, b.name)
	}
	return err
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}
