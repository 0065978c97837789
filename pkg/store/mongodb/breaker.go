package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/research-reports/pkg/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

type BreakerSettings struct {
	Name             string
	FailureThreshold uint32
	Timeout          time.Duration
}

// Breaker stops store round trips after repeated connectivity failures.
// Query-level errors (bad pipeline, no documents, caller cancellation) do not count.
type Breaker struct {
	cb *gobreaker.CircuitBreaker[any]
}

func NewBreaker(s BreakerSettings) *Breaker {
	if s.Name == "" {
		s.Name = "mongodb"
	}
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 5
	}
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}

	return &Breaker{cb: gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.FailureThreshold
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, _, to gobreaker.State) {
			metrics.StoreBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})}
}

func isSuccessful(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	return !mongo.IsNetworkError(err) && !mongo.IsTimeout(err)
}

// Execute runs fn through b. A nil breaker runs fn directly.
func Execute[T any](b *Breaker, fn func() (T, error)) (T, error) {
	if b == nil {
		return fn()
	}

	var zero T
	res, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		return zero, err
	}
	return resultAs[T](b.cb.Name(), res)
}

// resultAs recovers the typed result of a breaker round trip. A nil result is the zero value.
func resultAs[T any](name string, res any) (T, error) {
	var zero T
	if res == nil {
		return zero, nil
	}
	typed, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("breaker %s: unexpected result type %T", name, res)
	}
	return typed, nil
}

// IsUnavailable reports whether err was produced by an open breaker.
func IsUnavailable(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
