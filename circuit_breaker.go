package glidekv

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/glidekv/glidekv/wire"
)

// BreakerExecutor wraps an executor with a circuit breaker. When the inner
// executor keeps failing, the breaker opens and commands fail fast with
// gobreaker.ErrOpenState instead of hitting the store.
//
// Only executor failures count against the breaker; error replies decoded
// from a healthy round trip do not.
type BreakerExecutor struct {
	inner   Executor
	breaker *gobreaker.CircuitBreaker[wire.Node]
}

// NewBreakerExecutor wraps inner with a breaker built from settings.
func NewBreakerExecutor(inner Executor, settings gobreaker.Settings) *BreakerExecutor {
	return &BreakerExecutor{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[wire.Node](settings),
	}
}

// NewBreakerSettings returns settings for common use cases: the breaker
// trips after at least 3 requests with a 60% failure ratio.
func NewBreakerSettings(name string, maxRequests uint32, interval, timeout time.Duration) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: maxRequests,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	}
}

func (b *BreakerExecutor) Execute(ctx context.Context, op wire.Opcode, args *wire.Args) (wire.Node, error) {
	return b.breaker.Execute(func() (wire.Node, error) {
		return b.inner.Execute(ctx, op, args)
	})
}

// ExecuteBatch counts the whole batch as one breaker request. When the inner
// executor has no native batch path, entries run sequentially inside the
// same breaker request.
func (b *BreakerExecutor) ExecuteBatch(ctx context.Context, ops []wire.Opcode, args []*wire.Args) ([]wire.Node, error) {
	var nodes []wire.Node
	_, err := b.breaker.Execute(func() (wire.Node, error) {
		if be, ok := b.inner.(BatchExecutor); ok {
			var err error
			nodes, err = be.ExecuteBatch(ctx, ops, args)
			return wire.Node{}, err
		}
		nodes = make([]wire.Node, len(ops))
		for i, op := range ops {
			n, err := b.inner.Execute(ctx, op, args[i])
			if err != nil {
				return wire.Node{}, err
			}
			nodes[i] = n
		}
		return wire.Node{}, nil
	})
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// State returns the breaker's current state.
func (b *BreakerExecutor) State() gobreaker.State {
	return b.breaker.State()
}
