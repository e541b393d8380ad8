package glidekv

import (
	"context"
	"sync/atomic"

	"github.com/jackc/puddle/v2"

	"github.com/glidekv/glidekv/wire"
)

// PoolStats contains statistics about a pooled executor.
// All fields are safe for concurrent access.
type PoolStats struct {
	AcquireCount      uint64 // Total acquire attempts
	AcquireWaitCount  uint64 // Acquires that had to wait
	Created           uint64 // Executors constructed
	Destroyed         uint64 // Executors destroyed
	AcquireErrors     uint64 // Canceled or failed acquires
	AcquireWaitTimeNs uint64 // Total nanoseconds spent waiting

	Total  int32 // Executors in the pool (active + idle)
	Idle   int32 // Idle executors available
	Active int32 // Executors currently in use
}

// PoolExecutor multiplexes commands over a bounded pool of executors, one
// acquired per call. An executor that returns a transport error is destroyed
// instead of going back to the pool.
type PoolExecutor struct {
	pool      *puddle.Pool[Executor]
	created   atomic.Int64
	destroyed atomic.Int64
}

// NewPoolExecutor builds a pool of at most maxSize executors. The
// constructor is called lazily as demand grows. An executor implementing
// io.Closer is closed when it leaves the pool.
func NewPoolExecutor(constructor func(ctx context.Context) (Executor, error), maxSize int32) (*PoolExecutor, error) {
	p := &PoolExecutor{}

	poolConfig := &puddle.Config[Executor]{
		Constructor: func(ctx context.Context) (Executor, error) {
			exec, err := constructor(ctx)
			if err == nil {
				p.created.Add(1)
			}
			return exec, err
		},
		Destructor: func(exec Executor) {
			p.destroyed.Add(1)
			if c, ok := exec.(interface{ Close() error }); ok {
				_ = c.Close()
			}
		},
		MaxSize: maxSize,
	}

	pool, err := puddle.NewPool(poolConfig)
	if err != nil {
		return nil, err
	}
	p.pool = pool
	return p, nil
}

func (p *PoolExecutor) Execute(ctx context.Context, op wire.Opcode, args *wire.Args) (wire.Node, error) {
	res, err := p.pool.Acquire(ctx)
	if err != nil {
		return wire.Node{}, err
	}
	node, err := res.Value().Execute(ctx, op, args)
	if err != nil {
		res.Destroy()
		return wire.Node{}, err
	}
	res.Release()
	return node, nil
}

// ExecuteBatch runs the whole batch on a single pooled executor so the
// entries share one round trip when the executor supports it.
func (p *PoolExecutor) ExecuteBatch(ctx context.Context, ops []wire.Opcode, args []*wire.Args) ([]wire.Node, error) {
	res, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	exec := res.Value()

	var nodes []wire.Node
	if be, ok := exec.(BatchExecutor); ok {
		nodes, err = be.ExecuteBatch(ctx, ops, args)
	} else {
		nodes = make([]wire.Node, len(ops))
		for i, op := range ops {
			nodes[i], err = exec.Execute(ctx, op, args[i])
			if err != nil {
				break
			}
		}
	}
	if err != nil {
		res.Destroy()
		return nil, err
	}
	res.Release()
	return nodes, nil
}

// Close destroys all pooled executors and rejects further calls.
func (p *PoolExecutor) Close() {
	p.pool.Close()
}

// Stats returns a snapshot of pool statistics.
func (p *PoolExecutor) Stats() PoolStats {
	s := p.pool.Stat()

	return PoolStats{
		Total:             s.TotalResources(),
		Idle:              s.IdleResources(),
		Active:            s.AcquiredResources(),
		AcquireCount:      uint64(s.AcquireCount()),
		AcquireWaitCount:  uint64(s.EmptyAcquireCount()),
		Created:           uint64(p.created.Load()),
		Destroyed:         uint64(p.destroyed.Load()),
		AcquireErrors:     uint64(s.CanceledAcquireCount()),
		AcquireWaitTimeNs: uint64(s.EmptyAcquireWaitTime().Nanoseconds()),
	}
}
