package glidekv

import (
	"context"

	"github.com/glidekv/glidekv/wire"
)

// Executor is the native-client boundary. Execute runs one command
// synchronously and returns the response tree or a transport error. The
// executor only reads the argument vector; it must not retain token memory
// past its return.
type Executor interface {
	Execute(ctx context.Context, op wire.Opcode, args *wire.Args) (wire.Node, error)
}

// BatchExecutor is implemented by executors that can run an accumulated
// batch in one round trip. Responses are positional. Session.Exec uses it
// when available and falls back to sequential Execute calls otherwise.
type BatchExecutor interface {
	ExecuteBatch(ctx context.Context, ops []wire.Opcode, args []*wire.Args) ([]wire.Node, error)
}

// Mode selects standalone or cluster dispatch behavior. It only matters for
// the keyspace scan, which needs cluster-aware routing in the native layer.
type Mode uint8

const (
	ModeStandalone Mode = iota
	ModeCluster
)

// Config holds session configuration. The zero value is a standalone
// session.
type Config struct {
	Mode Mode
}

// Session owns an executor and the per-session batch state. A session
// assumes exclusive access during a call: callers sharing one session across
// goroutines must synchronize externally.
type Session struct {
	exec  Executor
	mode  Mode
	batch *batch
	stats *statsCollector
}

// NewSession creates a session over the given executor.
func NewSession(exec Executor, cfg Config) *Session {
	return &Session{exec: exec, mode: cfg.Mode, stats: newStatsCollector()}
}

// Mode returns the session's dispatch mode.
func (s *Session) Mode() Mode { return s.mode }

// Stats returns a snapshot of the session's command counters.
func (s *Session) Stats() Stats { return s.stats.snapshot() }

// dispatch runs the sync-or-buffer half of the command pipeline. The caller
// has already validated parameters and built the argument vector; dispatch
// guarantees the vector is released on every path: after the executor
// returns (sync), or after Exec/Discard consumes the batch entry.
func dispatch[T any](ctx context.Context, s *Session, op wire.Opcode, args *wire.Args, dec func(wire.Node) T) (T, error) {
	var zero T
	if s.batch != nil {
		s.batch.add(op, args, func(n wire.Node) any { return dec(n) })
		s.stats.recordBuffered()
		return zero, nil
	}

	defer args.Release()
	node, err := s.exec.Execute(ctx, op, args)
	if err != nil {
		s.stats.recordFailed()
		return zero, &ExecError{Op: op, Err: err}
	}
	if node.Kind == wire.KindError {
		s.stats.recordFailed()
		return zero, &ServerError{Op: op, Message: node.Str}
	}
	s.stats.recordExecuted()
	return dec(node), nil
}
