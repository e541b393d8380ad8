package glidekv

import (
	"context"

	"github.com/glidekv/glidekv/wire"
)

type batchEntry struct {
	op     wire.Opcode
	args   *wire.Args
	decode func(wire.Node) any
}

// batch buffers built commands until Exec hands them to the executor in one
// round trip. Argument ownership transfers to the batch on add and is
// released when the batch is executed or discarded.
type batch struct {
	entries []batchEntry
}

func (b *batch) add(op wire.Opcode, args *wire.Args, decode func(wire.Node) any) {
	b.entries = append(b.entries, batchEntry{op: op, args: args, decode: decode})
}

func (b *batch) release() {
	for _, e := range b.entries {
		e.args.Release()
	}
	b.entries = nil
}

// StartBatch switches the session into buffering mode. Subsequent commands
// return zero values immediately and are queued until Exec or Discard.
func (s *Session) StartBatch() error {
	if s.batch != nil {
		return ErrBatchActive
	}
	s.batch = &batch{}
	return nil
}

// InBatch reports whether the session is buffering commands.
func (s *Session) InBatch() bool { return s.batch != nil }

// Discard drops the buffered commands without executing them and returns
// the session to synchronous mode.
func (s *Session) Discard() {
	if s.batch == nil {
		return
	}
	s.batch.release()
	s.batch = nil
}

// Exec sends the buffered commands and returns one result per command, in
// submission order. Each slot holds the command's decoded value, or an error
// value when the server answered that command with an error. A transport
// failure fails the whole batch.
//
// The session leaves buffering mode before execution, so a failed Exec does
// not strand it in batch state.
func (s *Session) Exec(ctx context.Context) ([]any, error) {
	if s.batch == nil {
		return nil, ErrNoBatch
	}
	b := s.batch
	s.batch = nil
	defer b.release()

	if len(b.entries) == 0 {
		return nil, nil
	}

	nodes, err := s.executeEntries(ctx, b.entries)
	if err != nil {
		s.stats.recordFailed()
		return nil, err
	}
	if len(nodes) != len(b.entries) {
		s.stats.recordFailed()
		return nil, &ExecError{Op: b.entries[0].op, Err: errShortBatchReply}
	}

	results := make([]any, len(nodes))
	for i, n := range nodes {
		e := b.entries[i]
		if n.Kind == wire.KindError {
			results[i] = &ServerError{Op: e.op, Message: n.Str}
			s.stats.recordFailed()
			continue
		}
		results[i] = e.decode(n)
		s.stats.recordExecuted()
	}
	return results, nil
}

// executeEntries uses the executor's native batch path when it has one and
// falls back to sequential round trips otherwise.
func (s *Session) executeEntries(ctx context.Context, entries []batchEntry) ([]wire.Node, error) {
	if be, ok := s.exec.(BatchExecutor); ok {
		ops := make([]wire.Opcode, len(entries))
		args := make([]*wire.Args, len(entries))
		for i, e := range entries {
			ops[i] = e.op
			args[i] = e.args
		}
		return be.ExecuteBatch(ctx, ops, args)
	}

	nodes := make([]wire.Node, len(entries))
	for i, e := range entries {
		n, err := s.exec.Execute(ctx, e.op, e.args)
		if err != nil {
			return nil, &ExecError{Op: e.op, Err: err}
		}
		nodes[i] = n
	}
	return nodes, nil
}
