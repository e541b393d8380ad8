package glidekv

import (
	"context"
	"testing"

	"github.com/glidekv/glidekv/wire"
)

// recordedCall is one command as it reached the fake executor.
type recordedCall struct {
	op     wire.Opcode
	tokens []string
}

// fakeExecutor replays scripted replies in order and records every call.
// It implements Executor only, so batches fall back to sequential execution.
type fakeExecutor struct {
	replies []wire.Node
	err     error
	calls   []recordedCall
}

func (f *fakeExecutor) Execute(_ context.Context, op wire.Opcode, args *wire.Args) (wire.Node, error) {
	f.calls = append(f.calls, recordedCall{op: op, tokens: args.Strings()})
	if f.err != nil {
		return wire.Node{}, f.err
	}
	if len(f.replies) == 0 {
		return wire.Null(), nil
	}
	n := f.replies[0]
	f.replies = f.replies[1:]
	return n, nil
}

// fakeBatchExecutor adds a native batch path and counts its use.
type fakeBatchExecutor struct {
	fakeExecutor
	batchCalls int
}

func (f *fakeBatchExecutor) ExecuteBatch(ctx context.Context, ops []wire.Opcode, args []*wire.Args) ([]wire.Node, error) {
	f.batchCalls++
	if f.err != nil {
		return nil, f.err
	}
	nodes := make([]wire.Node, len(ops))
	for i, op := range ops {
		f.calls = append(f.calls, recordedCall{op: op, tokens: args[i].Strings()})
		if len(f.replies) > 0 {
			nodes[i] = f.replies[0]
			f.replies = f.replies[1:]
		} else {
			nodes[i] = wire.Null()
		}
	}
	return nodes, nil
}

func newFakeSession(t *testing.T, replies ...wire.Node) (*Session, *fakeExecutor) {
	t.Helper()
	exec := &fakeExecutor{replies: replies}
	return NewSession(exec, Config{}), exec
}
