package glidekv

import (
	"errors"
	"fmt"

	"github.com/glidekv/glidekv/wire"
)

// Error types mirror the command lifecycle: an ArgError means the command
// was rejected before any native call (no side effects, no tokens left
// live); an ExecError means the native executor failed; a ServerError means
// the store answered with an error reply. Unexpected response shapes are not
// errors: decoders fall back to the shape-appropriate zero value.

var (
	// ErrBatchActive is returned when a batch is started while another one
	// is still accumulating, or when an operation that cannot be buffered
	// (such as a scan iterator) runs during a batch.
	ErrBatchActive = errors.New("glidekv: batch already active")

	// ErrNoBatch is returned by Exec and Discard when no batch is active.
	ErrNoBatch = errors.New("glidekv: no batch active")

	// ErrCrossShard is returned by ShardedExecutor for commands whose keys
	// do not all map to the same shard.
	ErrCrossShard = errors.New("glidekv: keys map to different shards")

	// ErrNoRoutingKey is returned by ShardedExecutor for commands that carry
	// no key to route on, such as keyspace scans.
	ErrNoRoutingKey = errors.New("glidekv: command has no routing key")

	// errShortBatchReply marks a batch reply with fewer results than
	// submitted commands.
	errShortBatchReply = errors.New("glidekv: batch reply length mismatch")
)

// ArgError reports a command rejected by argument validation, before any
// native call was made.
type ArgError struct {
	Op     wire.Opcode
	Reason string
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("glidekv: %s: %s", e.Op, e.Reason)
}

// ExecError wraps a failure reported by the native executor. The decoder is
// never invoked for the failed command.
type ExecError struct {
	Op  wire.Opcode
	Err error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("glidekv: %s: execute: %v", e.Op, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// ServerError carries an error reply from the store.
type ServerError struct {
	Op      wire.Opcode
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("glidekv: %s: server: %s", e.Op, e.Message)
}

func argErr(op wire.Opcode, reason string) *ArgError {
	return &ArgError{Op: op, Reason: reason}
}
