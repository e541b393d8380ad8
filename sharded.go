package glidekv

import (
	"context"
	"strconv"

	"github.com/zeebo/xxh3"

	"github.com/glidekv/glidekv/wire"
)

// ShardSelector picks which shard to use for a given key.
type ShardSelector func(key string, shardCount int) int

// DefaultShardSelector uses Jump Hash over xxh3 for consistent shard
// selection. Jump Hash gives good distribution and few key movements when
// shards are added or removed.
func DefaultShardSelector(key string, shardCount int) int {
	return jumpHash(xxh3.HashString(key), shardCount)
}

// jumpHash implements the Jump consistent hashing algorithm.
// Copied from: https://github.com/dgryski/go-jump
// Google's "Jump" Consistent Hash function: https://arxiv.org/abs/1406.2294
func jumpHash(key uint64, numBuckets int) int {
	if numBuckets <= 0 {
		return 0
	}

	var b int64 = -1
	var j int64

	for j < int64(numBuckets) {
		b = j
		key = key*2862933555777941757 + 1
		j = int64(float64(b+1) * (float64(int64(1)<<31) / float64((key>>33)+1)))
	}

	return int(b)
}

// ShardedExecutor routes each command to a shard chosen by the command's
// keys. Commands touching several keys must route to a single shard;
// otherwise the call fails with ErrCrossShard before reaching any shard.
// Keyspace scans carry no key and are not routable.
type ShardedExecutor struct {
	shards   []Executor
	selector ShardSelector
}

// NewShardedExecutor builds a sharded executor. It panics when shards is
// empty; a nil selector means DefaultShardSelector.
func NewShardedExecutor(shards []Executor, selector ShardSelector) *ShardedExecutor {
	if len(shards) == 0 {
		panic("glidekv: sharded executor needs at least one shard")
	}
	if selector == nil {
		selector = DefaultShardSelector
	}
	return &ShardedExecutor{shards: shards, selector: selector}
}

func (e *ShardedExecutor) Execute(ctx context.Context, op wire.Opcode, args *wire.Args) (wire.Node, error) {
	shard, err := e.route(op, args)
	if err != nil {
		return wire.Node{}, err
	}
	return e.shards[shard].Execute(ctx, op, args)
}

// ExecuteBatch requires every entry of the batch to route to one shard.
func (e *ShardedExecutor) ExecuteBatch(ctx context.Context, ops []wire.Opcode, args []*wire.Args) ([]wire.Node, error) {
	if len(ops) == 0 {
		return nil, nil
	}
	shard, err := e.route(ops[0], args[0])
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(ops); i++ {
		s, err := e.route(ops[i], args[i])
		if err != nil {
			return nil, err
		}
		if s != shard {
			return nil, ErrCrossShard
		}
	}

	target := e.shards[shard]
	if be, ok := target.(BatchExecutor); ok {
		return be.ExecuteBatch(ctx, ops, args)
	}
	nodes := make([]wire.Node, len(ops))
	for i, op := range ops {
		n, err := target.Execute(ctx, op, args[i])
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return nodes, nil
}

// route resolves the command's keys and maps them to a shard index. All keys
// must agree on the shard.
func (e *ShardedExecutor) route(op wire.Opcode, args *wire.Args) (int, error) {
	keys, err := routingKeys(op, args)
	if err != nil {
		return 0, err
	}
	shard := e.selector(keys[0], len(e.shards))
	for _, k := range keys[1:] {
		if e.selector(k, len(e.shards)) != shard {
			return 0, ErrCrossShard
		}
	}
	return shard, nil
}

// routingKeys extracts the key tokens of a built command. The token layout
// per opcode is fixed by the builders.
func routingKeys(op wire.Opcode, args *wire.Args) ([]string, error) {
	tokens := args.Strings()
	switch op {
	case wire.OpGeoAdd, wire.OpGeoDist, wire.OpGeoHash, wire.OpGeoPos, wire.OpGeoSearch,
		wire.OpSAdd, wire.OpSRem, wire.OpSCard, wire.OpSMembers, wire.OpSIsMember,
		wire.OpSMIsMember, wire.OpSPop, wire.OpSRandMember,
		wire.OpSScan, wire.OpHScan, wire.OpZScan:
		if len(tokens) < 1 {
			return nil, ErrNoRoutingKey
		}
		return tokens[:1], nil

	case wire.OpGeoSearchStore, wire.OpSMove:
		if len(tokens) < 2 {
			return nil, ErrNoRoutingKey
		}
		return tokens[:2], nil

	case wire.OpSInter, wire.OpSUnion, wire.OpSDiff,
		wire.OpSInterStore, wire.OpSUnionStore, wire.OpSDiffStore:
		if len(tokens) == 0 {
			return nil, ErrNoRoutingKey
		}
		return tokens, nil

	case wire.OpSInterCard:
		if len(tokens) < 2 {
			return nil, ErrNoRoutingKey
		}
		n, err := strconv.Atoi(tokens[0])
		if err != nil || n < 1 || 1+n > len(tokens) {
			return nil, ErrNoRoutingKey
		}
		return tokens[1 : 1+n], nil
	}
	return nil, ErrNoRoutingKey
}
