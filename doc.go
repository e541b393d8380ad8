// Package glidekv is a command binding layer for a valkey-compatible store.
//
// The package builds wire argument vectors for the geo-spatial and set
// command families, dispatches them either synchronously or into a batch
// buffer, and decodes the store's tagged response trees back into Go values.
// The hard parts of a client (connections, pipelining, cluster topology,
// retries) belong to the native executor behind the Executor interface; this
// layer assumes the executor completes each call synchronously and does not
// retain argument memory past its return.
//
// A Session pairs an executor with a deployment mode:
//
//	s := glidekv.NewSession(exec, glidekv.Config{})
//	n, err := s.SAdd(ctx, "fleet", "car-1", "car-2")
//
// Batch mode buffers built commands and decodes all responses on Exec:
//
//	s.StartBatch()
//	s.SAdd(ctx, "fleet", "car-3")
//	s.SCard(ctx, "fleet")
//	results, err := s.Exec(ctx)
//
// Executor middleware (PoolExecutor, BreakerExecutor, ShardedExecutor)
// composes at the executor boundary without touching the dispatch pipeline.
package glidekv
