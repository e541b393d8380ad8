package glidekv

import "sync/atomic"

// Stats contains counters about session activity.
// All fields are safe for concurrent access.
//
// For Prometheus integration, expose these as counters with an outcome
// label (executed, buffered, failed, recovered).
type Stats struct {
	Executed  uint64 // Commands executed and decoded
	Buffered  uint64 // Commands queued into a batch
	Failed    uint64 // Commands that failed (executor, server, or batch)
	Recovered uint64 // Replies with an unexpected shape mapped to a default
}

// statsCollector provides internal methods for updating session stats.
// Not exported - the session updates its own stats.
type statsCollector struct {
	stats *Stats
}

func newStatsCollector() *statsCollector {
	return &statsCollector{
		stats: &Stats{},
	}
}

func (c *statsCollector) recordExecuted() {
	atomic.AddUint64(&c.stats.Executed, 1)
}

func (c *statsCollector) recordBuffered() {
	atomic.AddUint64(&c.stats.Buffered, 1)
}

func (c *statsCollector) recordFailed() {
	atomic.AddUint64(&c.stats.Failed, 1)
}

func (c *statsCollector) recordRecovered() {
	atomic.AddUint64(&c.stats.Recovered, 1)
}

func (c *statsCollector) snapshot() Stats {
	return Stats{
		Executed:  atomic.LoadUint64(&c.stats.Executed),
		Buffered:  atomic.LoadUint64(&c.stats.Buffered),
		Failed:    atomic.LoadUint64(&c.stats.Failed),
		Recovered: atomic.LoadUint64(&c.stats.Recovered),
	}
}
