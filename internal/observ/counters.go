package observ

import (
	"fmt"
	"sync/atomic"
)

// Counters accumulates fixpoint statistics of a session.
type Counters struct {
	BlocksAnalyzed   atomic.Int64
	Enqueued         atomic.Int64
	Deduplicated     atomic.Int64
	RoutinesBound    atomic.Int64
	CallersRequeued  atomic.Int64
	CallSitesResolve atomic.Int64
}

// CounterSnapshot is a plain copy of Counters.
type CounterSnapshot struct {
	BlocksAnalyzed   int64 `json:"blocks_analyzed" msgpack:"blocks_analyzed"`
	Enqueued         int64 `json:"enqueued" msgpack:"enqueued"`
	Deduplicated     int64 `json:"deduplicated" msgpack:"deduplicated"`
	RoutinesBound    int64 `json:"routines_bound" msgpack:"routines_bound"`
	CallersRequeued  int64 `json:"callers_requeued" msgpack:"callers_requeued"`
	CallSitesResolve int64 `json:"call_sites_resolved" msgpack:"call_sites_resolved"`
}

// Snapshot reads all counters.
func (c *Counters) Snapshot() CounterSnapshot {
	return CounterSnapshot{
		BlocksAnalyzed:   c.BlocksAnalyzed.Load(),
		Enqueued:         c.Enqueued.Load(),
		Deduplicated:     c.Deduplicated.Load(),
		RoutinesBound:    c.RoutinesBound.Load(),
		CallersRequeued:  c.CallersRequeued.Load(),
		CallSitesResolve: c.CallSitesResolve.Load(),
	}
}

func (s CounterSnapshot) String() string {
	return fmt.Sprintf("routines=%d blocks=%d enqueued=%d dedup=%d requeued=%d callsites=%d",
		s.RoutinesBound, s.BlocksAnalyzed, s.Enqueued, s.Deduplicated, s.CallersRequeued, s.CallSitesResolve)
}
