package executor

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Stats counts executed statements.
type Stats struct {
	Execs    atomic.Int64
	Queries  atomic.Int64
	Errors   atomic.Int64
	Slow     atomic.Int64
	Duration atomic.Int64 // nanoseconds
}

// Snapshot returns the current values.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Execs:    s.Execs.Load(),
		Queries:  s.Queries.Load(),
		Errors:   s.Errors.Load(),
		Slow:     s.Slow.Load(),
		Duration: time.Duration(s.Duration.Load()),
	}
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Execs    int64
	Queries  int64
	Errors   int64
	Slow     int64
	Duration time.Duration
}

func (s StatsSnapshot) String() string {
	return fmt.Sprintf("execs=%d queries=%d errors=%d slow=%d duration=%s",
		s.Execs, s.Queries, s.Errors, s.Slow, s.Duration)
}

func (s *Stats) record(query bool, d, slowThreshold time.Duration, err error) {
	if query {
		s.Queries.Add(1)
	} else {
		s.Execs.Add(1)
	}
	s.Duration.Add(int64(d))
	if err != nil {
		s.Errors.Add(1)
	}
	if slowThreshold > 0 && d > slowThreshold {
		s.Slow.Add(1)
	}
}
