// Package session drives a sampling session: it repeatedly invokes the
// pool-tag sampler at a fixed interval and accumulates a bounded, ordered
// history of snapshots per significant tag.
package session

import (
	"time"

	"github.com/pooltrack/pooltrack/internal/pooltag"
)

// Snapshot is one tag's counters at one capture instant. All snapshots
// taken in the same sweep share the same timestamp.
type Snapshot struct {
	Counters   pooltag.Counters
	CapturedAt time.Time
}

// TotalBytes returns combined paged and nonpaged usage at this snapshot.
func (s Snapshot) TotalBytes() uint64 {
	return s.Counters.TotalBytes()
}

// Result is the completed (or cancelled-but-partial) outcome of a session:
// every retained series, keyed by raw tag, plus the sweep bookkeeping the
// analyzer needs. Series are ordered by ascending timestamp and are never
// mutated after the session ends; all derived quantities are recomputed
// from them.
type Result struct {
	Series  map[pooltag.Tag][]Snapshot
	Sweeps  int       // completed sampler sweeps
	Started time.Time // first sweep's capture time
	Ended   time.Time // last sweep's capture time
}

// Sink receives each sweep's retained snapshots as they land, e.g. to
// persist them. Sink errors abort the session's sampling loop.
type Sink interface {
	RecordSweep(at time.Time, tags map[pooltag.Tag]pooltag.Counters) error
}

// Sampler is the point-in-time query the recorder drives. It must be
// read-only with respect to system state so repeated calls are safe.
type Sampler func() (map[pooltag.Tag]pooltag.Counters, error)

// SweepInfo describes one completed sweep for progress reporting.
type SweepInfo struct {
	Index   int // 1-based
	Planned int
	Tracked int // series being tracked after this sweep
	At      time.Time
}
