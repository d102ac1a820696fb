package analyzer

import (
	"time"

	"github.com/pooltrack/pooltrack/internal/pooltag"
)

// LeakCandidate is one tag classified as growing monotonically (within
// noise tolerance) across a session. Derived entirely from stored
// snapshots; produced once per analysis run and never mutated.
type LeakCandidate struct {
	Tag           pooltag.Tag
	FirstBytes    uint64 // paged+nonpaged at first retained snapshot
	LastBytes     uint64 // paged+nonpaged at last retained snapshot
	LastPaged     uint64
	LastNonpaged  uint64
	NetGrowth     uint64
	DailyGrowth   float64 // estimated bytes per day
	Samples       int
	FirstCaptured time.Time
	LastCaptured  time.Time
}

// Report is the analyzer's structured output for one session.
type Report struct {
	// Candidates is ranked by net growth descending, ties broken by tag
	// bytes ascending. Identical input always yields identical order.
	Candidates []LeakCandidate

	// Resolved lists tracked tags whose series ended before the session
	// did (the component freed its pool usage mid-run), tag-ordered.
	Resolved []pooltag.Tag

	TagsAnalyzed int // series long enough to classify
	TooShort     int // series excluded as inconclusive
}
