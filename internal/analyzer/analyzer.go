// Package analyzer classifies leak candidates from a session's tag series.
//
// A tag qualifies when its total pool usage never shrinks by more than the
// per-step noise epsilon across the whole series, and its net growth clears
// the significance floor. Allocator jitter (small transient dips) does not
// disqualify; a single real decrease does.
package analyzer

import (
	"sort"

	"github.com/pooltrack/pooltrack/internal/pooltag"
	"github.com/pooltrack/pooltrack/internal/session"
)

// Classification thresholds.
const (
	// MinSamples is the shortest series the analyzer will classify.
	// Two points cannot distinguish a trend from a step; three is the
	// minimum for the monotonicity check to mean anything.
	MinSamples = 3

	// epsilonFloor is the absolute lower bound of the per-step noise
	// epsilon. Pool allocators routinely release a few small blocks
	// between samples without the component actually shrinking.
	epsilonFloor = 64 << 10 // 64 KiB

	// epsilonDivisor scales the relative component of the epsilon:
	// 1% of the previous sample's total.
	epsilonDivisor = 100
)

// Config adjusts classification. The zero value gives the defaults.
type Config struct {
	// MinSamples overrides the minimum series length when > 0.
	MinSamples int
	// GrowthFloor excludes candidates whose net growth is below it.
	// 0 means session.DefaultThreshold, keeping the report floor aligned
	// with the tracking floor.
	GrowthFloor uint64
}

// Analyzer runs leak classification over completed tag series. Analysis is
// pure: it only reads the series and is deterministic for identical input.
type Analyzer struct {
	cfg Config
}

// New creates an Analyzer with the given config.
func New(cfg Config) *Analyzer {
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = MinSamples
	}
	if cfg.GrowthFloor == 0 {
		cfg.GrowthFloor = session.DefaultThreshold
	}
	return &Analyzer{cfg: cfg}
}

// Analyze classifies every series in the session result and returns the
// ranked report. Series shorter than the minimum are counted but excluded;
// series that ended before the session's final sweep are reported as
// resolved rather than classified.
func (a *Analyzer) Analyze(res *session.Result) *Report {
	report := &Report{}

	for tag, series := range res.Series {
		if len(series) < a.cfg.MinSamples {
			report.TooShort++
			continue
		}

		last := series[len(series)-1]
		if !res.Ended.IsZero() && last.CapturedAt.Before(res.Ended) {
			// Freed mid-run: whatever it leaked, it gave back.
			report.Resolved = append(report.Resolved, tag)
			continue
		}

		report.TagsAnalyzed++
		if cand, ok := a.classify(tag, series); ok {
			report.Candidates = append(report.Candidates, cand)
		}
	}

	sort.Slice(report.Candidates, func(i, j int) bool {
		ci, cj := report.Candidates[i], report.Candidates[j]
		if ci.NetGrowth != cj.NetGrowth {
			return ci.NetGrowth > cj.NetGrowth
		}
		return ci.Tag.Compare(cj.Tag) < 0
	})
	sort.Slice(report.Resolved, func(i, j int) bool {
		return report.Resolved[i].Compare(report.Resolved[j]) < 0
	})

	return report
}

// classify applies the monotonicity and growth checks to one series.
func (a *Analyzer) classify(tag pooltag.Tag, series []session.Snapshot) (LeakCandidate, bool) {
	for i := 0; i < len(series)-1; i++ {
		prev := series[i].TotalBytes()
		next := series[i+1].TotalBytes()
		if next >= prev {
			continue
		}
		// A decrease within the epsilon is allocator jitter; anything
		// larger disqualifies the tag outright.
		if prev-next > epsilon(prev) {
			return LeakCandidate{}, false
		}
	}

	first := series[0]
	last := series[len(series)-1]
	firstTotal := first.TotalBytes()
	lastTotal := last.TotalBytes()

	// Jitter-qualified series can still end flat or slightly down.
	if lastTotal <= firstTotal {
		return LeakCandidate{}, false
	}
	net := lastTotal - firstTotal
	if net < a.cfg.GrowthFloor {
		return LeakCandidate{}, false
	}

	elapsed := last.CapturedAt.Sub(first.CapturedAt).Seconds()
	if elapsed <= 0 {
		return LeakCandidate{}, false
	}

	return LeakCandidate{
		Tag:           tag,
		FirstBytes:    firstTotal,
		LastBytes:     lastTotal,
		LastPaged:     last.Counters.PagedBytes,
		LastNonpaged:  last.Counters.NonpagedBytes,
		NetGrowth:     net,
		DailyGrowth:   float64(net) / elapsed * 86400,
		Samples:       len(series),
		FirstCaptured: first.CapturedAt,
		LastCaptured:  last.CapturedAt,
	}, true
}

// epsilon returns the per-step noise tolerance relative to the previous
// sample's total: max(1% of prev, 64 KiB).
func epsilon(prev uint64) uint64 {
	eps := prev / epsilonDivisor
	if eps < epsilonFloor {
		eps = epsilonFloor
	}
	return eps
}
