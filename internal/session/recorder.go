package session

import (
	"context"
	"fmt"
	"time"

	"github.com/pooltrack/pooltrack/internal/pooltag"
)

// DefaultThreshold is the significance floor: a tag whose paged+nonpaged
// usage never reaches it is never tracked. Bounds session memory and keeps
// thousands of tiny tags out of the analysis.
const DefaultThreshold = 1 << 20 // 1 MiB

// Config holds the parameters of one sampling session.
type Config struct {
	Interval  time.Duration // wait between sweeps
	Samples   int           // planned sweep count
	Threshold uint64        // significance floor in bytes; 0 means DefaultThreshold

	// Sink, when set, receives each sweep's retained snapshots.
	Sink Sink
	// Progress, when set, is called after each completed sweep.
	Progress func(SweepInfo)
}

// Recorder owns all snapshot data for one session. It is single-threaded:
// one sweep at a time, and the inter-sweep wait is the sole suspension
// point. Concurrent sessions each need their own Recorder.
type Recorder struct {
	sampler   Sampler
	cfg       Config
	series    map[pooltag.Tag][]Snapshot
	sweeps    int
	started   time.Time
	lastSweep time.Time
}

// NewRecorder creates a Recorder that drives the given sampler.
func NewRecorder(sampler Sampler, cfg Config) *Recorder {
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	return &Recorder{
		sampler: sampler,
		cfg:     cfg,
		series:  make(map[pooltag.Tag][]Snapshot),
	}
}

// Run executes the sampling loop: an immediate first sweep, then
// cfg.Samples-1 further sweeps separated by cfg.Interval. The wait is a
// cooperative select against ctx, so cancellation lands between sweeps and
// never corrupts stored snapshots.
//
// A sampler failure on the first sweep is returned as-is: the session has
// nothing to analyze. A failure after at least one good sweep ends
// sampling but is also returned, so the caller can both report it and
// still analyze the partial result. Cancellation is not an error.
func (r *Recorder) Run(ctx context.Context) error {
	for i := 0; i < r.cfg.Samples; i++ {
		if i > 0 {
			timer := time.NewTimer(r.cfg.Interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
		}

		if err := r.sweep(); err != nil {
			if r.sweeps == 0 {
				return err
			}
			return fmt.Errorf("sampling ended early after %d samples: %w", r.sweeps, err)
		}

		if r.cfg.Progress != nil {
			r.cfg.Progress(SweepInfo{
				Index:   r.sweeps,
				Planned: r.cfg.Samples,
				Tracked: len(r.series),
				At:      r.lastSweep,
			})
		}
	}
	return nil
}

// sweep performs one sampler call and appends a snapshot for every
// currently-significant tag. An untracked tag starts a series only in a
// sweep where its usage meets the threshold; once tracked it is retained
// even if usage later drops.
func (r *Recorder) sweep() error {
	tags, err := r.sampler()
	if err != nil {
		return err
	}

	at := time.Now()
	if !at.After(r.lastSweep) {
		// Timestamps key sweep identity; two sweeps must never share one.
		at = r.lastSweep.Add(time.Nanosecond)
	}

	retained := make(map[pooltag.Tag]pooltag.Counters)
	for tag, c := range tags {
		if _, tracked := r.series[tag]; !tracked && c.TotalBytes() < r.cfg.Threshold {
			continue
		}
		r.series[tag] = append(r.series[tag], Snapshot{Counters: c, CapturedAt: at})
		retained[tag] = c
	}

	if r.sweeps == 0 {
		r.started = at
	}
	r.lastSweep = at
	r.sweeps++

	if r.cfg.Sink != nil {
		if err := r.cfg.Sink.RecordSweep(at, retained); err != nil {
			return fmt.Errorf("failed to record sweep: %w", err)
		}
	}
	return nil
}

// Result returns the session's accumulated series. Call after Run; the
// returned map is the recorder's own storage and must be treated as
// read-only.
func (r *Recorder) Result() *Result {
	return &Result{
		Series:  r.series,
		Sweeps:  r.sweeps,
		Started: r.started,
		Ended:   r.lastSweep,
	}
}
