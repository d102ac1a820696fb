package app

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pooltrack/pooltrack/internal/analyzer"
	"github.com/pooltrack/pooltrack/internal/output"
	"github.com/pooltrack/pooltrack/internal/pooltag"
	"github.com/pooltrack/pooltrack/internal/session"
	"github.com/pooltrack/pooltrack/internal/store"
)

var (
	trackInterval  int
	trackSamples   int
	trackThreshold string
	trackNote      string
	trackVerbose   bool

	trackCmd = &cobra.Command{
		Use:   "track",
		Short: "Run a sampling session and report leak candidates",
		Long: `Sample the pool-tag table repeatedly and classify leak candidates.

The session takes --samples samples, --interval seconds apart, tracking
every tag whose paged+nonpaged usage meets --threshold when it first
appears. At the end, tags that grew at (nearly) every sample are ranked
by net growth and printed with an estimated daily growth rate.

Ctrl+C stops sampling early; whatever was collected is still analyzed
and stored. A longer run gives a stronger verdict: tags need at least
three samples to be classified at all.`,
		Example: `  # Default 10-minute run (30s × 20)
  pooltrack track

  # Overnight: one sample a minute for 8 hours
  pooltrack track --interval 60 --samples 480 --note "overnight"

  # Watch each sweep's biggest movers as they land
  pooltrack track --verbose`,
		RunE: runTrack,
	}
)

func init() {
	trackCmd.Flags().IntVar(&trackInterval, "interval", 30, "seconds between samples")
	trackCmd.Flags().IntVar(&trackSamples, "samples", 20, "number of samples to take")
	trackCmd.Flags().StringVar(&trackThreshold, "threshold", "1MB", "minimum tag usage to track (e.g. 1MB, 512KiB)")
	trackCmd.Flags().StringVar(&trackNote, "note", "", "note stored with the session")
	trackCmd.Flags().BoolVarP(&trackVerbose, "verbose", "v", false, "print per-sweep growth instead of a progress bar")

	RootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
	if trackInterval <= 0 {
		return fmt.Errorf("invalid interval: %d (must be positive)", trackInterval)
	}
	if trackSamples <= 0 {
		return fmt.Errorf("invalid samples: %d (must be positive)", trackSamples)
	}
	threshold, err := humanize.ParseBytes(trackThreshold)
	if err != nil {
		return fmt.Errorf("invalid threshold %q: %w", trackThreshold, err)
	}

	path, err := getDBPath()
	if err != nil {
		return err
	}
	st, err := store.New(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()
	if err := st.CreateSchema(); err != nil {
		return err
	}

	started := time.Now().UTC()
	sessionID, err := st.CreateSession(started, trackInterval, trackSamples, threshold, trackNote)
	if err != nil {
		return err
	}

	total := time.Duration(trackInterval) * time.Duration(trackSamples-1) * time.Second
	fmt.Printf("Sampling pool tags every %ds for %d samples (~%s) · threshold %s · session %d\n",
		trackInterval, trackSamples, total.Round(time.Second), humanize.IBytes(threshold), sessionID)

	cfg := session.Config{
		Interval:  time.Duration(trackInterval) * time.Second,
		Samples:   trackSamples,
		Threshold: threshold,
		Sink:      st.SweepWriter(sessionID),
	}

	var rec *session.Recorder
	var baseline map[pooltag.Tag]pooltag.Counters
	sampler := func() (map[pooltag.Tag]pooltag.Counters, error) {
		tags, err := pooltag.Sample()
		if err == nil && baseline == nil {
			baseline = tags
		}
		return tags, err
	}

	var bar *output.ProgressBar
	if trackVerbose {
		cfg.Progress = func(si session.SweepInfo) {
			fmt.Printf("[%d/%d] %s\n", si.Index, si.Planned, sweepStatus(si, baseline, rec))
		}
	} else {
		bar = output.NewProgress(trackSamples)
		cfg.Progress = func(si session.SweepInfo) {
			bar.Step(si.Index, fmt.Sprintf("%d tags tracked", si.Tracked))
		}
	}
	rec = session.NewRecorder(sampler, cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := rec.Run(ctx)
	if bar != nil {
		bar.Finish()
	}

	res := rec.Result()
	if res.Sweeps == 0 {
		// Not even one valid sample: nothing to analyze, the run failed.
		return runErr
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; analyzing collected samples\n", runErr)
	}
	if ctx.Err() != nil {
		fmt.Fprintf(os.Stderr, "Interrupted after %d samples; analyzing collected samples\n", res.Sweeps)
	}

	if err := st.FinishSession(sessionID, res.Ended, res.Sweeps); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	report := analyzer.New(analyzer.Config{GrowthFloor: threshold}).Analyze(res)

	fmt.Println()
	fmt.Print(output.RenderLeakTable(report.Candidates))
	fmt.Print(output.RenderResolvedList(report.Resolved))
	fmt.Println()
	fmt.Print(output.RenderLeakSummary(report, res.Ended.Sub(res.Started)))

	return nil
}

// interimFloor is the smallest baseline-relative growth worth naming in
// verbose per-sweep output.
const interimFloor = 100 << 10 // 100 KiB

// sweepStatus summarizes a sweep for verbose mode: every tag that has
// grown at least interimFloor since the baseline sweep, largest first.
func sweepStatus(si session.SweepInfo, baseline map[pooltag.Tag]pooltag.Counters, rec *session.Recorder) string {
	type grower struct {
		tag   pooltag.Tag
		delta uint64
	}
	var growers []grower

	for tag, series := range rec.Result().Series {
		cur := series[len(series)-1]
		if !cur.CapturedAt.Equal(si.At) {
			continue // not present this sweep
		}
		base, ok := baseline[tag]
		if !ok {
			continue
		}
		curTotal := cur.TotalBytes()
		baseTotal := base.TotalBytes()
		if curTotal <= baseTotal {
			continue
		}
		if delta := curTotal - baseTotal; delta >= interimFloor {
			growers = append(growers, grower{tag, delta})
		}
	}

	if len(growers) == 0 {
		return fmt.Sprintf("%d tags tracked, no growth over %s yet",
			si.Tracked, humanize.IBytes(interimFloor))
	}

	sort.Slice(growers, func(i, j int) bool {
		if growers[i].delta != growers[j].delta {
			return growers[i].delta > growers[j].delta
		}
		return growers[i].tag.Compare(growers[j].tag) < 0
	})

	parts := make([]string, len(growers))
	for i, g := range growers {
		parts[i] = fmt.Sprintf("%s +%s", g.tag.Display(), humanize.IBytes(g.delta))
	}
	return fmt.Sprintf("%d tags tracked, grown: %s", si.Tracked, strings.Join(parts, ", "))
}
