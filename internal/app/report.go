package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pooltrack/pooltrack/internal/analyzer"
	"github.com/pooltrack/pooltrack/internal/output"
	"github.com/pooltrack/pooltrack/internal/store"
)

var (
	reportSession int64

	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Re-analyze a stored sampling session",
		Long: `Run leak classification over a previously recorded session.

Analysis is recomputed from the stored snapshots every time, so the
same session always produces the same report. Without --session the
most recent session is used.`,
		Example: `  # Report on the latest session
  pooltrack report

  # Report on a specific session (see 'pooltrack sessions')
  pooltrack report --session 3`,
		RunE: runReport,
	}
)

func init() {
	reportCmd.Flags().Int64Var(&reportSession, "session", 0, "session ID (default: latest)")

	RootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	path, err := getDBPath()
	if err != nil {
		return err
	}
	st, err := store.New(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	id := reportSession
	if id == 0 {
		id, err = st.LatestSessionID()
		if err != nil {
			return err
		}
	}

	sess, err := st.GetSession(id)
	if err != nil {
		return err
	}
	res, err := st.LoadSeries(id)
	if err != nil {
		return err
	}
	if res.Sweeps == 0 {
		return fmt.Errorf("session %d has no stored samples", id)
	}

	report := analyzer.New(analyzer.Config{GrowthFloor: sess.ThresholdBytes}).Analyze(res)

	fmt.Printf("Session %d · started %s · %d samples every %ds\n\n",
		sess.ID,
		sess.StartedAt.Local().Format("2006-01-02 15:04:05"),
		res.Sweeps,
		sess.IntervalSeconds)
	fmt.Print(output.RenderLeakTable(report.Candidates))
	fmt.Print(output.RenderResolvedList(report.Resolved))
	fmt.Println()
	fmt.Print(output.RenderLeakSummary(report, res.Ended.Sub(res.Started)))

	return nil
}
