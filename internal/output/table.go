// Package output renders pooltrack's analysis results for the terminal.
//
// Every render function is pure: it builds and returns a string, never
// prints. Tables use fixed-width columns, ASCII plus box-drawing rules,
// and ANSI color only when stdout is a TTY and NO_COLOR is unset.
package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/pooltrack/pooltrack/internal/analyzer"
	"github.com/pooltrack/pooltrack/internal/owners"
	"github.com/pooltrack/pooltrack/internal/pooltag"
	"github.com/pooltrack/pooltrack/internal/store"
)

// ANSI color codes for growth-rate display
const (
	colorReset  = "\033[0m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderLeakTable renders the ranked leak-candidate table.
// Expects candidates pre-ranked by the analyzer; does not re-sort.
func RenderLeakTable(candidates []analyzer.LeakCandidate) string {
	if len(candidates) == 0 {
		return "No leak candidates found.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-5s %10s %12s %11s %11s %8s  %s\n",
		"Tag", "Paged(MB)", "Nonpaged(MB)", "Growth(MB)", "Est/Day(MB)", "Samples", "Owner"))
	sb.WriteString(strings.Repeat("─", 92))
	sb.WriteString("\n")

	for _, c := range candidates {
		owner := owners.Lookup(c.Tag)
		if owner == "" {
			owner = "—"
		}

		daily := fmt.Sprintf("%11.1f", mb(uint64(c.DailyGrowth)))
		// Anything projected past 100 MB/day deserves attention.
		if c.DailyGrowth >= 100<<20 {
			daily = colorize(colorRed, daily)
		} else if c.DailyGrowth >= 10<<20 {
			daily = colorize(colorYellow, daily)
		}

		sb.WriteString(fmt.Sprintf("%-5s %10.1f %12.1f %11.1f %s %8d  %s\n",
			c.Tag.Display(),
			mb(c.LastPaged),
			mb(c.LastNonpaged),
			mb(c.NetGrowth),
			daily,
			c.Samples,
			owner))
	}

	return sb.String()
}

// RenderLeakSummary renders the one-line footer under the leak table.
func RenderLeakSummary(report *analyzer.Report, elapsed time.Duration) string {
	var total uint64
	for _, c := range report.Candidates {
		total += c.NetGrowth
	}
	return fmt.Sprintf("%d candidates (%s net growth) from %d analyzed tags over %s · %d series too short\n",
		len(report.Candidates),
		humanize.IBytes(total),
		report.TagsAnalyzed,
		elapsed.Round(time.Second),
		report.TooShort)
}

// RenderResolvedList renders tags that stopped appearing before the
// session ended; their usage resolved on its own.
func RenderResolvedList(resolved []pooltag.Tag) string {
	if len(resolved) == 0 {
		return ""
	}

	displays := make([]string, len(resolved))
	for i, tag := range resolved {
		displays[i] = tag.Display()
	}
	return colorize(colorGray, fmt.Sprintf("Resolved mid-run (freed before session end): %s\n",
		strings.Join(displays, ", ")))
}

// SampleRow is one tag's counters for the one-shot dump table.
type SampleRow struct {
	Tag      pooltag.Tag
	Counters pooltag.Counters
}

// RenderSampleTable renders the top tags of a single sample by total
// usage. topN caps the row count; 0 means all.
func RenderSampleTable(tags map[pooltag.Tag]pooltag.Counters, topN int) string {
	if len(tags) == 0 {
		return "No pool tags reported.\n"
	}

	rows := make([]SampleRow, 0, len(tags))
	var totalPaged, totalNonpaged uint64
	for tag, c := range tags {
		rows = append(rows, SampleRow{Tag: tag, Counters: c})
		totalPaged += c.PagedBytes
		totalNonpaged += c.NonpagedBytes
	}

	sort.Slice(rows, func(i, j int) bool {
		ti, tj := rows[i].Counters.TotalBytes(), rows[j].Counters.TotalBytes()
		if ti != tj {
			return ti > tj
		}
		return rows[i].Tag.Compare(rows[j].Tag) < 0
	})

	shown := rows
	if topN > 0 && topN < len(rows) {
		shown = rows[:topN]
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-5s %10s %12s %11s %12s  %s\n",
		"Tag", "Paged(MB)", "Nonpaged(MB)", "Paged-Out", "Nonpaged-Out", "Owner"))
	sb.WriteString(strings.Repeat("─", 80))
	sb.WriteString("\n")

	for _, row := range shown {
		owner := owners.Lookup(row.Tag)
		if owner == "" {
			owner = "—"
		}
		sb.WriteString(fmt.Sprintf("%-5s %10.1f %12.1f %11d %12d  %s\n",
			row.Tag.Display(),
			mb(row.Counters.PagedBytes),
			mb(row.Counters.NonpagedBytes),
			row.Counters.PagedOutstanding,
			row.Counters.NonpagedOutstanding,
			owner))
	}

	sb.WriteString(fmt.Sprintf("\n%d tags · paged %s · nonpaged %s\n",
		len(rows),
		humanize.IBytes(totalPaged),
		humanize.IBytes(totalNonpaged)))

	return sb.String()
}

// RenderSessionTable renders stored sessions, newest first.
// Expects sessions pre-sorted by the store; does not re-sort.
func RenderSessionTable(sessions []*store.Session) string {
	if len(sessions) == 0 {
		return "No recorded sessions.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-5s %-22s %9s %9s %10s  %s\n",
		"ID", "Started", "Interval", "Samples", "Threshold", "Note"))
	sb.WriteString(strings.Repeat("─", 80))
	sb.WriteString("\n")

	for _, sess := range sessions {
		samples := fmt.Sprintf("%d/%d", sess.CompletedSamples, sess.PlannedSamples)
		if sess.EndedAt == nil {
			samples += "*" // never finished
		}
		sb.WriteString(fmt.Sprintf("%-5d %-22s %8ds %9s %10s  %s\n",
			sess.ID,
			sess.StartedAt.Local().Format("2006-01-02 15:04:05"),
			sess.IntervalSeconds,
			samples,
			humanize.IBytes(sess.ThresholdBytes),
			truncate(sess.Note, 24)))
	}

	return sb.String()
}

// mb converts bytes to megabytes for fixed-point table columns.
func mb(bytes uint64) float64 {
	return float64(bytes) / (1 << 20)
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
