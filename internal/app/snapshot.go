package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pooltrack/pooltrack/internal/output"
	"github.com/pooltrack/pooltrack/internal/pooltag"
)

var (
	snapshotTop int

	snapshotCmd = &cobra.Command{
		Use:   "snapshot",
		Short: "Dump the current pool-tag table",
		Long: `Take a single sample of the pool-tag table and print the biggest
tags by total usage. Nothing is stored; this is a quick look at where
pool memory sits right now.

Size alone says nothing about leaking; use 'pooltrack track' to find
out which of these tags are growing.`,
		Example: `  # Top 20 tags
  pooltrack snapshot

  # Everything
  pooltrack snapshot --top 0`,
		RunE: runSnapshot,
	}
)

func init() {
	snapshotCmd.Flags().IntVar(&snapshotTop, "top", 20, "number of tags to show (0 = all)")

	RootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	if snapshotTop < 0 {
		return fmt.Errorf("invalid top: %d (must be >= 0)", snapshotTop)
	}

	tags, err := pooltag.Sample()
	if err != nil {
		return err
	}

	fmt.Print(output.RenderSampleTable(tags, snapshotTop))
	return nil
}
