package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pooltrack/pooltrack/internal/output"
	"github.com/pooltrack/pooltrack/internal/store"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recorded sampling sessions",
	Long: `List every sampling session in the database, newest first.

A starred sample count (e.g. 12/20*) marks a session that never
finished (cancelled, crashed, or still running).`,
	RunE: runSessions,
}

func init() {
	RootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	path, err := getDBPath()
	if err != nil {
		return err
	}
	st, err := store.New(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	sessions, err := st.ListSessions()
	if err != nil {
		return err
	}

	fmt.Print(output.RenderSessionTable(sessions))
	return nil
}
