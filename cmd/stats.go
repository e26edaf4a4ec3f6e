package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/chriserin/strparse/internal/db"
	"github.com/chriserin/strparse/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize recorded parse runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunStats(cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func RunStats(w, stderr io.Writer) error {
	if err := requireInit(); err != nil {
		return err
	}
	s, err := newSession(stderr)
	if err != nil {
		return err
	}
	sqlDB, err := s.openDB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	summary, err := db.Summarize(sqlDB)
	if err != nil {
		return err
	}
	ui.SummaryLine(w, summary)
	return nil
}
