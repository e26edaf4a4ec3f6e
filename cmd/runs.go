package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chriserin/strparse/internal/db"
	"github.com/chriserin/strparse/internal/ui"
)

var (
	runsFailed bool
	runsLimit  int
)

var runsCmd = &cobra.Command{
	Use:   "runs [file]",
	Short: "List recorded parse runs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := ""
		if len(args) == 1 {
			file = args[0]
		}
		return RunRuns(cmd.OutOrStdout(), cmd.ErrOrStderr(), file, runsFailed, runsLimit)
	},
}

func init() {
	runsCmd.Flags().BoolVar(&runsFailed, "failed", false, "Only show failed runs")
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	rootCmd.AddCommand(runsCmd)
}

func RunRuns(w, stderr io.Writer, file string, failed bool, limit int) error {
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

	runs, err := db.ListRuns(sqlDB, db.RunFilter{FilePath: file, FailedOnly: failed, Limit: limit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "no runs recorded")
		return nil
	}
	for _, r := range runs {
		ui.RunLine(w, r)
	}
	return nil
}
