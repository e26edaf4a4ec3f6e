package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var queryCount bool

var queryCmd = &cobra.Command{
	Use:   "query <file> <tag>",
	Short: "List the elements of one tag in a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunQuery(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], args[1], queryCount)
	},
}

func init() {
	queryCmd.Flags().BoolVar(&queryCount, "count", false, "Print only the number of matches")
	rootCmd.AddCommand(queryCmd)
}

func RunQuery(w, stderr io.Writer, path, tag string, count bool) error {
	s, err := newSession(stderr)
	if err != nil {
		return err
	}
	res, err := s.parseFile(path, false)
	if err != nil {
		return err
	}

	if count {
		fmt.Fprintln(w, res.Root.CountMatching("tag", tag))
		return nil
	}
	for _, n := range res.Root.FindMatching("tag", tag) {
		fmt.Fprintln(w, n.Describe())
	}
	return nil
}
