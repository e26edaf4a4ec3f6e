package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/chriserin/strparse/internal/ui"
)

var parsePlain bool

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a file and print its node tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunParse(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], parsePlain)
	},
}

func init() {
	parseCmd.Flags().BoolVar(&parsePlain, "plain", false, "Print the tree without styling")
	rootCmd.AddCommand(parseCmd)
}

func RunParse(w, stderr io.Writer, path string, plain bool) error {
	s, err := newSession(stderr)
	if err != nil {
		return err
	}
	res, err := s.parseFile(path, false)
	if err != nil {
		return err
	}

	if plain {
		io.WriteString(w, res.Root.Dump("  ", "\n", 0))
	} else {
		ui.Tree(w, res.Root)
	}
	ui.StatsLine(w, res.Stats)
	return nil
}
