package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render a file as HTML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunRender(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

func RunRender(w, stderr io.Writer, path string) error {
	s, err := newSession(stderr)
	if err != nil {
		return err
	}
	res, err := s.parseFile(path, true)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, res.Output)
	return nil
}
