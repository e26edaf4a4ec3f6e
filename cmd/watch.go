package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/chriserin/strparse/internal/ui"
	"github.com/chriserin/strparse/internal/watch"
)

var watchRender bool

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Reparse a file every time it changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return RunWatch(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], watchRender)
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchRender, "render", false, "Print HTML instead of the node tree")
	rootCmd.AddCommand(watchCmd)
}

// RunWatch parses path once and again after every write until ctx is done.
// Parse errors are reported without stopping the watch.
func RunWatch(ctx context.Context, w, stderr io.Writer, path string, render bool) error {
	s, err := newSession(stderr)
	if err != nil {
		return err
	}

	return watch.New(path, watch.DefaultDebounce, s.logger).Run(ctx, func() error {
		res, err := s.parseFile(path, render)
		if err != nil {
			fmt.Fprintf(w, "%v\n", err)
			return nil
		}
		if render {
			fmt.Fprintln(w, res.Output)
		} else {
			ui.Tree(w, res.Root)
		}
		ui.StatsLine(w, res.Stats)
		return nil
	})
}
