package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/chriserin/strparse/internal/config"
)

var (
	configFlag   string
	strictFlag   bool
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:          "strparse",
	Short:        "strparse — lenient tag markup parser",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", config.DefaultPath, "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVar(&strictFlag, "strict", false, "Fail on unmatched or rejected markup")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Override the configured log level")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
