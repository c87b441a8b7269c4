// Package cmd is the command-line surface of mindgauge: training,
// evaluation, and the inference server.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/healthsignals/mindgauge/pkg/log"
)

var logLevel string

// rootCmd is the entrypoint for all subcommands.
var rootCmd = &cobra.Command{
	Use:           "mindgauge",
	Short:         "Train, evaluate and serve the mental-health frequency classifier.",
	Long:          `Mindgauge trains a multi-class boosted-tree classifier over behavioral survey extracts and serves its predictions over HTTP.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetupLogger(logLevel)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
}

// Execute runs the root command and returns its error for the caller to
// translate into an exit code.
func Execute() error {
	return rootCmd.Execute()
}
