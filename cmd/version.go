package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set by the release tooling at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information.",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Printf("mindgauge %s (commit %s, built %s)\n", version, commit, date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
