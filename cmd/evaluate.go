package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/healthsignals/mindgauge/evaluate"
)

var evaluateLocation string

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a trained model against its held-out test artifacts.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		report, err := evaluate.Run(evaluateLocation)
		if err != nil {
			return err
		}
		return report.WriteJSON(os.Stdout)
	},
}

func init() {
	evaluateCmd.Flags().StringVar(&evaluateLocation, "artifacts", "", "location holding the three training artifacts, local dir or s3:// prefix")
	_ = evaluateCmd.MarkFlagRequired("artifacts")

	rootCmd.AddCommand(evaluateCmd)
}
