package cmd

import (
	"github.com/spf13/cobra"

	"github.com/healthsignals/mindgauge/pkg/log"
	"github.com/healthsignals/mindgauge/train"
)

var trainCfg train.Config

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Run the full training pipeline against a CSV extract.",
	Long: `Train loads the survey extract, derives the composite features, splits the
rows, searches hyperparameters against validation log-loss, fits the final
ensemble, and publishes the model plus the held-out test set.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		result, err := train.Run(trainCfg)
		if err != nil {
			return err
		}
		log.GetLogger().Info("artifacts published",
			log.ArtifactKey, result.ModelURI,
			"test_features", result.TestFeaturesURI,
			"test_labels", result.TestLabelsURI)
		return nil
	},
}

func init() {
	trainCmd.Flags().StringVar(&trainCfg.DataPath, "data", "", "CSV extract, local path or s3:// URI")
	trainCmd.Flags().StringVar(&trainCfg.OutputLocation, "out", "", "artifact destination, local dir or s3:// prefix")
	trainCmd.Flags().StringVar(&trainCfg.PlotPath, "plot", "", "optional PNG path for the tuning convergence curve")
	trainCmd.Flags().Float64Var(&trainCfg.TrainFrac, "train-frac", 0.70, "training fraction of the stratified split")
	trainCmd.Flags().Float64Var(&trainCfg.ValFrac, "val-frac", 0.15, "validation fraction of the stratified split")
	trainCmd.Flags().IntVar(&trainCfg.InitPoints, "init-points", 0, "random tuning evaluations (0 = default budget)")
	trainCmd.Flags().IntVar(&trainCfg.NumIter, "iterations", 0, "guided tuning evaluations (0 = default budget)")
	trainCmd.Flags().Int64Var(&trainCfg.Seed, "seed", 42, "seed for the split, subsampling and tuning")
	_ = trainCmd.MarkFlagRequired("data")
	_ = trainCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(trainCmd)
}
