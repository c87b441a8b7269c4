package cmd

import (
	"github.com/spf13/cobra"

	"github.com/healthsignals/mindgauge/config"
	"github.com/healthsignals/mindgauge/serve"
	"github.com/healthsignals/mindgauge/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the inference HTTP server.",
	Long: `Serve answers POST predict requests with class probabilities and GET health
checks. The model is loaded lazily from the configured storage URI on the
first prediction.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadServe()
		if err != nil {
			return err
		}
		accessor := store.NewAccessor(cfg.StorageURI)
		return serve.NewServer(cfg, accessor).ListenAndServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
