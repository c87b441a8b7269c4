// Command mindgauge is the entry point for the training pipeline and the
// inference server.
package main

import (
	"os"

	"github.com/healthsignals/mindgauge/cmd"
	"github.com/healthsignals/mindgauge/pkg/log"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.GetLogger().Error("command failed", log.ErrAttr(err))
		os.Exit(1)
	}
}
