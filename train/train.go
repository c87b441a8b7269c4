// Package train orchestrates the full training step: load and augment the
// survey extract, split it, search hyperparameters against validation
// log-loss, fit the final ensemble, and publish the model plus the held-out
// test set as artifacts for the evaluation step.
package train

import (
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/mat"

	"github.com/healthsignals/mindgauge/boost"
	"github.com/healthsignals/mindgauge/dataset"
	"github.com/healthsignals/mindgauge/metrics"
	"github.com/healthsignals/mindgauge/pkg/errors"
	"github.com/healthsignals/mindgauge/pkg/log"
	"github.com/healthsignals/mindgauge/schema"
	"github.com/healthsignals/mindgauge/store"
	"github.com/healthsignals/mindgauge/tuner"
)

// Config describes one training run.
type Config struct {
	// DataPath is the CSV extract, a local path or s3:// URI.
	DataPath string

	// OutputLocation receives the three artifacts, a local directory or
	// s3:// prefix.
	OutputLocation string

	// PlotPath, when set, receives a PNG of the tuning convergence curve.
	PlotPath string

	// TrainFrac and ValFrac control the stratified split; the remainder is
	// held out for evaluation. Zero values take the 0.70/0.15 defaults.
	TrainFrac float64
	ValFrac   float64

	// InitPoints and NumIter override the tuning budget; zero values take
	// the production budget.
	InitPoints int
	NumIter    int

	Seed int64
}

// Result is the success payload of a run. A failed run produces no result at
// all: there is no partially trained model to hand downstream.
type Result struct {
	Params      boost.Params
	TuningValue float64

	TrainRows int
	ValRows   int
	TestRows  int

	ModelURI        string
	TestFeaturesURI string
	TestLabelsURI   string
}

// Run executes the training pipeline end to end.
func Run(cfg Config) (*Result, error) {
	logger := log.GetLoggerWithName("train")
	start := time.Now()

	if cfg.TrainFrac == 0 {
		cfg.TrainFrac = 0.70
	}
	if cfg.ValFrac == 0 {
		cfg.ValFrac = 0.15
	}

	split, err := loadAndSplit(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("dataset partitioned",
		log.SamplesKey, split.Train.NumRows()+split.Val.NumRows()+split.Test.NumRows(),
		"train_rows", split.Train.NumRows(),
		"val_rows", split.Val.NumRows(),
		"test_rows", split.Test.NumRows())

	trainX := split.Train.Matrix()
	trainY, err := split.Train.DenseLabels()
	if err != nil {
		return nil, errors.NewTrainingError("split", err)
	}
	valX := split.Val.Matrix()
	valY, err := split.Val.DenseLabels()
	if err != nil {
		return nil, errors.NewTrainingError("split", err)
	}
	weights, err := dataset.SampleWeights(trainY, schema.NumClasses)
	if err != nil {
		return nil, errors.NewTrainingError("split", err)
	}

	tuned, err := tune(cfg, trainX, trainY, weights, valX, valY)
	if err != nil {
		return nil, err
	}

	logger.Info("fitting final ensemble",
		log.OperationKey, "fit",
		"params", tuned.Params)
	model, err := boost.Train(trainX, trainY, weights, tuned.Params)
	if err != nil {
		return nil, errors.NewTrainingError("fit", err)
	}

	result := &Result{
		Params:      tuned.Params,
		TuningValue: tuned.Value,
		TrainRows:   split.Train.NumRows(),
		ValRows:     split.Val.NumRows(),
		TestRows:    split.Test.NumRows(),
	}
	if err := writeArtifacts(cfg, model, split.Test, result); err != nil {
		return nil, err
	}

	if cfg.PlotPath != "" {
		if err := tuner.SaveConvergencePlot(tuned.History, cfg.PlotPath); err != nil {
			// The plot is diagnostic only; its failure must not fail a
			// run that already published a model.
			logger.Warn("convergence plot not written", log.ErrAttr(err))
		}
	}

	logger.Info("training run finished",
		log.ArtifactKey, result.ModelURI,
		"tuning_value", result.TuningValue,
		log.DurationKey, humanize.RelTime(start, time.Now(), "", ""))
	return result, nil
}

// loadAndSplit reads the CSV extract, appends the composite columns and
// partitions the rows.
func loadAndSplit(cfg Config) (*dataset.Split, error) {
	r, err := store.Open(cfg.DataPath)
	if err != nil {
		return nil, errors.NewTrainingError("load", err)
	}
	defer r.Close()

	table, err := dataset.Load(r)
	if err != nil {
		return nil, errors.NewTrainingError("load", err)
	}
	if err := table.Augment(); err != nil {
		return nil, errors.NewTrainingError("load", err)
	}

	split, err := dataset.StratifiedSplit(table, cfg.TrainFrac, cfg.ValFrac, cfg.Seed)
	if err != nil {
		return nil, errors.NewTrainingError("split", err)
	}
	return split, nil
}

// tune searches the hyperparameter space, scoring each candidate by
// validation log-loss on an ensemble fit to the training partition.
func tune(cfg Config, trainX mat.Matrix, trainY []int, weights []float64, valX mat.Matrix, valY []int) (*tuner.Result, error) {
	objective := func(params boost.Params) (float64, error) {
		model, err := boost.Train(trainX, trainY, weights, params)
		if err != nil {
			return 0, err
		}
		proba, err := model.PredictProba(valX)
		if err != nil {
			return 0, err
		}
		loss, err := metrics.LogLoss(valY, proba)
		if err != nil {
			return 0, err
		}
		return -loss, nil
	}

	opt := &tuner.Optimizer{
		NumClass:   schema.NumClasses,
		Seed:       cfg.Seed,
		InitPoints: cfg.InitPoints,
		NumIter:    cfg.NumIter,
	}
	return opt.Maximize(objective)
}

// writeArtifacts publishes the model and the held-out test partition.
func writeArtifacts(cfg Config, model *boost.Model, test *dataset.Table, result *Result) error {
	testY, err := test.DenseLabels()
	if err != nil {
		return errors.NewTrainingError("artifacts", err)
	}

	write := func(name string, encode func(io.Writer) error) (string, error) {
		uri := store.Join(cfg.OutputLocation, name)
		w, err := store.Create(uri)
		if err != nil {
			return "", err
		}
		if err := encode(w); err != nil {
			// A failed encode must not publish; Close would commit the
			// partial artifact at its final name.
			w.Abort()
			return "", err
		}
		return uri, w.Close()
	}

	result.ModelURI, err = write(ModelArtifactName, model.Save)
	if err != nil {
		return errors.NewTrainingError("artifacts", err)
	}
	result.TestFeaturesURI, err = write(TestFeaturesArtifactName, func(w io.Writer) error {
		return SaveTestFeatures(w, test.Matrix())
	})
	if err != nil {
		return errors.NewTrainingError("artifacts", err)
	}
	result.TestLabelsURI, err = write(TestLabelsArtifactName, func(w io.Writer) error {
		return SaveTestLabels(w, testY)
	})
	if err != nil {
		return errors.NewTrainingError("artifacts", err)
	}
	return nil
}
