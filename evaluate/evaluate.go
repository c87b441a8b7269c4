// Package evaluate scores a trained ensemble against the held-out test
// partition published by the training step and reports the classification
// metrics used to gate deployment.
package evaluate

import (
	"encoding/json"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/mat"

	"github.com/healthsignals/mindgauge/boost"
	"github.com/healthsignals/mindgauge/metrics"
	"github.com/healthsignals/mindgauge/pkg/errors"
	"github.com/healthsignals/mindgauge/pkg/log"
	"github.com/healthsignals/mindgauge/schema"
	"github.com/healthsignals/mindgauge/store"
	"github.com/healthsignals/mindgauge/train"
)

// Report carries the test-set metrics of one evaluation.
type Report struct {
	LogLoss   float64 `json:"log_loss"`
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision_weighted"`
	Recall    float64 `json:"recall_weighted"`
	F1        float64 `json:"f1_weighted"`

	TestRows int `json:"test_rows"`
}

// Run loads the three training artifacts from a location and scores the
// model. A deserialization failure of any artifact is propagated; there is no
// fallback score.
func Run(location string) (*Report, error) {
	logger := log.GetLoggerWithName("evaluate")
	start := time.Now()

	model, err := loadModel(store.Join(location, train.ModelArtifactName))
	if err != nil {
		return nil, err
	}

	fr, err := store.Open(store.Join(location, train.TestFeaturesArtifactName))
	if err != nil {
		return nil, errors.NewEvaluationError("test features", err)
	}
	X, err := train.LoadTestFeatures(fr)
	fr.Close()
	if err != nil {
		return nil, errors.NewEvaluationError("test features", err)
	}

	lr, err := store.Open(store.Join(location, train.TestLabelsArtifactName))
	if err != nil {
		return nil, errors.NewEvaluationError("test labels", err)
	}
	yTrue, err := train.LoadTestLabels(lr)
	lr.Close()
	if err != nil {
		return nil, errors.NewEvaluationError("test labels", err)
	}

	report, err := Score(model, X, yTrue)
	if err != nil {
		return nil, err
	}

	logger.Info("evaluation finished",
		log.LossKey, report.LogLoss,
		log.AccuracyKey, report.Accuracy,
		"f1_weighted", report.F1,
		log.SamplesKey, report.TestRows,
		log.DurationKey, humanize.RelTime(start, time.Now(), "", ""))
	return report, nil
}

// Score computes the report for an already materialized model and test set.
func Score(model *boost.Model, X mat.Matrix, yTrue []int) (*Report, error) {
	proba, err := model.PredictProba(X)
	if err != nil {
		return nil, errors.NewEvaluationError("model", err)
	}

	loss, err := metrics.LogLoss(yTrue, proba)
	if err != nil {
		return nil, errors.NewEvaluationError("test labels", err)
	}
	yPred := metrics.ArgMaxRows(proba)
	acc, err := metrics.Accuracy(yTrue, yPred)
	if err != nil {
		return nil, errors.NewEvaluationError("test labels", err)
	}
	precision, recall, f1, err := metrics.PrecisionRecallF1Weighted(yTrue, yPred, schema.NumClasses)
	if err != nil {
		return nil, errors.NewEvaluationError("test labels", err)
	}

	return &Report{
		LogLoss:   loss,
		Accuracy:  acc,
		Precision: precision,
		Recall:    recall,
		F1:        f1,
		TestRows:  len(yTrue),
	}, nil
}

// WriteJSON renders the report for pipeline consumption.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func loadModel(uri string) (*boost.Model, error) {
	r, err := store.Open(uri)
	if err != nil {
		return nil, errors.NewEvaluationError("model", err)
	}
	defer r.Close()
	model, err := boost.LoadModel(r)
	if err != nil {
		return nil, errors.NewEvaluationError("model", err)
	}
	return model, nil
}
