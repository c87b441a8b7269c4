// Package metrics implements the classification metrics reported by the
// evaluation step: multiclass log-loss, accuracy, and weighted-average
// precision, recall, and F1.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/healthsignals/mindgauge/pkg/errors"
)

// probEps clips predicted probabilities away from 0 and 1 before taking
// logs, matching the sklearn log_loss convention.
const probEps = 1e-15

// LogLoss computes the multiclass negative log-likelihood of the true labels
// under the predicted probability rows. Lower is better.
func LogLoss(yTrue []int, proba mat.Matrix) (float64, error) {
	rows, cols := proba.Dims()
	if rows == 0 {
		return 0, errors.NewValueError("LogLoss", "empty probability matrix")
	}
	if len(yTrue) != rows {
		return 0, errors.NewDimensionError("LogLoss", rows, len(yTrue), 0)
	}

	var sum float64
	for i, label := range yTrue {
		if label < 0 || label >= cols {
			return 0, errors.NewValueError("LogLoss", "label outside probability columns")
		}
		p := proba.At(i, label)
		if p < probEps {
			p = probEps
		} else if p > 1-probEps {
			p = 1 - probEps
		}
		sum -= math.Log(p)
	}
	return sum / float64(rows), nil
}

// Accuracy is the fraction of predictions equal to the true labels.
func Accuracy(yTrue, yPred []int) (float64, error) {
	if len(yTrue) == 0 {
		return 0, errors.NewValueError("Accuracy", "empty label slice")
	}
	if len(yPred) != len(yTrue) {
		return 0, errors.NewDimensionError("Accuracy", len(yTrue), len(yPred), 0)
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// PrecisionRecallF1Weighted computes per-class precision, recall, and F1 and
// averages them weighted by true-class support, the sklearn
// average="weighted" convention. Classes with zero predicted (or true)
// support score zero for the affected metric rather than erroring.
func PrecisionRecallF1Weighted(yTrue, yPred []int, numClasses int) (precision, recall, f1 float64, err error) {
	if len(yTrue) == 0 {
		return 0, 0, 0, errors.NewValueError("PrecisionRecallF1Weighted", "empty label slice")
	}
	if len(yPred) != len(yTrue) {
		return 0, 0, 0, errors.NewDimensionError("PrecisionRecallF1Weighted", len(yTrue), len(yPred), 0)
	}

	tp := make([]float64, numClasses)
	fp := make([]float64, numClasses)
	fn := make([]float64, numClasses)
	support := make([]float64, numClasses)

	for i := range yTrue {
		truth, pred := yTrue[i], yPred[i]
		if truth < 0 || truth >= numClasses || pred < 0 || pred >= numClasses {
			return 0, 0, 0, errors.NewValueError("PrecisionRecallF1Weighted", "label outside class range")
		}
		support[truth]++
		if truth == pred {
			tp[truth]++
		} else {
			fp[pred]++
			fn[truth]++
		}
	}

	total := float64(len(yTrue))
	for c := 0; c < numClasses; c++ {
		var p, r float64
		if tp[c]+fp[c] > 0 {
			p = tp[c] / (tp[c] + fp[c])
		}
		if tp[c]+fn[c] > 0 {
			r = tp[c] / (tp[c] + fn[c])
		}
		var f float64
		if p+r > 0 {
			f = 2 * p * r / (p + r)
		}
		w := support[c] / total
		precision += w * p
		recall += w * r
		f1 += w * f
	}
	return precision, recall, f1, nil
}

// ArgMaxRows converts probability rows into class predictions.
func ArgMaxRows(proba mat.Matrix) []int {
	rows, cols := proba.Dims()
	preds := make([]int, rows)
	for i := 0; i < rows; i++ {
		bestJ, bestV := 0, proba.At(i, 0)
		for j := 1; j < cols; j++ {
			if v := proba.At(i, j); v > bestV {
				bestJ, bestV = j, v
			}
		}
		preds[i] = bestJ
	}
	return preds
}
