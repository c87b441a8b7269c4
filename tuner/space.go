// Package tuner implements sequential Bayesian hyperparameter optimization
// for the boosted-tree classifier: a Gaussian-process surrogate over the
// bounded 8-dimensional parameter space, expected-improvement proposals, and
// a fixed budget of random then guided evaluations against validation
// log-loss.
package tuner

import (
	"math"

	"github.com/healthsignals/mindgauge/boost"
	"github.com/healthsignals/mindgauge/pkg/errors"
)

// Dimension is one bounded axis of the search space. Integral dimensions are
// searched continuously and floored only when a point is realized into
// training parameters.
type Dimension struct {
	Name     string
	Min, Max float64
	Integral bool
}

// DefaultSpace returns the fixed parameter bounds the classifier is tuned
// over.
func DefaultSpace() []Dimension {
	return []Dimension{
		{Name: "num_boost_round", Min: 100, Max: 300, Integral: true},
		{Name: "max_depth", Min: 3, Max: 10, Integral: true},
		{Name: "learning_rate", Min: 0.01, Max: 0.1},
		{Name: "subsample", Min: 0.6, Max: 1.0},
		{Name: "colsample_bytree", Min: 0.6, Max: 1.0},
		{Name: "gamma", Min: 0, Max: 5},
		{Name: "reg_alpha", Min: 0, Max: 1},
		{Name: "reg_lambda", Min: 1, Max: 5},
	}
}

// realize converts a point in the space into training parameters. Integral
// dimensions are floored here, at the evaluation boundary; the surrogate
// keeps seeing the continuous coordinates.
func realize(space []Dimension, point []float64, numClass int, seed int64) (boost.Params, error) {
	if len(point) != len(space) {
		return boost.Params{}, errors.NewDimensionError("realize", len(space), len(point), 1)
	}
	p := boost.Params{NumClass: numClass, Seed: seed}
	for i, dim := range space {
		v := point[i]
		if dim.Integral {
			v = math.Floor(v)
		}
		switch dim.Name {
		case "num_boost_round":
			p.NumRounds = int(v)
		case "max_depth":
			p.MaxDepth = int(v)
		case "learning_rate":
			p.LearningRate = v
		case "subsample":
			p.Subsample = v
		case "colsample_bytree":
			p.ColsampleByTree = v
		case "gamma":
			p.Gamma = v
		case "reg_alpha":
			p.RegAlpha = v
		case "reg_lambda":
			p.RegLambda = v
		default:
			return boost.Params{}, errors.NewValueError("realize", "unknown dimension "+dim.Name)
		}
	}
	return p, nil
}

// clampToBounds snaps a point back inside the space after any numeric drift.
func clampToBounds(space []Dimension, point []float64) {
	for i, dim := range space {
		if point[i] < dim.Min {
			point[i] = dim.Min
		}
		if point[i] > dim.Max {
			point[i] = dim.Max
		}
	}
}

// toUnit scales a point into the unit cube for the surrogate.
func toUnit(space []Dimension, point []float64) []float64 {
	scaled := make([]float64, len(point))
	for i, dim := range space {
		span := dim.Max - dim.Min
		if span > 0 {
			scaled[i] = (point[i] - dim.Min) / span
		}
	}
	return scaled
}
