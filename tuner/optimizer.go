package tuner

import (
	"math"
	"math/rand"
	"time"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/healthsignals/mindgauge/boost"
	"github.com/healthsignals/mindgauge/pkg/errors"
	"github.com/healthsignals/mindgauge/pkg/log"
)

// Objective evaluates one candidate configuration and returns the value to
// maximize (the tuner feeds it negative validation log-loss). Any error
// aborts the whole search: a candidate that cannot be trained signals
// overall tuning failure, never a partial result.
type Objective func(params boost.Params) (float64, error)

// Observation is one evaluated candidate.
type Observation struct {
	Point []float64
	Value float64
}

// Result carries the single best configuration found across all
// evaluations.
type Result struct {
	Params  boost.Params
	Value   float64
	History []Observation
}

// Optimizer runs sequential Bayesian optimization over a bounded space.
// Zero-value fields default to the production budget: 5 random exploratory
// evaluations followed by 25 surrogate-guided ones.
type Optimizer struct {
	Space         []Dimension
	InitPoints    int
	NumIter       int
	NumCandidates int
	NumClass      int
	Seed          int64
}

const (
	defaultInitPoints    = 5
	defaultNumIter       = 25
	defaultNumCandidates = 256

	// eiXi is the exploration margin of the expected-improvement
	// acquisition.
	eiXi = 0.01
)

// Maximize runs the search and returns the best configuration observed.
func (o *Optimizer) Maximize(objective Objective) (*Result, error) {
	space := o.Space
	if space == nil {
		space = DefaultSpace()
	}
	initPoints := o.InitPoints
	if initPoints == 0 {
		initPoints = defaultInitPoints
	}
	numIter := o.NumIter
	if numIter == 0 {
		numIter = defaultNumIter
	}
	numCandidates := o.NumCandidates
	if numCandidates == 0 {
		numCandidates = defaultNumCandidates
	}

	rng := rand.New(rand.NewSource(o.Seed))
	logger := log.GetLoggerWithName("tuner")
	start := time.Now()

	var history []Observation
	evaluate := func(point []float64) error {
		params, err := realize(space, point, o.NumClass, o.Seed)
		if err != nil {
			return err
		}
		value, err := objective(params)
		if err != nil {
			return errors.NewTrainingError("tuning", err)
		}
		history = append(history, Observation{Point: point, Value: value})
		logger.Debug("candidate evaluated",
			log.IterationKey, len(history),
			"value", value)
		return nil
	}

	for i := 0; i < initPoints; i++ {
		if err := evaluate(o.randomPoint(space, rng)); err != nil {
			return nil, err
		}
	}

	for i := 0; i < numIter; i++ {
		point, err := o.propose(space, history, numCandidates, rng)
		if err != nil {
			return nil, errors.NewTrainingError("tuning", err)
		}
		if err := evaluate(point); err != nil {
			return nil, err
		}
	}

	best := history[0]
	for _, obs := range history[1:] {
		if obs.Value > best.Value {
			best = obs
		}
	}
	bestParams, err := realize(space, best.Point, o.NumClass, o.Seed)
	if err != nil {
		return nil, errors.NewTrainingError("tuning", err)
	}

	logger.Info("hyperparameter search finished",
		"evaluations", len(history),
		"best_value", best.Value,
		log.DurationKey, humanize.RelTime(start, time.Now(), "", ""))

	return &Result{Params: bestParams, Value: best.Value, History: history}, nil
}

// randomPoint draws a uniform point inside the bounds.
func (o *Optimizer) randomPoint(space []Dimension, rng *rand.Rand) []float64 {
	point := make([]float64, len(space))
	for i, dim := range space {
		point[i] = dim.Min + rng.Float64()*(dim.Max-dim.Min)
	}
	return point
}

// propose fits the surrogate on everything observed so far and picks the
// candidate with the highest expected improvement from a random pool.
func (o *Optimizer) propose(space []Dimension, history []Observation, numCandidates int, rng *rand.Rand) ([]float64, error) {
	points := make([][]float64, len(history))
	values := make([]float64, len(history))
	bestValue := math.Inf(-1)
	for i, obs := range history {
		points[i] = toUnit(space, obs.Point)
		values[i] = obs.Value
		if obs.Value > bestValue {
			bestValue = obs.Value
		}
	}

	gp, err := fitGP(points, values)
	if err != nil {
		return nil, err
	}

	normal := distuv.Normal{Mu: 0, Sigma: 1}
	var best []float64
	bestEI := math.Inf(-1)
	for c := 0; c < numCandidates; c++ {
		candidate := o.randomPoint(space, rng)
		mean, std := gp.predict(toUnit(space, candidate))

		var ei float64
		if std > 0 {
			z := (mean - bestValue - eiXi) / std
			ei = (mean-bestValue-eiXi)*normal.CDF(z) + std*normal.Prob(z)
		}
		if ei > bestEI {
			bestEI = ei
			best = candidate
		}
	}

	clampToBounds(space, best)
	return best, nil
}
