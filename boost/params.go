package boost

import (
	"github.com/healthsignals/mindgauge/pkg/errors"
)

// Params are the training hyperparameters of one ensemble fit. All numeric
// fields are bounded by the tuner's search space; defaults below are only
// applied when a field is zero.
type Params struct {
	NumRounds       int     `json:"num_boost_round"`
	MaxDepth        int     `json:"max_depth"`
	LearningRate    float64 `json:"learning_rate"`
	Subsample       float64 `json:"subsample"`
	ColsampleByTree float64 `json:"colsample_bytree"`
	Gamma           float64 `json:"gamma"`
	RegAlpha        float64 `json:"reg_alpha"`
	RegLambda       float64 `json:"reg_lambda"`

	NumClass       int     `json:"num_class"`
	MinChildWeight float64 `json:"min_child_weight"`
	Seed           int64   `json:"seed"`
}

// withDefaults fills unset fields.
func (p Params) withDefaults() Params {
	if p.NumRounds == 0 {
		p.NumRounds = 100
	}
	if p.MaxDepth == 0 {
		p.MaxDepth = 6
	}
	if p.LearningRate == 0 {
		p.LearningRate = 0.1
	}
	if p.Subsample == 0 {
		p.Subsample = 1.0
	}
	if p.ColsampleByTree == 0 {
		p.ColsampleByTree = 1.0
	}
	if p.RegLambda == 0 {
		p.RegLambda = 1.0
	}
	if p.MinChildWeight == 0 {
		p.MinChildWeight = 1.0
	}
	return p
}

// validate rejects configurations the trainer cannot run with.
func (p Params) validate() error {
	switch {
	case p.NumClass < 2:
		return errors.NewValueError("Params", "NumClass must be at least 2")
	case p.NumRounds < 1:
		return errors.NewValueError("Params", "NumRounds must be positive")
	case p.MaxDepth < 1:
		return errors.NewValueError("Params", "MaxDepth must be positive")
	case p.LearningRate <= 0 || p.LearningRate > 1:
		return errors.NewValueError("Params", "LearningRate must be in (0, 1]")
	case p.Subsample <= 0 || p.Subsample > 1:
		return errors.NewValueError("Params", "Subsample must be in (0, 1]")
	case p.ColsampleByTree <= 0 || p.ColsampleByTree > 1:
		return errors.NewValueError("Params", "ColsampleByTree must be in (0, 1]")
	case p.Gamma < 0 || p.RegAlpha < 0 || p.RegLambda < 0:
		return errors.NewValueError("Params", "regularization terms must be non-negative")
	}
	return nil
}
