package schema

import (
	"github.com/healthsignals/mindgauge/pkg/errors"
)

// CompositeNames lists the derived columns appended after the raw features,
// in model order. They are computed, never supplied by a caller.
var CompositeNames = []string{
	"physical_mental_interaction",
	"income_education_interaction",
	"mental_health_composite",
}

// NumComposites is the number of derived columns.
var NumComposites = len(CompositeNames)

// TotalColumns is the width of the model's feature vector.
var TotalColumns = NumFeatures + NumComposites

// mentalHealthInputs are averaged into the mental_health_composite column.
var mentalHealthInputs = []string{"emtsuprt", "addepev3", "poorhlth"}

// DeriveComposites computes the derived columns from raw features exposed by
// the lookup function. It is pure and deterministic, and it is the single
// implementation used at both training and inference time: the trained
// model's feature vector includes these columns at the exact same positions
// in both phases. A missing raw input is an error.
func DeriveComposites(lookup func(name string) (float64, bool)) ([]float64, error) {
	get := func(name string) (float64, error) {
		v, ok := lookup(name)
		if !ok {
			return 0, errors.NewValueError("DeriveComposites", "missing raw column "+name)
		}
		return v, nil
	}

	genhlth, err := get("genhlth")
	if err != nil {
		return nil, err
	}
	physhlth, err := get("physhlth")
	if err != nil {
		return nil, err
	}
	income3, err := get("income3")
	if err != nil {
		return nil, err
	}
	educa, err := get("educa")
	if err != nil {
		return nil, err
	}

	var mentalSum float64
	for _, name := range mentalHealthInputs {
		v, err := get(name)
		if err != nil {
			return nil, err
		}
		mentalSum += v
	}

	return []float64{
		genhlth * physhlth,
		income3 * educa,
		mentalSum / float64(len(mentalHealthInputs)),
	}, nil
}

// WithComposites appends the derived columns to a canonical raw row.
func WithComposites(raw []float64) ([]float64, error) {
	if len(raw) != NumFeatures {
		return nil, errors.NewDimensionError("WithComposites", NumFeatures, len(raw), 1)
	}
	composites, err := DeriveComposites(func(name string) (float64, bool) {
		i, ok := featureIndex[name]
		if !ok {
			return 0, false
		}
		return raw[i], true
	})
	if err != nil {
		return nil, err
	}
	row := make([]float64, 0, TotalColumns)
	row = append(row, raw...)
	row = append(row, composites...)
	return row, nil
}
