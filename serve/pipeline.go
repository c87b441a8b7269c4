// Package serve exposes the trained classifier over HTTP: a predict endpoint
// implementing the batch inference contract and a health endpoint, with the
// model loaded lazily on first request through the store accessor.
package serve

import (
	"encoding/json"

	"gonum.org/v1/gonum/mat"

	"github.com/healthsignals/mindgauge/boost"
	"github.com/healthsignals/mindgauge/pkg/errors"
	"github.com/healthsignals/mindgauge/schema"
)

// parseInstances decodes a request body into raw feature rows in schema
// order. The payload carries either a single instance under "features" or a
// batch under "instances"; each instance is a positional array of
// schema.NumFeatures values or a name-to-value mapping. One bad instance
// rejects the whole batch.
func parseInstances(body []byte) ([][]float64, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.NewClientInputError("parse", "request body is not a JSON object")
	}

	if raw, ok := payload["features"]; ok {
		row, err := decodeInstance(raw)
		if err != nil {
			return nil, err
		}
		return [][]float64{row}, nil
	}

	raw, ok := payload["instances"]
	if !ok {
		return nil, errors.NewClientInputError("shape", `payload must carry "features" or "instances"`)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.NewClientInputError("shape", `"instances" must be an array`)
	}
	if len(items) == 0 {
		return nil, errors.NewClientInputError("shape", `"instances" is empty`)
	}

	rows := make([][]float64, len(items))
	for i, item := range items {
		row, err := decodeInstance(item)
		if err != nil {
			return nil, errors.Wrapf(err, "instance %d", i)
		}
		rows[i] = row
	}
	return rows, nil
}

// decodeInstance accepts one instance in either positional or mapping form
// and returns it in schema order.
func decodeInstance(raw json.RawMessage) ([]float64, error) {
	var positional []float64
	if err := json.Unmarshal(raw, &positional); err == nil {
		if len(positional) != schema.NumFeatures {
			return nil, errors.NewClientInputErrorf("arity", "expected %d features, got %d", schema.NumFeatures, len(positional))
		}
		return positional, nil
	}

	var named map[string]float64
	if err := json.Unmarshal(raw, &named); err == nil {
		row, err := schema.Canonicalize(named)
		if err != nil {
			return nil, err
		}
		return row, nil
	}

	return nil, errors.NewClientInputError("shape", "instance must be an array of numbers or a name-to-value object")
}

// predict augments the raw rows with the composite columns and scores them,
// preserving request order.
func predict(model *boost.Model, rows [][]float64) ([][]float64, error) {
	X := mat.NewDense(len(rows), schema.TotalColumns, nil)
	for i, row := range rows {
		full, err := schema.WithComposites(row)
		if err != nil {
			return nil, err
		}
		X.SetRow(i, full)
	}

	proba, err := model.PredictProba(X)
	if err != nil {
		return nil, err
	}

	out := make([][]float64, len(rows))
	for i := range out {
		out[i] = mat.Row(nil, i, proba)
	}
	return out, nil
}
