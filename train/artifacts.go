package train

import (
	"encoding/gob"
	"io"

	"gonum.org/v1/gonum/mat"

	"github.com/healthsignals/mindgauge/pkg/errors"
	"github.com/healthsignals/mindgauge/schema"
)

// Names of the three artifacts a successful training run writes next to each
// other. Evaluation consumes all three.
const (
	ModelArtifactName        = schema.Target + ".model.gob"
	TestFeaturesArtifactName = "test_features.gob"
	TestLabelsArtifactName   = "test_labels.gob"
)

// SaveTestFeatures gob-encodes the held-out feature matrix.
func SaveTestFeatures(w io.Writer, X *mat.Dense) error {
	if X == nil {
		return errors.NewValueError("SaveTestFeatures", "nil feature matrix")
	}
	return gob.NewEncoder(w).Encode(X)
}

// LoadTestFeatures decodes a feature matrix written by SaveTestFeatures.
func LoadTestFeatures(r io.Reader) (*mat.Dense, error) {
	var X mat.Dense
	if err := gob.NewDecoder(r).Decode(&X); err != nil {
		return nil, errors.Wrap(err, "decoding test features")
	}
	return &X, nil
}

// SaveTestLabels gob-encodes the held-out dense label vector.
func SaveTestLabels(w io.Writer, labels []int) error {
	if len(labels) == 0 {
		return errors.ErrEmptyData
	}
	return gob.NewEncoder(w).Encode(labels)
}

// LoadTestLabels decodes a label vector written by SaveTestLabels.
func LoadTestLabels(r io.Reader) ([]int, error) {
	var labels []int
	if err := gob.NewDecoder(r).Decode(&labels); err != nil {
		return nil, errors.Wrap(err, "decoding test labels")
	}
	return labels, nil
}
