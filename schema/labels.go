package schema

import (
	"github.com/healthsignals/mindgauge/pkg/errors"
)

// NumClasses is the number of target classes the model predicts.
const NumClasses = 4

// The survey codes the outcome sparsely: 1 (0 days), 2 (1-13 days),
// 3 (14+ days), 9 (unsure). The booster needs labels in [0, NumClasses).
var (
	denseByCode = map[int]int{1: 0, 2: 1, 3: 2, 9: 3}
	codeByDense = [NumClasses]int{1, 2, 3, 9}
)

// DenseLabel remaps one sparse survey code to its dense class index.
func DenseLabel(code int) (int, error) {
	dense, ok := denseByCode[code]
	if !ok {
		return 0, errors.NewValueError("DenseLabel", "unknown target code")
	}
	return dense, nil
}

// SparseLabel is the inverse of DenseLabel.
func SparseLabel(dense int) (int, error) {
	if dense < 0 || dense >= NumClasses {
		return 0, errors.NewValueError("SparseLabel", "class index out of range")
	}
	return codeByDense[dense], nil
}

// DenseLabels remaps a whole label column. The mapping is applied
// identically to train, validation, and test labels.
func DenseLabels(codes []int) ([]int, error) {
	dense := make([]int, len(codes))
	for i, code := range codes {
		d, err := DenseLabel(code)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
		dense[i] = d
	}
	return dense, nil
}
