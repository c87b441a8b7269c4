package dataset

import (
	"math/rand"
	"sort"

	"github.com/healthsignals/mindgauge/pkg/errors"
)

// Split holds the three partitions of a labeled table.
type Split struct {
	Train *Table
	Val   *Table
	Test  *Table
}

// StratifiedSplit partitions a labeled table into train/validation/test
// parts, preserving the per-class proportions in every part. Rows are
// shuffled within each class with the given seed, so the split is
// reproducible. trainFrac and valFrac must leave a positive test remainder.
func StratifiedSplit(t *Table, trainFrac, valFrac float64, seed int64) (*Split, error) {
	if t.Labels == nil {
		return nil, errors.NewValueError("StratifiedSplit", "table has no label column")
	}
	if trainFrac <= 0 || valFrac < 0 || trainFrac+valFrac >= 1 {
		return nil, errors.NewValueError("StratifiedSplit", "fractions must satisfy 0 < train, 0 <= val, train+val < 1")
	}

	rng := rand.New(rand.NewSource(seed))

	byClass := make(map[int][]int)
	for i, label := range t.Labels {
		byClass[label] = append(byClass[label], i)
	}

	part := func() *Table {
		return &Table{Columns: append([]string{}, t.Columns...)}
	}
	split := &Split{Train: part(), Val: part(), Test: part()}

	appendRows := func(dst *Table, indices []int) {
		for _, i := range indices {
			dst.Rows = append(dst.Rows, t.Rows[i])
			dst.Labels = append(dst.Labels, t.Labels[i])
		}
	}

	// Classes must be visited in a fixed order: the shuffles share one
	// seeded RNG, and map iteration order would reassign its subsequences
	// across runs.
	classes := make([]int, 0, len(byClass))
	for label := range byClass {
		classes = append(classes, label)
	}
	sort.Ints(classes)

	for _, label := range classes {
		indices := byClass[label]
		rng.Shuffle(len(indices), func(a, b int) {
			indices[a], indices[b] = indices[b], indices[a]
		})

		nTrain := int(float64(len(indices)) * trainFrac)
		nVal := int(float64(len(indices)) * valFrac)
		appendRows(split.Train, indices[:nTrain])
		appendRows(split.Val, indices[nTrain:nTrain+nVal])
		appendRows(split.Test, indices[nTrain+nVal:])
	}

	if split.Train.NumRows() == 0 || split.Test.NumRows() == 0 {
		return nil, errors.NewValueError("StratifiedSplit", "not enough rows to populate every partition")
	}
	return split, nil
}

// SampleWeights computes one non-negative weight per row from inverse class
// frequency (the sklearn "balanced" scheme: n / (k * n_c)), so rare classes
// contribute proportionally more to the training loss.
func SampleWeights(denseLabels []int, numClasses int) ([]float64, error) {
	if len(denseLabels) == 0 {
		return nil, errors.ErrEmptyData
	}
	counts := make([]int, numClasses)
	for _, label := range denseLabels {
		if label < 0 || label >= numClasses {
			return nil, errors.NewValueError("SampleWeights", "class index out of range")
		}
		counts[label]++
	}

	n := float64(len(denseLabels))
	k := float64(numClasses)
	classWeight := make([]float64, numClasses)
	for c, count := range counts {
		if count > 0 {
			classWeight[c] = n / (k * float64(count))
		}
	}

	weights := make([]float64, len(denseLabels))
	for i, label := range denseLabels {
		weights[i] = classWeight[label]
	}
	return weights, nil
}
