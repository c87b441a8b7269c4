package boost

import (
	"bytes"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// syntheticClasses builds a well-separated dataset: rowsPerClass rows per
// class, where feature 0 carries the class signal and the rest is noise.
func syntheticClasses(numClass, rowsPerClass, numFeatures int, seed int64) (*mat.Dense, []int) {
	rng := rand.New(rand.NewSource(seed))
	rows := numClass * rowsPerClass
	X := mat.NewDense(rows, numFeatures, nil)
	labels := make([]int, rows)

	for k := 0; k < numClass; k++ {
		for r := 0; r < rowsPerClass; r++ {
			i := k*rowsPerClass + r
			labels[i] = k
			X.Set(i, 0, float64(k*10)+rng.Float64())
			for j := 1; j < numFeatures; j++ {
				X.Set(i, j, rng.Float64())
			}
		}
	}
	return X, labels
}

func testParams(numClass int) Params {
	return Params{
		NumRounds:    30,
		MaxDepth:     3,
		LearningRate: 0.3,
		NumClass:     numClass,
		RegLambda:    1,
		Seed:         1,
	}
}

func TestTrainSeparatesClasses(t *testing.T) {
	X, labels := syntheticClasses(4, 40, 5, 3)

	model, err := Train(X, labels, nil, testParams(4))
	require.NoError(t, err)
	require.NotEmpty(t, model.Trees)
	assert.Equal(t, ObjectiveMultiSoftprob, model.Objective)

	proba, err := model.PredictProba(X)
	require.NoError(t, err)

	// Training must beat the uniform prior by a wide margin.
	var loss float64
	for i, label := range labels {
		loss += -math.Log(math.Max(proba.At(i, label), 1e-15))
	}
	loss /= float64(len(labels))
	uniform := math.Log(4)
	assert.Lessf(t, loss, uniform/4, "log-loss %.4f did not improve on uniform %.4f", loss, uniform)
}

func TestPredictProbaRowsSumToOne(t *testing.T) {
	X, labels := syntheticClasses(3, 30, 4, 5)

	model, err := Train(X, labels, nil, testParams(3))
	require.NoError(t, err)

	proba, err := model.PredictProba(X)
	require.NoError(t, err)

	rows, cols := proba.Dims()
	assert.Equal(t, len(labels), rows)
	assert.Equal(t, 3, cols)
	for i := 0; i < rows; i++ {
		var sum float64
		for j := 0; j < cols; j++ {
			p := proba.At(i, j)
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 1.0)
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "row %d", i)
	}
}

func TestSampleWeightsShiftPredictions(t *testing.T) {
	// Two overlapping classes; upweighting class 1 must pull the average
	// predicted probability of class 1 upward.
	rng := rand.New(rand.NewSource(9))
	rows := 200
	X := mat.NewDense(rows, 2, nil)
	labels := make([]int, rows)
	for i := 0; i < rows; i++ {
		labels[i] = i % 2
		X.Set(i, 0, rng.Float64()) // pure noise: classes are inseparable
		X.Set(i, 1, rng.Float64())
	}

	params := testParams(2)
	unweighted, err := Train(X, labels, nil, params)
	require.NoError(t, err)

	weights := make([]float64, rows)
	for i := range weights {
		weights[i] = 1
		if labels[i] == 1 {
			weights[i] = 5
		}
	}
	weighted, err := Train(X, labels, weights, params)
	require.NoError(t, err)

	meanClass1 := func(m *Model) float64 {
		proba, err := m.PredictProba(X)
		require.NoError(t, err)
		var sum float64
		for i := 0; i < rows; i++ {
			sum += proba.At(i, 1)
		}
		return sum / float64(rows)
	}

	assert.Greater(t, meanClass1(weighted), meanClass1(unweighted))
}

func TestTrainValidatesInput(t *testing.T) {
	X, labels := syntheticClasses(2, 10, 3, 1)

	tests := []struct {
		name   string
		mutate func(p *Params) (mat.Matrix, []int, []float64)
	}{
		{
			name: "label out of range",
			mutate: func(p *Params) (mat.Matrix, []int, []float64) {
				bad := append([]int{}, labels...)
				bad[0] = 7
				return X, bad, nil
			},
		},
		{
			name: "label count mismatch",
			mutate: func(p *Params) (mat.Matrix, []int, []float64) {
				return X, labels[:5], nil
			},
		},
		{
			name: "negative weight",
			mutate: func(p *Params) (mat.Matrix, []int, []float64) {
				w := make([]float64, len(labels))
				w[3] = -1
				return X, labels, w
			},
		},
		{
			name: "bad subsample",
			mutate: func(p *Params) (mat.Matrix, []int, []float64) {
				p.Subsample = 1.5
				return X, labels, nil
			},
		},
		{
			name: "missing class count",
			mutate: func(p *Params) (mat.Matrix, []int, []float64) {
				p.NumClass = 0
				return X, labels, nil
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := testParams(2)
			x, y, w := tt.mutate(&params)
			_, err := Train(x, y, w, params)
			assert.Error(t, err)
		})
	}
}

func TestPredictProbaRejectsWrongWidth(t *testing.T) {
	X, labels := syntheticClasses(2, 20, 4, 2)
	model, err := Train(X, labels, nil, testParams(2))
	require.NoError(t, err)

	_, err = model.PredictProba(mat.NewDense(3, 2, nil))
	assert.Error(t, err)
}

func TestModelGobRoundTrip(t *testing.T) {
	X, labels := syntheticClasses(3, 30, 4, 7)
	model, err := Train(X, labels, nil, testParams(3))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, model.Save(&buf))

	restored, err := LoadModel(&buf)
	require.NoError(t, err)
	assert.Equal(t, model.NumClass, restored.NumClass)
	assert.Equal(t, model.NumFeatures, restored.NumFeatures)
	assert.Len(t, restored.Trees, len(model.Trees))

	want, err := model.PredictProba(X)
	require.NoError(t, err)
	got, err := restored.PredictProba(X)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(want, got, 1e-15))
}

func TestSubsamplingIsSeeded(t *testing.T) {
	X, labels := syntheticClasses(2, 40, 4, 11)

	params := testParams(2)
	params.Subsample = 0.8
	params.ColsampleByTree = 0.75

	first, err := Train(X, labels, nil, params)
	require.NoError(t, err)
	second, err := Train(X, labels, nil, params)
	require.NoError(t, err)

	p1, err := first.PredictProba(X)
	require.NoError(t, err)
	p2, err := second.PredictProba(X)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(p1, p2, 0))
}
