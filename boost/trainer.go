package boost

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/healthsignals/mindgauge/pkg/errors"
	"github.com/healthsignals/mindgauge/pkg/log"
)

// minDataInLeaf is the smallest sample count a leaf may hold. The survey
// tables are large; the constraint mostly guards degenerate splits on the
// tiny synthetic sets used in tuning smoke runs.
const minDataInLeaf = 2

// Trainer fits one boosted-tree ensemble. A Trainer is single-use: create,
// Fit, take the Model.
type Trainer struct {
	params Params

	X            *mat.Dense
	labels       []int
	sampleWeight []float64

	rng    *rand.Rand
	scores []float64 // n * NumClass raw scores, updated after every tree
	grad   []float64
	hess   []float64
	trees  []Tree

	// per-tree state
	allowedCols []int
}

// Train fits an ensemble on X with dense labels in [0, params.NumClass).
// weights may be nil for unweighted training. Any failure returns no model.
func Train(X mat.Matrix, labels []int, weights []float64, params Params) (*Model, error) {
	params = params.withDefaults()
	if err := params.validate(); err != nil {
		return nil, err
	}

	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.ErrEmptyData
	}
	if len(labels) != rows {
		return nil, errors.NewDimensionError("Train", rows, len(labels), 0)
	}
	if weights != nil && len(weights) != rows {
		return nil, errors.NewDimensionError("Train", rows, len(weights), 0)
	}
	for i, label := range labels {
		if label < 0 || label >= params.NumClass {
			return nil, errors.Newf("label %d at row %d outside [0, %d)", label, i, params.NumClass)
		}
	}
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return nil, errors.Newf("negative or NaN sample weight at row %d", i)
		}
	}

	xDense := mat.DenseCopyOf(X)
	t := &Trainer{
		params:       params,
		X:            xDense,
		labels:       labels,
		sampleWeight: weights,
		rng:          rand.New(rand.NewSource(params.Seed)),
		scores:       make([]float64, rows*params.NumClass),
		grad:         make([]float64, rows*params.NumClass),
		hess:         make([]float64, rows*params.NumClass),
	}
	if err := t.fit(); err != nil {
		return nil, err
	}

	return &Model{
		Objective:   ObjectiveMultiSoftprob,
		NumClass:    params.NumClass,
		NumFeatures: cols,
		NumRounds:   params.NumRounds,
		Trees:       t.trees,
	}, nil
}

func (t *Trainer) fit() error {
	rows, _ := t.X.Dims()
	logger := log.GetLoggerWithName("boost.trainer")

	for round := 0; round < t.params.NumRounds; round++ {
		computeGradHess(t.scores, t.labels, t.sampleWeight, t.params.NumClass, t.grad, t.hess)

		rowIndices := t.subsampleRows(rows)
		for k := 0; k < t.params.NumClass; k++ {
			t.allowedCols = t.subsampleCols()
			tree, err := t.buildTree(rowIndices, k)
			if err != nil {
				return errors.Wrapf(err, "round %d, class %d", round, k)
			}
			t.trees = append(t.trees, tree)
			t.updateScores(tree, k)
		}

		if round%25 == 0 {
			logger.Debug("boosting progress",
				log.IterationKey, round,
				log.LossKey, trainingLogLoss(t.scores, t.labels, t.sampleWeight, t.params.NumClass))
		}
	}
	return nil
}

// subsampleRows draws the row set one boosting round trains on, without
// replacement.
func (t *Trainer) subsampleRows(rows int) []int {
	n := int(math.Ceil(t.params.Subsample * float64(rows)))
	if n >= rows {
		indices := make([]int, rows)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}
	perm := t.rng.Perm(rows)[:n]
	sort.Ints(perm)
	return perm
}

// subsampleCols draws the feature set one tree may split on.
func (t *Trainer) subsampleCols() []int {
	_, cols := t.X.Dims()
	n := int(math.Ceil(t.params.ColsampleByTree * float64(cols)))
	if n >= cols {
		indices := make([]int, cols)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}
	perm := t.rng.Perm(cols)[:n]
	sort.Ints(perm)
	return perm
}

// updateScores adds the new tree's output for class k to every row's score.
func (t *Trainer) updateScores(tree Tree, k int) {
	rows, cols := t.X.Dims()
	features := make([]float64, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			features[j] = t.X.At(i, j)
		}
		t.scores[i*t.params.NumClass+k] += tree.Predict(features)
	}
}

// buildTree grows one tree for class k on the given rows.
func (t *Trainer) buildTree(indices []int, k int) (Tree, error) {
	tree := Tree{}
	t.buildNode(&tree, indices, k, 0)
	for i := range tree.Nodes {
		if tree.Nodes[i].IsLeaf() {
			tree.NumLeaves++
		}
	}
	return tree, nil
}

// buildNode recursively grows nodes, returning the new node's index.
func (t *Trainer) buildNode(tree *Tree, indices []int, k, depth int) int {
	nodeIdx := len(tree.Nodes)

	if depth >= t.params.MaxDepth || len(indices) < 2*minDataInLeaf {
		tree.Nodes = append(tree.Nodes, t.newLeaf(indices, k))
		return nodeIdx
	}

	best := t.findBestSplit(indices, k)
	if best.gain <= 0 {
		tree.Nodes = append(tree.Nodes, t.newLeaf(indices, k))
		return nodeIdx
	}

	tree.Nodes = append(tree.Nodes, Node{
		SplitFeature: best.feature,
		Threshold:    best.threshold,
		LeftChild:    -1,
		RightChild:   -1,
		Gain:         best.gain,
	})

	var left, right []int
	for _, idx := range indices {
		if t.X.At(idx, best.feature) <= best.threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}

	leftChild := t.buildNode(tree, left, k, depth+1)
	rightChild := t.buildNode(tree, right, k, depth+1)
	tree.Nodes[nodeIdx].LeftChild = leftChild
	tree.Nodes[nodeIdx].RightChild = rightChild
	return nodeIdx
}

// newLeaf computes the regularized leaf value. The L1 term shrinks the
// gradient sum toward zero; the learning rate is baked into the stored value.
func (t *Trainer) newLeaf(indices []int, k int) Node {
	var sumGrad, sumHess float64
	for _, idx := range indices {
		sumGrad += t.grad[idx*t.params.NumClass+k]
		sumHess += t.hess[idx*t.params.NumClass+k]
	}
	value := -t.params.LearningRate * softThreshold(sumGrad, t.params.RegAlpha) / (sumHess + t.params.RegLambda)
	return Node{LeftChild: -1, RightChild: -1, LeafValue: value}
}

// softThreshold applies the L1 shrinkage used by XGBoost-style leaf values.
func softThreshold(g, alpha float64) float64 {
	switch {
	case g > alpha:
		return g - alpha
	case g < -alpha:
		return g + alpha
	default:
		return 0
	}
}

type splitCandidate struct {
	feature   int
	threshold float64
	gain      float64
}

// findBestSplit scans the tree's allowed features for the split maximizing
// gain = 0.5*(GL²/(HL+λ) + GR²/(HR+λ) − G²/(H+λ)) − γ.
func (t *Trainer) findBestSplit(indices []int, k int) splitCandidate {
	best := splitCandidate{gain: -math.MaxFloat64, feature: -1}

	var totalGrad, totalHess float64
	for _, idx := range indices {
		totalGrad += t.grad[idx*t.params.NumClass+k]
		totalHess += t.hess[idx*t.params.NumClass+k]
	}

	lambda := t.params.RegLambda
	parentScore := totalGrad * totalGrad / (totalHess + lambda)

	type valueIdx struct {
		value float64
		idx   int
	}
	values := make([]valueIdx, len(indices))

	for _, feature := range t.allowedCols {
		for i, idx := range indices {
			values[i] = valueIdx{value: t.X.At(idx, feature), idx: idx}
		}
		sort.Slice(values, func(a, b int) bool { return values[a].value < values[b].value })

		var leftGrad, leftHess float64
		leftCount := 0
		for i := 0; i < len(values)-1; i++ {
			idx := values[i].idx
			leftGrad += t.grad[idx*t.params.NumClass+k]
			leftHess += t.hess[idx*t.params.NumClass+k]
			leftCount++

			if values[i].value == values[i+1].value {
				continue
			}
			rightCount := len(indices) - leftCount
			if leftCount < minDataInLeaf || rightCount < minDataInLeaf {
				continue
			}

			rightGrad := totalGrad - leftGrad
			rightHess := totalHess - leftHess
			if leftHess < t.params.MinChildWeight || rightHess < t.params.MinChildWeight {
				continue
			}

			gain := 0.5*(leftGrad*leftGrad/(leftHess+lambda)+
				rightGrad*rightGrad/(rightHess+lambda)-
				parentScore) - t.params.Gamma

			if gain > best.gain {
				best.gain = gain
				best.feature = feature
				best.threshold = (values[i].value + values[i+1].value) / 2
			}
		}
	}
	return best
}
