// Package boost implements the gradient-boosted decision-tree ensemble used
// by the survey classifier: a multiclass softmax objective, exact greedy
// splits with L1/L2 regularization and a minimum split-loss (gamma) term,
// row and column subsampling, and per-sample weights.
package boost

import (
	"encoding/gob"
	"io"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/healthsignals/mindgauge/pkg/errors"
)

// ObjectiveMultiSoftprob is the only objective the ensemble is trained with:
// multiclass probability output via softmax over per-class raw scores.
const ObjectiveMultiSoftprob = "multi:softprob"

// ModelFileExt is the artifact extension the model store matches on.
const ModelFileExt = ".model.gob"

// Node is a single node in a decision tree. Nodes are stored flat; children
// are referenced by index, -1 marks a leaf.
type Node struct {
	SplitFeature int
	Threshold    float64
	LeftChild    int
	RightChild   int
	LeafValue    float64 // learning rate already applied
	Gain         float64
}

// IsLeaf reports whether the node is a terminal node.
func (n *Node) IsLeaf() bool {
	return n.LeftChild == -1 && n.RightChild == -1
}

// Tree is one regression tree of the ensemble.
type Tree struct {
	Nodes     []Node
	NumLeaves int
}

// Predict routes a single canonical feature row to a leaf value.
func (t *Tree) Predict(features []float64) float64 {
	nodeID := 0
	for nodeID >= 0 && nodeID < len(t.Nodes) {
		node := &t.Nodes[nodeID]
		if node.IsLeaf() {
			return node.LeafValue
		}
		if features[node.SplitFeature] <= node.Threshold {
			nodeID = node.LeftChild
		} else {
			nodeID = node.RightChild
		}
	}
	return 0.0
}

// Model is a trained, immutable boosted-tree ensemble. Trees are arranged
// round-major: tree i scores class i % NumClass. Prediction does not mutate
// any state, so a loaded Model is safe for unsynchronized concurrent use.
type Model struct {
	Objective   string
	NumClass    int
	NumFeatures int
	NumRounds   int
	Trees       []Tree
}

// RawScores sums the ensemble's per-class scores for one row.
func (m *Model) RawScores(features []float64) []float64 {
	scores := make([]float64, m.NumClass)
	for i := range m.Trees {
		scores[i%m.NumClass] += m.Trees[i].Predict(features)
	}
	return scores
}

// PredictProba returns an n x NumClass matrix of class probabilities.
func (m *Model) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	rows, cols := X.Dims()
	if cols != m.NumFeatures {
		return nil, errors.NewDimensionError("PredictProba", m.NumFeatures, cols, 1)
	}
	if len(m.Trees) == 0 {
		return nil, errors.NewValueError("PredictProba", "model has no trees")
	}

	proba := mat.NewDense(rows, m.NumClass, nil)
	features := make([]float64, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			features[j] = X.At(i, j)
		}
		probs := softmax(m.RawScores(features))
		proba.SetRow(i, probs)
	}
	return proba, nil
}

// softmax converts raw scores to probabilities with the usual max-shift for
// numerical stability.
func softmax(logits []float64) []float64 {
	maxLogit := logits[0]
	for _, l := range logits[1:] {
		if l > maxLogit {
			maxLogit = l
		}
	}
	probs := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		probs[i] = math.Exp(l - maxLogit)
		sum += probs[i]
	}
	if sum > 0 {
		for i := range probs {
			probs[i] /= sum
		}
	}
	return probs
}

// Save gob-encodes the model.
func (m *Model) Save(w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(m); err != nil {
		return errors.Wrap(err, "encoding model")
	}
	return nil
}

// LoadModel gob-decodes a model and validates its shape.
func LoadModel(r io.Reader) (*Model, error) {
	var m Model
	if err := gob.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(err, "decoding model")
	}
	if m.NumClass < 2 || m.NumFeatures <= 0 || len(m.Trees) == 0 {
		return nil, errors.NewValueError("LoadModel", "artifact is not a trained model")
	}
	return &m, nil
}
