package boost

import (
	"math"
)

// multiclass softmax gradients with a diagonal hessian approximation:
// grad = p_k - y_k, hess = p_k * (1 - p_k). Sample weights multiply both, so
// rare classes with larger weights pull the fit harder.

const minHessian = 1e-16

// computeGradHess fills grad and hess (both n*numClass, row-major) from the
// current raw scores.
func computeGradHess(scores []float64, labels []int, weights []float64, numClass int, grad, hess []float64) {
	logits := make([]float64, numClass)
	for i, label := range labels {
		copy(logits, scores[i*numClass:(i+1)*numClass])
		probs := softmax(logits)

		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		for k := 0; k < numClass; k++ {
			g := probs[k]
			if k == label {
				g -= 1.0
			}
			h := probs[k] * (1.0 - probs[k])
			if h < minHessian {
				h = minHessian
			}
			grad[i*numClass+k] = w * g
			hess[i*numClass+k] = w * h
		}
	}
}

// trainingLogLoss is the weighted multiclass log-loss of the current scores,
// used only for progress reporting during a fit.
func trainingLogLoss(scores []float64, labels []int, weights []float64, numClass int) float64 {
	var loss, totalWeight float64
	logits := make([]float64, numClass)
	for i, label := range labels {
		copy(logits, scores[i*numClass:(i+1)*numClass])

		maxLogit := logits[0]
		for _, l := range logits[1:] {
			if l > maxLogit {
				maxLogit = l
			}
		}
		var sumExp float64
		for _, l := range logits {
			sumExp += math.Exp(l - maxLogit)
		}
		logSumExp := math.Log(sumExp) + maxLogit

		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		loss += w * (logSumExp - logits[label])
		totalWeight += w
	}
	return loss / totalWeight
}
