package tuner

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/healthsignals/mindgauge/pkg/errors"
)

// gaussianProcess is the surrogate model over the unit-cube-scaled search
// space: an RBF kernel with fixed length scale, observation noise on the
// diagonal, and targets standardized to zero mean and unit variance.
type gaussianProcess struct {
	points [][]float64
	chol   mat.Cholesky
	alpha  *mat.VecDense

	yMean, yStd float64
	lengthScale float64
	noise       float64
}

const (
	gpLengthScale = 0.2
	gpNoise       = 1e-6
)

// fitGP conditions the surrogate on the observed (point, value) pairs.
func fitGP(points [][]float64, values []float64) (*gaussianProcess, error) {
	n := len(points)
	if n == 0 || len(values) != n {
		return nil, errors.NewValueError("fitGP", "observation count mismatch")
	}

	gp := &gaussianProcess{
		points:      points,
		lengthScale: gpLengthScale,
		noise:       gpNoise,
	}

	// Standardize targets so the unit kernel variance is a sane prior.
	for _, v := range values {
		gp.yMean += v
	}
	gp.yMean /= float64(n)
	for _, v := range values {
		d := v - gp.yMean
		gp.yStd += d * d
	}
	gp.yStd = math.Sqrt(gp.yStd / float64(n))
	if gp.yStd < 1e-12 {
		gp.yStd = 1
	}

	k := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := gp.kernel(points[i], points[j])
			if i == j {
				v += gp.noise
			}
			k.SetSym(i, j, v)
		}
	}

	// A jittered retry keeps near-duplicate observations from sinking the
	// factorization.
	jitter := gp.noise
	for attempt := 0; attempt < 5; attempt++ {
		if gp.chol.Factorize(k) {
			break
		}
		jitter *= 100
		for i := 0; i < n; i++ {
			k.SetSym(i, i, k.At(i, i)+jitter)
		}
		if attempt == 4 {
			return nil, errors.New("surrogate covariance is not positive definite")
		}
	}

	y := mat.NewVecDense(n, nil)
	for i, v := range values {
		y.SetVec(i, (v-gp.yMean)/gp.yStd)
	}
	gp.alpha = mat.NewVecDense(n, nil)
	if err := gp.chol.SolveVecTo(gp.alpha, y); err != nil {
		return nil, errors.Wrap(err, "solving surrogate system")
	}
	return gp, nil
}

// kernel is the squared-exponential covariance.
func (gp *gaussianProcess) kernel(a, b []float64) float64 {
	var dist2 float64
	for i := range a {
		d := a[i] - b[i]
		dist2 += d * d
	}
	return math.Exp(-dist2 / (2 * gp.lengthScale * gp.lengthScale))
}

// predict returns the posterior mean and standard deviation at x, in the
// original target units.
func (gp *gaussianProcess) predict(x []float64) (mean, std float64) {
	n := len(gp.points)
	kStar := mat.NewVecDense(n, nil)
	for i, p := range gp.points {
		kStar.SetVec(i, gp.kernel(x, p))
	}

	mean = mat.Dot(kStar, gp.alpha)

	v := mat.NewVecDense(n, nil)
	if err := gp.chol.SolveVecTo(v, kStar); err == nil {
		variance := 1.0 + gp.noise - mat.Dot(kStar, v)
		if variance < 0 {
			variance = 0
		}
		std = math.Sqrt(variance)
	}

	return mean*gp.yStd + gp.yMean, std * gp.yStd
}
