package bayesian

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/crucible-opt/crucible/internal/optimization"
	"github.com/crucible-opt/crucible/internal/optimization/kernels"
)

// GP is the Gaussian process regression model the optimizer fits over its
// evaluation history. It provides a posterior mean and uncertainty at any
// queried point.
type GP struct {
	kernel   kernels.Kernel
	noiseVar float64

	// Training data, copied on Fit.
	X *mat.Dense
	y *mat.VecDense

	// Precomputed solve of K alpha = y and the Cholesky factor used for
	// predictive variances.
	alpha *mat.VecDense
	chol  *mat.Cholesky

	pool   *MatrixPool
	logger *zap.Logger
}

// NewGP creates a Gaussian process with the given kernel and observation
// noise variance. A small positive noise keeps the kernel matrix well
// conditioned.
func NewGP(kernel kernels.Kernel, noiseVar float64) *GP {
	logger, _ := zap.NewDevelopment()

	return &GP{
		kernel:   kernel,
		noiseVar: noiseVar,
		pool:     NewMatrixPool(),
		logger:   logger.Named("gaussian_process"),
	}
}

// Fit conditions the GP on training inputs X and targets y.
func (gp *GP) Fit(X *mat.Dense, y *mat.VecDense) error {
	const op = "GP.Fit"

	if X == nil || y == nil {
		return optimization.WrapError(errors.New("input matrices must not be nil"), "gaussian_process: "+op)
	}

	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return optimization.WrapError(errors.New("input matrix X must not be empty"), "gaussian_process: "+op)
	}
	if nSamples != y.Len() {
		err := fmt.Errorf("dimension mismatch: X has %d samples but y has length %d", nSamples, y.Len())
		return optimization.WrapError(err, "gaussian_process: "+op)
	}

	gp.logger.Debug("Fitting GP",
		zap.Int("samples", nSamples),
		zap.Int("features", nFeatures),
		zap.Float64("noise_var", gp.noiseVar),
	)

	gp.X = mat.DenseCopyOf(X)
	gp.y = mat.VecDenseCopyOf(y)

	K := gp.kernelMatrix(X, nSamples)

	alpha, chol, err := gp.solve(K, y, nSamples)
	gp.pool.PutSymDense(K)
	if err != nil {
		return optimization.WrapError(err, "gaussian_process: "+op)
	}

	gp.alpha = alpha
	gp.chol = chol
	return nil
}

// kernelMatrix computes K(X, X) with observation noise on the diagonal.
func (gp *GP) kernelMatrix(X *mat.Dense, nSamples int) *mat.SymDense {
	K := gp.pool.GetSymDense(nSamples)

	rows := make([][]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		rows[i] = mat.Row(nil, i, X)
	}

	for i := 0; i < nSamples; i++ {
		K.SetSym(i, i, gp.kernel.Eval(rows[i], rows[i])+gp.noiseVar)
		for j := i + 1; j < nSamples; j++ {
			K.SetSym(i, j, gp.kernel.Eval(rows[i], rows[j]))
		}
	}

	return K
}

// solve factorizes K and solves K alpha = y, escalating a diagonal jitter
// when the factorization fails and falling back to an SVD pseudo-inverse as
// a last resort.
func (gp *GP) solve(K *mat.SymDense, y *mat.VecDense, nSamples int) (*mat.VecDense, *mat.Cholesky, error) {
	jitter := 0.0
	for attempt := 0; attempt < 8; attempt++ {
		Kj := mat.NewSymDense(nSamples, nil)
		Kj.CopySym(K)
		if jitter > 0 {
			for i := 0; i < nSamples; i++ {
				Kj.SetSym(i, i, Kj.At(i, i)+jitter)
			}
		}

		var chol mat.Cholesky
		if ok := chol.Factorize(Kj); !ok {
			gp.logger.Debug("Cholesky factorization failed, increasing jitter",
				zap.Int("attempt", attempt+1),
				zap.Float64("jitter", jitter),
			)
			if jitter == 0 {
				jitter = 1e-10
			} else {
				jitter *= 10
			}
			continue
		}

		alpha := mat.NewVecDense(nSamples, nil)
		if err := chol.SolveVecTo(alpha, y); err != nil {
			gp.logger.Debug("Cholesky solve failed, increasing jitter",
				zap.Error(err),
				zap.Int("attempt", attempt+1),
			)
			jitter = math.Max(jitter*10, 1e-10)
			continue
		}

		return alpha, &chol, nil
	}

	gp.logger.Info("Falling back to SVD solve after Cholesky attempts failed")
	alpha, err := gp.solveWithSVD(K, y, nSamples)
	if err != nil {
		return nil, nil, err
	}
	return alpha, nil, nil
}

// solveWithSVD computes alpha via a thresholded pseudo-inverse.
func (gp *GP) solveWithSVD(K *mat.SymDense, y *mat.VecDense, nSamples int) (*mat.VecDense, error) {
	var svd mat.SVD
	if ok := svd.Factorize(K, mat.SVDFull); !ok {
		return nil, errors.New("SVD factorization failed")
	}

	s := svd.Values(nil)
	if len(s) == 0 {
		return nil, errors.New("SVD returned no singular values")
	}

	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)

	var UTy mat.VecDense
	UTy.MulVec(U.T(), y)

	threshold := float64(nSamples) * s[0] * 1e-15
	scaled := mat.NewVecDense(nSamples, nil)
	rank := 0
	for i := 0; i < nSamples; i++ {
		if i < len(s) && s[i] > threshold {
			scaled.SetVec(i, UTy.AtVec(i)/s[i])
			rank++
		}
	}
	if rank == 0 {
		return nil, errors.New("kernel matrix is effectively rank zero")
	}

	gp.logger.Debug("Solved system with SVD",
		zap.Int("effective_rank", rank),
		zap.Float64("max_singular_value", s[0]),
		zap.Float64("min_singular_value", s[len(s)-1]),
	)

	alpha := mat.NewVecDense(nSamples, nil)
	alpha.MulVec(&V, scaled)
	return alpha, nil
}

// Predict returns the posterior mean and variance at each row of X.
func (gp *GP) Predict(X *mat.Dense) (*mat.VecDense, *mat.VecDense, error) {
	const op = "GP.Predict"

	if X == nil {
		return nil, nil, optimization.WrapError(errors.New("input matrix X is nil"), "gaussian_process: "+op)
	}
	if gp.X == nil || gp.alpha == nil {
		return nil, nil, optimization.WrapError(errors.New("model not fitted"), "gaussian_process: "+op)
	}

	nTest, _ := X.Dims()
	nTrain, _ := gp.X.Dims()

	mean := mat.NewVecDense(nTest, nil)
	variance := mat.NewVecDense(nTest, nil)

	Kss := make([]float64, nTest)
	Kstar := mat.NewDense(nTest, nTrain, nil)
	for i := 0; i < nTest; i++ {
		xStar := X.RawRowView(i)
		Kss[i] = gp.kernel.Eval(xStar, xStar) + gp.noiseVar
		for j := 0; j < nTrain; j++ {
			Kstar.Set(i, j, gp.kernel.Eval(xStar, gp.X.RawRowView(j)))
		}
	}

	// Posterior mean: K* alpha.
	mean.MulVec(Kstar, gp.alpha)

	// Posterior variance: diag(K** - K* K^-1 K*^T) via the Cholesky
	// factor. Without a factor (SVD fallback) the prior variance is kept,
	// which only makes the search more exploratory.
	if gp.chol != nil {
		v := mat.NewDense(nTrain, nTest, nil)
		if err := gp.chol.SolveTo(v, Kstar.T()); err != nil {
			return nil, nil, optimization.WrapError(
				fmt.Errorf("failed to solve for predictive variance: %v", err),
				"gaussian_process: "+op,
			)
		}
		for i := 0; i < nTest; i++ {
			var sum float64
			for j := 0; j < nTrain; j++ {
				sum += Kstar.At(i, j) * v.At(j, i)
			}
			variance.SetVec(i, math.Max(0, Kss[i]-sum))
		}
	} else {
		for i := 0; i < nTest; i++ {
			variance.SetVec(i, Kss[i])
		}
	}

	return mean, variance, nil
}
