package bayesian

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/crucible-opt/crucible/internal/optimization/kernels"
)

func TestGPFitAndPredict(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewVecDense(3, []float64{1, 2, 1})

	gp := NewGP(kernels.NewRBF(1.0, 1.0), 1e-6)
	require.NoError(t, gp.Fit(X, y))

	mean, variance, err := gp.Predict(mat.NewDense(3, 1, []float64{1, 2, 3}))
	require.NoError(t, err)
	require.NotNil(t, mean)
	require.NotNil(t, variance)

	// With tiny noise the posterior mean interpolates the training data
	// and the predictive variance collapses there.
	for i := 0; i < 3; i++ {
		assert.InDelta(t, y.AtVec(i), mean.AtVec(i), 1e-2)
		assert.Less(t, variance.AtVec(i), 0.1)
		assert.GreaterOrEqual(t, variance.AtVec(i), 0.0)
	}
}

func TestGPWithNoise(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{-1, 0, 1})
	y := mat.NewVecDense(3, []float64{1, 0, 1})

	gp := NewGP(kernels.NewRBF(1.0, 1.0), 0.1)
	require.NoError(t, gp.Fit(X, y))

	means, variances, err := gp.Predict(mat.NewDense(3, 1, []float64{-1, 0, 1}))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.InDelta(t, y.AtVec(i), means.AtVec(i), 0.5, "prediction should stay close to training data")
		assert.Greater(t, variances.AtVec(i), 0.0, "observation noise keeps the variance positive")
	}
}

func TestGPVarianceGrowsAwayFromData(t *testing.T) {
	X := mat.NewDense(5, 1, []float64{-2, -1, 0, 1, 2})
	y := mat.NewVecDense(5, []float64{4, 1, 0, 1, 4})

	gp := NewGP(kernels.NewMatern52(1.0, 1.0), 1e-6)
	require.NoError(t, gp.Fit(X, y))

	_, variances, err := gp.Predict(mat.NewDense(2, 1, []float64{0.5, 10}))
	require.NoError(t, err)

	assert.Greater(t, variances.AtVec(1), variances.AtVec(0),
		"variance far from the data should exceed variance inside it")
}

func TestGPBatchPredict(t *testing.T) {
	X := mat.NewDense(5, 1, []float64{-2, -1, 0, 1, 2})
	y := mat.NewVecDense(5, []float64{4, 1, 0, 1, 4}) // x^2

	gp := NewGP(kernels.NewRBF(1.0, 1.0), 1e-6)
	require.NoError(t, gp.Fit(X, y))

	testX := mat.NewDense(3, 1, []float64{-0.5, 0.5, 1.5})
	means, variances, err := gp.Predict(testX)
	require.NoError(t, err)

	nPoints, _ := testX.Dims()
	require.Equal(t, nPoints, means.Len())
	require.Equal(t, nPoints, variances.Len())

	for i := 0; i < nPoints; i++ {
		x := testX.At(i, 0)
		assert.InDelta(t, x*x, means.AtVec(i), 0.5, "prediction should be close to x^2")
		assert.GreaterOrEqual(t, variances.AtVec(i), 0.0)
	}
}

func TestGPErrorHandling(t *testing.T) {
	gp := NewGP(kernels.NewRBF(1.0, 1.0), 1e-6)

	t.Run("nil input", func(t *testing.T) {
		err := gp.Fit(nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must not be nil")
	})

	t.Run("empty input", func(t *testing.T) {
		err := gp.Fit(&mat.Dense{}, &mat.VecDense{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must not be empty")
	})

	t.Run("mismatched dimensions", func(t *testing.T) {
		X := mat.NewDense(3, 1, []float64{1, 2, 3})
		y := mat.NewVecDense(2, []float64{1, 2})
		err := gp.Fit(X, y)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dimension mismatch")
	})

	t.Run("predict without fit", func(t *testing.T) {
		fresh := NewGP(kernels.NewRBF(1.0, 1.0), 1e-6)
		_, _, err := fresh.Predict(mat.NewDense(1, 1, []float64{0}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not fitted")
	})

	t.Run("predict nil input", func(t *testing.T) {
		_, _, err := gp.Predict(nil)
		require.Error(t, err)
	})
}

func TestGPSingularMatrix(t *testing.T) {
	// Duplicate points make the kernel matrix singular without jitter.
	X := mat.NewDense(3, 1, []float64{1.0, 1.0, 1.0})
	y := mat.NewVecDense(3, []float64{1.0, 1.0, 1.1})

	gp := NewGP(kernels.NewRBF(1.0, 1.0), 1e-6)
	require.NoError(t, gp.Fit(X, y))

	means, variances, err := gp.Predict(mat.NewDense(1, 1, []float64{1.0}))
	require.NoError(t, err)
	assert.InDelta(t, (1.0+1.0+1.1)/3, means.AtVec(0), 0.2)
	assert.GreaterOrEqual(t, variances.AtVec(0), 0.0)
}

func TestGPTwoDimensionalInputs(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
	})
	y := mat.NewVecDense(4, []float64{0, 1, 1, 2})

	gp := NewGP(kernels.NewMatern52(1.0, 1.0), 1e-6)
	require.NoError(t, gp.Fit(X, y))

	means, _, err := gp.Predict(mat.NewDense(1, 2, []float64{0.5, 0.5}))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, means.AtVec(0), 0.3)
}

func TestMatrixPoolReuse(t *testing.T) {
	p := NewMatrixPool()

	m := p.GetSymDense(4)
	m.SetSym(0, 0, 5)
	p.PutSymDense(m)

	again := p.GetSymDense(4)
	assert.Same(t, m, again, "same-size matrix should be recycled")
	assert.Equal(t, 0.0, again.At(0, 0), "recycled matrix must be zeroed")

	other := p.GetSymDense(3)
	assert.NotSame(t, m, other, "size mismatch should allocate fresh")

	v := p.GetVecDense(6)
	v.SetVec(2, 9)
	p.PutVecDense(v)
	vAgain := p.GetVecDense(6)
	assert.Same(t, v, vAgain)
	assert.Equal(t, 0.0, vAgain.AtVec(2))
}
