package linear

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/linbridge/config"
	"github.com/YuminosukeSato/linbridge/pkg/errors"
)

func TestOLS_SimpleLine(t *testing.T) {
	ols := NewOrdinaryLeastSquares()
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	require.NoError(t, ols.Fit(X, []float64{2, 4, 6}))

	coef, intercept := ols.Coefficients()
	require.Len(t, coef, 1)
	require.Len(t, intercept, 1)
	assert.InDelta(t, 2.0, coef[0], 1e-9)
	assert.InDelta(t, 0.0, intercept[0], 1e-9)
	assert.Equal(t, 1, ols.Rank())

	pred, err := ols.Predict(mat.NewDense(1, 1, []float64{4}))
	require.NoError(t, err)
	assert.InDelta(t, 8.0, pred[0], 1e-9)
}

func TestOLS_MultipleFeatures(t *testing.T) {
	// y = 1 + 2*x0 - 3*x1
	X := mat.NewDense(5, 2, []float64{
		0, 0,
		1, 0,
		0, 1,
		2, 1,
		1, 3,
	})
	y := make([]float64, 5)
	for i := range y {
		y[i] = 1 + 2*X.At(i, 0) - 3*X.At(i, 1)
	}

	ols := NewOrdinaryLeastSquares()
	require.NoError(t, ols.Fit(X, y))

	coef, intercept := ols.Coefficients()
	assert.InDeltaSlice(t, []float64{2, -3}, coef, 1e-9)
	assert.InDelta(t, 1.0, intercept[0], 1e-9)

	pred, err := ols.Predict(X)
	require.NoError(t, err)
	assert.InDeltaSlice(t, y, pred, 1e-9)
}

func TestOLS_WithoutIntercept(t *testing.T) {
	ols := NewOrdinaryLeastSquares(WithFitIntercept(false))
	require.NoError(t, ols.Fit(mat.NewDense(2, 1, []float64{1, 2}), []float64{3, 6}))

	coef, intercept := ols.Coefficients()
	assert.InDelta(t, 3.0, coef[0], 1e-12)
	assert.Equal(t, []float64{0}, intercept)
}

func TestOLS_RankDeficientIsMinimumNorm(t *testing.T) {
	// duplicate column: the minimum-norm solution splits the weight evenly
	X := mat.NewDense(4, 2, []float64{1, 1, 2, 2, 3, 3, 4, 4})
	ols := NewOrdinaryLeastSquares()
	require.NoError(t, ols.Fit(X, []float64{2, 4, 6, 8}))

	coef, intercept := ols.Coefficients()
	assert.InDeltaSlice(t, []float64{1, 1}, coef, 1e-9)
	assert.InDelta(t, 0.0, intercept[0], 1e-9)
	assert.Equal(t, 1, ols.Rank())
}

func TestOLS_ConstantFeature(t *testing.T) {
	// a constant column centers to zero and carries no weight
	X := mat.NewDense(3, 1, []float64{5, 5, 5})
	ols := NewOrdinaryLeastSquares()
	require.NoError(t, ols.Fit(X, []float64{1, 2, 3}))

	coef, intercept := ols.Coefficients()
	assert.Equal(t, []float64{0}, coef)
	assert.InDelta(t, 2.0, intercept[0], 1e-12)
}

func TestOLS_ZeroFeatures(t *testing.T) {
	ols := NewOrdinaryLeastSquares()
	X := &emptyCols{rows: 4}
	require.NoError(t, ols.Fit(X, []float64{1, 2, 3, 6}))

	coef, intercept := ols.Coefficients()
	assert.Empty(t, coef)
	assert.InDelta(t, 3.0, intercept[0], 1e-12)

	pred, err := ols.Predict(&emptyCols{rows: 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 3}, pred)
}

func TestOLS_ShapeMismatchKeepsState(t *testing.T) {
	ols := NewOrdinaryLeastSquares()
	require.NoError(t, ols.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), []float64{2, 4, 6}))
	before, beforeIntercept := ols.Coefficients()

	X := mat.NewDense(10, 1, nil)
	err := ols.Fit(X, make([]float64, 9))
	var dim *errors.DimensionError
	require.True(t, errors.As(err, &dim))
	assert.Equal(t, 0, dim.Axis)

	// a different feature count is also rejected once established
	err = ols.Fit(mat.NewDense(3, 2, nil), make([]float64, 3))
	require.True(t, errors.As(err, &dim))
	assert.Equal(t, 1, dim.Axis)

	after, afterIntercept := ols.Coefficients()
	assert.Equal(t, before, after)
	assert.Equal(t, beforeIntercept, afterIntercept)
}

func TestOLS_NonFiniteTargetRejected(t *testing.T) {
	ols := NewOrdinaryLeastSquares()
	err := ols.Fit(mat.NewDense(2, 1, []float64{1, 2}), []float64{1, math.NaN()})
	var ni *errors.NumericalInstabilityError
	assert.True(t, errors.As(err, &ni))
	assert.False(t, ols.IsFitted())
}

func TestOLS_EmptyFitIsNoop(t *testing.T) {
	ols := NewOrdinaryLeastSquares()
	require.NoError(t, ols.Fit(&emptyCols{rows: 0}, nil))
	assert.False(t, ols.IsFitted())

	coef, intercept := ols.Coefficients()
	assert.NotNil(t, coef)
	assert.Empty(t, coef)
	assert.Nil(t, intercept)
}

func TestOLS_PredictErrors(t *testing.T) {
	ols := NewOrdinaryLeastSquares()
	_, err := ols.Predict(mat.NewDense(1, 1, []float64{1}))
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))

	require.NoError(t, ols.SetCoefficients([]float64{1.5, -2}, 0.25))
	_, err = ols.Predict(mat.NewDense(1, 3, nil))
	var dim *errors.DimensionError
	require.True(t, errors.As(err, &dim))
	assert.Equal(t, 2, dim.Expected)
	assert.Equal(t, 3, dim.Got)

	pred, err := ols.Predict(mat.NewDense(1, 2, []float64{2, 1}))
	require.NoError(t, err)
	assert.Equal(t, []float64{1.25}, pred)

	pred, err = ols.Predict(&emptyCols{rows: 0, cols: 2})
	require.NoError(t, err)
	assert.Empty(t, pred)
}

func TestOLS_PredictDeterministic(t *testing.T) {
	X, y := createBenchmarkData(2500, 4)
	ols := NewOrdinaryLeastSquares(WithParallelThreshold(100))
	require.NoError(t, ols.Fit(X, y))

	first, err := ols.Predict(X)
	require.NoError(t, err)
	second, err := ols.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	coef, intercept := ols.Coefficients()
	assert.InDeltaSlice(t, []float64{0.5, 1, 1.5, 2}, coef, 0.01)
	assert.InDelta(t, 1.0, intercept[0], 0.01)
}

func TestOLS_SetCoefficientsFeatureCount(t *testing.T) {
	ols := NewOrdinaryLeastSquares()
	require.NoError(t, ols.SetCoefficients([]float64{1, 2}, 0))
	assert.True(t, ols.IsFitted())
	assert.Equal(t, 2, ols.NFeatures())

	err := ols.SetCoefficients([]float64{1}, 0)
	var dim *errors.DimensionError
	assert.True(t, errors.As(err, &dim))
	assert.Equal(t, 2, ols.NFeatures())
}

func TestNewEstimator(t *testing.T) {
	cfg := config.Default()

	est, err := NewEstimator("", cfg)
	require.NoError(t, err)
	assert.IsType(t, &OrdinaryLeastSquares{}, est)

	est, err = NewEstimator(config.KindSGD, cfg)
	require.NoError(t, err)
	assert.IsType(t, &SGDRegressor{}, est)
	assert.Equal(t, "squared_error", est.Loss())

	_, err = NewEstimator("ridge", cfg)
	var ve *errors.ValueError
	assert.True(t, errors.As(err, &ve))

	assert.Equal(t, []string{"ols", "sgd"}, Kinds())
}

// emptyCols is an n×cols matrix of zeros; it allows shapes mat.Dense refuses.
type emptyCols struct {
	rows, cols int
}

func (e *emptyCols) Dims() (int, int)    { return e.rows, e.cols }
func (e *emptyCols) At(_, _ int) float64 { return 0 }
func (e *emptyCols) T() mat.Matrix       { return mat.Transpose{Matrix: e} }
