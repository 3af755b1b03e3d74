package linear

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/linbridge/core/model"
	"github.com/YuminosukeSato/linbridge/core/parallel"
	"github.com/YuminosukeSato/linbridge/pkg/errors"
)

const olsName = "OrdinaryLeastSquares"

// OrdinaryLeastSquares は最小二乗法による線形回帰モデル
//
// 切片を学習する場合は X と y を中心化してから、薄い SVD で
// min ||Xc·w - yc|| を解く。ランク落ちや n < k の場合は最小ノルム解になる。
type OrdinaryLeastSquares struct {
	state *model.StateManager

	// ハイパーパラメータ
	fitIntercept      bool
	rcond             float64
	parallelThreshold int

	// 学習パラメータ
	coef      []float64
	intercept float64
	rank      int
}

// NewOrdinaryLeastSquares は新しい最小二乗モデルを作成する
func NewOrdinaryLeastSquares(opts ...Option) *OrdinaryLeastSquares {
	o := &OrdinaryLeastSquares{
		state:             model.NewStateManager(),
		fitIntercept:      true,
		rcond:             1e-12,
		parallelThreshold: parallel.DefaultRowThreshold,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Fit はモデルを訓練データで学習させる。失敗時は以前の状態を保持する。
func (o *OrdinaryLeastSquares) Fit(X mat.Matrix, y []float64) error {
	const op = olsName + ".Fit"

	n, k, err := validateXY(op, X, y)
	if err != nil {
		return err
	}
	if err := o.state.CheckFeatures(op, k); err != nil {
		return err
	}
	if n == 0 {
		// 空の入力からは何も学習しない
		return nil
	}

	xMean := make([]float64, k)
	var yMean float64
	if o.fitIntercept {
		o.columnMeans(X, xMean)
		yMean = stat.Mean(y, nil)
	}

	coef := make([]float64, k)
	rank := 0
	if k > 0 {
		// 中心化した計画行列 Xc と yc
		A := mat.NewDense(n, k, nil)
		parallel.ParallelizeWithThreshold(n, o.parallelThreshold, func(start, end int) {
			for i := start; i < end; i++ {
				for j := 0; j < k; j++ {
					A.Set(i, j, X.At(i, j)-xMean[j])
				}
			}
		})
		b := mat.NewDense(n, 1, nil)
		for i, v := range y {
			b.Set(i, 0, v-yMean)
		}

		var svd mat.SVD
		if ok := svd.Factorize(A, mat.SVDThin); !ok {
			return errors.NewModelError(op, "SVD factorization failed", errors.ErrSingularMatrix)
		}
		rank = svd.Rank(o.rcond)
		if rank > 0 {
			var w mat.Dense
			svd.SolveTo(&w, b, rank)
			for j := range coef {
				coef[j] = w.At(j, 0)
			}
		}
	}

	intercept := 0.0
	if o.fitIntercept {
		intercept = yMean - floats.Dot(xMean, coef)
	}

	if err := errors.CheckNumericalStability(op, coef, 0); err != nil {
		return err
	}
	if err := errors.CheckScalar(op, intercept, 0); err != nil {
		return err
	}

	o.coef = coef
	o.intercept = intercept
	o.rank = rank
	o.state.Commit(k, n)
	return nil
}

// columnMeans は X の列平均を dst に書き込む
func (o *OrdinaryLeastSquares) columnMeans(X mat.Matrix, dst []float64) {
	n, k := X.Dims()
	col := make([]float64, n)
	for j := 0; j < k; j++ {
		mat.Col(col, j, X)
		dst[j] = stat.Mean(col, nil)
	}
}

// Predict は入力データに対する予測を行う
func (o *OrdinaryLeastSquares) Predict(X mat.Matrix) ([]float64, error) {
	if err := o.state.RequireFitted(olsName, "Predict"); err != nil {
		return nil, err
	}
	_, k := X.Dims()
	if k != o.state.NFeatures() {
		return nil, errors.NewDimensionError(olsName+".Predict", o.state.NFeatures(), k, 1)
	}
	return predictRows(X, o.coef, o.intercept, o.parallelThreshold), nil
}

// Coefficients は係数と切片（長さ 1）のコピーを返す
func (o *OrdinaryLeastSquares) Coefficients() ([]float64, []float64) {
	if !o.state.IsFitted() {
		return []float64{}, nil
	}
	return cloneFloats(o.coef), []float64{o.intercept}
}

// SetCoefficients は係数と切片を上書きし、学習済み状態にする
func (o *OrdinaryLeastSquares) SetCoefficients(coef []float64, intercept float64) error {
	const op = olsName + ".SetCoefficients"
	if err := o.state.CheckFeatures(op, len(coef)); err != nil {
		return err
	}
	o.coef = cloneFloats(coef)
	if o.coef == nil {
		o.coef = []float64{}
	}
	o.intercept = intercept
	o.state.Commit(len(coef), o.state.NSamples())
	return nil
}

// Loss は損失関数名を返す
func (o *OrdinaryLeastSquares) Loss() string {
	return model.LossSquaredError
}

// IsFitted はモデルが学習済みかどうかを返す
func (o *OrdinaryLeastSquares) IsFitted() bool {
	return o.state.IsFitted()
}

// NFeatures は特徴量数を返す
func (o *OrdinaryLeastSquares) NFeatures() int {
	return o.state.NFeatures()
}

// Rank は直近の学習で使われた計画行列の数値ランクを返す
func (o *OrdinaryLeastSquares) Rank() int {
	return o.rank
}

var _ model.Estimator = (*OrdinaryLeastSquares)(nil)
