// Package linear は線形回帰の Estimator 実装を提供します。
//
// 二つの実装があります:
//   - OrdinaryLeastSquares: 薄い SVD による最小二乗解（最小ノルム解）
//   - SGDRegressor: 二乗誤差 + L2 正則化の確率的勾配降下法
//
// どちらも model.Estimator を満たし、NewEstimator で名前から生成できます。
package linear

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/linbridge/config"
	"github.com/YuminosukeSato/linbridge/core/model"
	"github.com/YuminosukeSato/linbridge/core/parallel"
	"github.com/YuminosukeSato/linbridge/pkg/errors"
)

// NewEstimator は kind で指定された実装を cfg のハイパーパラメータで生成する。
// kind が空文字列なら cfg.Estimator を使う。
func NewEstimator(kind string, cfg config.Config) (model.Estimator, error) {
	if kind == "" {
		kind = cfg.Estimator
	}
	switch kind {
	case config.KindOLS:
		return NewOrdinaryLeastSquares(OLSOptions(cfg.OLS)...), nil
	case config.KindSGD:
		return NewSGDRegressor(SGDOptions(cfg.SGD)...), nil
	default:
		return nil, errors.NewValueError("linear.NewEstimator", fmt.Sprintf("unknown estimator kind %q", kind))
	}
}

// Kinds は NewEstimator が受け付ける名前の一覧
func Kinds() []string {
	return []string{config.KindOLS, config.KindSGD}
}

// validateXY は Fit の入力形状と数値の健全性を検証する
func validateXY(op string, X mat.Matrix, y []float64) (n, k int, err error) {
	n, k = X.Dims()
	if n != len(y) {
		return n, k, errors.NewDimensionError(op, n, len(y), 0)
	}
	if err := errors.CheckNumericalStability(op, y, 0); err != nil {
		return n, k, err
	}
	return n, k, nil
}

// predictRows は y = X·coef + intercept を行ごとに計算する。
// 行数が threshold を超える場合は並列に処理する。
func predictRows(X mat.Matrix, coef []float64, intercept float64, threshold int) []float64 {
	n, k := X.Dims()
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if k == 0 {
		for i := range out {
			out[i] = intercept
		}
		return out
	}

	parallel.ParallelizeWithThreshold(n, threshold, func(start, end int) {
		row := make([]float64, k)
		for i := start; i < end; i++ {
			mat.Row(row, i, X)
			out[i] = floats.Dot(coef, row) + intercept
		}
	})
	return out
}

func cloneFloats(src []float64) []float64 {
	if src == nil {
		return nil
	}
	dst := make([]float64, len(src))
	copy(dst, src)
	return dst
}
