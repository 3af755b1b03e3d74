package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる。
	// X は n×k 行列、y は長さ n のターゲットベクトル。
	Fit(X mat.Matrix, y []float64) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は X の各行に対する予測値を返す
	Predict(X mat.Matrix) ([]float64, error)
}

// LinearModel は係数ベクトルと切片を持つ線形モデルのインターフェース
type LinearModel interface {
	// Coefficients は学習された係数と切片のコピーを返す。
	// 未学習のモデルでは空の係数と nil の切片を返す。
	Coefficients() (coef []float64, intercept []float64)

	// SetCoefficients は係数と切片を直接上書きし、学習済み状態にする
	SetCoefficients(coef []float64, intercept float64) error

	// Loss は損失関数名を返す
	Loss() string
}

// Estimator はレジストリが所有する回帰モデルの能力セット
type Estimator interface {
	Fitter
	Predictor
	LinearModel

	// IsFitted はモデルが学習済みかどうかを返す
	IsFitted() bool

	// NFeatures は確定した特徴量数を返す（未確定なら 0）
	NFeatures() int
}

// LossSquaredError は二乗誤差損失の名前
const LossSquaredError = "squared_error"
