package linear

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/linbridge/config"
	"github.com/YuminosukeSato/linbridge/core/model"
	"github.com/YuminosukeSato/linbridge/core/parallel"
	"github.com/YuminosukeSato/linbridge/pkg/errors"
	"github.com/YuminosukeSato/linbridge/pkg/log"
)

const sgdName = "SGDRegressor"

// maxDLoss は勾配爆発を防ぐための dloss のクリップ幅
const maxDLoss = 1e12

// SGDRegressor は確率的勾配降下法による線形回帰モデル
// scikit-learn の SGDRegressor(loss="squared_error", penalty="l2") と同じ更新則を使う
type SGDRegressor struct {
	state *model.StateManager

	// ハイパーパラメータ
	fitIntercept  bool
	alpha         float64 // L2 正則化の強さ
	learningRate  string  // "constant" または "invscaling"
	eta0          float64 // 初期学習率
	powerT        float64 // invscaling の指数
	maxIter       int     // 最大エポック数
	tol           float64 // 早期停止の許容誤差（負で無効）
	nIterNoChange int     // 改善なしで許容するエポック数
	shuffle       bool
	randomState   uint64

	// 学習パラメータ
	coef      []float64
	intercept []float64 // 長さ 1

	// 学習状態
	nIter int   // 直近の Fit で実行したエポック数
	t     int64 // 総ステップ数
}

// NewSGDRegressor は新しい SGDRegressor を作成する
func NewSGDRegressor(opts ...SGDOption) *SGDRegressor {
	s := &SGDRegressor{
		state:         model.NewStateManager(),
		fitIntercept:  true,
		alpha:         1e-4,
		learningRate:  config.LearningRateInvScaling,
		eta0:          0.01,
		powerT:        0.25,
		maxIter:       10000,
		tol:           1e-3,
		nIterNoChange: 5,
		shuffle:       true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fit は重みを 0 から学習し直す。失敗時は以前の状態を保持する。
func (s *SGDRegressor) Fit(X mat.Matrix, y []float64) error {
	const op = sgdName + ".Fit"

	n, k, err := validateXY(op, X, y)
	if err != nil {
		return err
	}
	if err := s.state.CheckFeatures(op, k); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	if s.maxIter < 1 || s.eta0 <= 0 {
		return errors.NewValueError(op, "max_iter must be >= 1 and eta0 must be > 0")
	}

	// X を一度だけ行単位に展開する（エポックごとの At 呼び出しを避ける）
	rows := make([][]float64, n)
	parallel.ParallelizeWithThreshold(n, parallel.DefaultRowThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			rows[i] = mat.Row(nil, i, X)
		}
	})

	coef := make([]float64, k)
	intercept := 0.0
	t := int64(1)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewPCG(s.randomState, s.randomState^0x9e3779b97f4a7c15))

	bestLoss := math.Inf(1)
	noImprovement := 0
	epoch := 0
	converged := false

	for epoch < s.maxIter {
		if s.shuffle {
			rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		sumLoss := 0.0
		for _, i := range order {
			xi := rows[i]
			p := floats.Dot(coef, xi) + intercept
			eta := s.eta(t)

			r := p - y[i]
			sumLoss += 0.5 * r * r
			dloss := errors.ClipValue(r, -maxDLoss, maxDLoss)
			update := -eta * dloss

			if s.alpha > 0 {
				floats.Scale(math.Max(0, 1-eta*s.alpha), coef)
			}
			floats.AddScaled(coef, update, xi)
			if s.fitIntercept {
				intercept += update
			}
			t++
		}
		epoch++

		if err := errors.CheckNumericalStability(op, coef, epoch); err != nil {
			return err
		}
		if err := errors.CheckScalar(op, intercept, epoch); err != nil {
			return err
		}

		if s.tol >= 0 {
			if sumLoss > bestLoss-s.tol*float64(n) {
				noImprovement++
			} else {
				noImprovement = 0
			}
			if sumLoss < bestLoss {
				bestLoss = sumLoss
			}
			if noImprovement >= s.nIterNoChange {
				converged = true
				break
			}
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning(sgdName, epoch, "Maximum number of iterations reached before convergence. Consider increasing max_iter."))
	}

	log.GetLogger().Debug("sgd fit finished",
		log.ModelNameKey, sgdName,
		log.SamplesKey, n,
		log.FeaturesKey, k,
		log.IterationKey, epoch,
		log.LearningRateKey, s.eta(t),
		log.LossKey, bestLoss,
	)

	s.coef = coef
	s.intercept = []float64{intercept}
	s.nIter = epoch
	s.t = t
	s.state.Commit(k, n)
	return nil
}

// eta は t ステップ目の学習率を返す
func (s *SGDRegressor) eta(t int64) float64 {
	if s.learningRate == config.LearningRateConstant {
		return s.eta0
	}
	return s.eta0 / math.Pow(float64(t), s.powerT)
}

// Predict は入力データに対する予測を行う
func (s *SGDRegressor) Predict(X mat.Matrix) ([]float64, error) {
	if err := s.state.RequireFitted(sgdName, "Predict"); err != nil {
		return nil, err
	}
	_, k := X.Dims()
	if k != s.state.NFeatures() {
		return nil, errors.NewDimensionError(sgdName+".Predict", s.state.NFeatures(), k, 1)
	}
	return predictRows(X, s.coef, s.intercept[0], parallel.DefaultRowThreshold), nil
}

// Coefficients は係数と切片ベクトルのコピーを返す
func (s *SGDRegressor) Coefficients() ([]float64, []float64) {
	if !s.state.IsFitted() {
		return []float64{}, nil
	}
	return cloneFloats(s.coef), cloneFloats(s.intercept)
}

// SetCoefficients は係数と切片を上書きし、学習済み状態にする
func (s *SGDRegressor) SetCoefficients(coef []float64, intercept float64) error {
	const op = sgdName + ".SetCoefficients"
	if err := s.state.CheckFeatures(op, len(coef)); err != nil {
		return err
	}
	s.coef = cloneFloats(coef)
	if s.coef == nil {
		s.coef = []float64{}
	}
	s.intercept = []float64{intercept}
	s.state.Commit(len(coef), s.state.NSamples())
	return nil
}

// Loss は損失関数名を返す
func (s *SGDRegressor) Loss() string {
	return model.LossSquaredError
}

// IsFitted はモデルが学習済みかどうかを返す
func (s *SGDRegressor) IsFitted() bool {
	return s.state.IsFitted()
}

// NFeatures は特徴量数を返す
func (s *SGDRegressor) NFeatures() int {
	return s.state.NFeatures()
}

// NIter は直近の Fit で実行したエポック数を返す
func (s *SGDRegressor) NIter() int {
	return s.nIter
}

var _ model.Estimator = (*SGDRegressor)(nil)
