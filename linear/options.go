package linear

import "github.com/YuminosukeSato/linbridge/config"

// Option は OrdinaryLeastSquares を設定する関数
type Option func(*OrdinaryLeastSquares)

// WithFitIntercept は切片を学習するかどうかを設定する
func WithFitIntercept(fit bool) Option {
	return func(o *OrdinaryLeastSquares) {
		o.fitIntercept = fit
	}
}

// WithRcond は特異値を 0 とみなす相対閾値を設定する
func WithRcond(rcond float64) Option {
	return func(o *OrdinaryLeastSquares) {
		o.rcond = rcond
	}
}

// WithParallelThreshold は行ループを並列化する行数の閾値を設定する
func WithParallelThreshold(rows int) Option {
	return func(o *OrdinaryLeastSquares) {
		o.parallelThreshold = rows
	}
}

// OLSOptions は設定ファイルの値を Option 列に変換する
func OLSOptions(cfg config.OLSConfig) []Option {
	return []Option{
		WithFitIntercept(cfg.FitIntercept),
		WithRcond(cfg.Rcond),
		WithParallelThreshold(cfg.ParallelThreshold),
	}
}

// SGDOption は SGDRegressor を設定する関数
type SGDOption func(*SGDRegressor)

// WithSGDFitIntercept は切片を学習するかどうかを設定する
func WithSGDFitIntercept(fit bool) SGDOption {
	return func(s *SGDRegressor) {
		s.fitIntercept = fit
	}
}

// WithAlpha は L2 正則化の強さを設定する
func WithAlpha(alpha float64) SGDOption {
	return func(s *SGDRegressor) {
		s.alpha = alpha
	}
}

// WithLearningRate は学習率スケジュール（"constant" または "invscaling"）を設定する
func WithLearningRate(schedule string) SGDOption {
	return func(s *SGDRegressor) {
		s.learningRate = schedule
	}
}

// WithEta0 は初期学習率を設定する
func WithEta0(eta0 float64) SGDOption {
	return func(s *SGDRegressor) {
		s.eta0 = eta0
	}
}

// WithPowerT は invscaling の指数を設定する
func WithPowerT(powerT float64) SGDOption {
	return func(s *SGDRegressor) {
		s.powerT = powerT
	}
}

// WithMaxIter は最大エポック数を設定する
func WithMaxIter(n int) SGDOption {
	return func(s *SGDRegressor) {
		s.maxIter = n
	}
}

// WithTol は早期停止の許容誤差を設定する。負の値で早期停止を無効にする。
func WithTol(tol float64) SGDOption {
	return func(s *SGDRegressor) {
		s.tol = tol
	}
}

// WithNIterNoChange は改善なしで許容するエポック数を設定する
func WithNIterNoChange(n int) SGDOption {
	return func(s *SGDRegressor) {
		s.nIterNoChange = n
	}
}

// WithShuffle は各エポックでサンプル順をシャッフルするかを設定する
func WithShuffle(shuffle bool) SGDOption {
	return func(s *SGDRegressor) {
		s.shuffle = shuffle
	}
}

// WithRandomState はシャッフル用の乱数シードを設定する
func WithRandomState(seed uint64) SGDOption {
	return func(s *SGDRegressor) {
		s.randomState = seed
	}
}

// SGDOptions は設定ファイルの値を SGDOption 列に変換する
func SGDOptions(cfg config.SGDConfig) []SGDOption {
	return []SGDOption{
		WithSGDFitIntercept(cfg.FitIntercept),
		WithAlpha(cfg.Alpha),
		WithLearningRate(cfg.LearningRate),
		WithEta0(cfg.Eta0),
		WithPowerT(cfg.PowerT),
		WithMaxIter(cfg.MaxIter),
		WithTol(cfg.Tol),
		WithNIterNoChange(cfg.NIterNoChange),
		WithShuffle(cfg.Shuffle),
		WithRandomState(cfg.RandomState),
	}
}
