package linear

import (
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/linbridge/pkg/errors"
)

// createBenchmarkData はベンチマーク用のデータを生成する
// y = 1 + Σ (j+1)*0.5*x_j + 小さなノイズ
func createBenchmarkData(rows, cols int) (*mat.Dense, []float64) {
	// シードを固定して再現性を確保
	rng := rand.New(rand.NewPCG(42, 42))

	X := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			// -1.0 から 1.0 の範囲のランダムな値
			X.Set(i, j, rng.Float64()*2.0-1.0)
		}
	}

	trueWeights := make([]float64, cols)
	for j := range trueWeights {
		trueWeights[j] = float64(j+1) * 0.5
	}

	y := make([]float64, rows)
	for i := range y {
		sum := 1.0 // 切片
		for j := 0; j < cols; j++ {
			sum += X.At(i, j) * trueWeights[j]
		}
		sum += (rng.Float64() - 0.5) * 0.1
		y[i] = sum
	}

	return X, y
}

// BenchmarkOLSFit はFitメソッドのベンチマークを実行する
func BenchmarkOLSFit(b *testing.B) {
	sizes := []struct {
		name string
		rows int
		cols int
	}{
		{"Small_100x10", 100, 10},
		{"Small_500x10", 500, 10},
		{"Medium_1000x10", 1000, 10}, // 並列処理の閾値
		{"Medium_2000x10", 2000, 10},
		{"Large_5000x20", 5000, 20},
		{"Large_10000x20", 10000, 20},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			X, y := createBenchmarkData(size.rows, size.cols)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				ols := NewOrdinaryLeastSquares()
				if err := ols.Fit(X, y); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkOLSFitSequential は閾値を上げて逐次処理のみを測定する（比較用）
func BenchmarkOLSFitSequential(b *testing.B) {
	sizes := []struct {
		name string
		rows int
		cols int
	}{
		{"Sequential_2000x10", 2000, 10},
		{"Sequential_10000x20", 10000, 20},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			X, y := createBenchmarkData(size.rows, size.cols)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				ols := NewOrdinaryLeastSquares(WithParallelThreshold(size.rows))
				if err := ols.Fit(X, y); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkPredict は予測部分のみのベンチマーク
func BenchmarkPredict(b *testing.B) {
	sizes := []struct {
		name string
		rows int
		cols int
	}{
		{"Predict_1000x10", 1000, 10},
		{"Predict_10000x20", 10000, 20},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			X, y := createBenchmarkData(size.rows, size.cols)
			ols := NewOrdinaryLeastSquares()
			if err := ols.Fit(X, y); err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := ols.Predict(X); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkSGDFit は SGDRegressor の学習を測定する
func BenchmarkSGDFit(b *testing.B) {
	errors.SetWarningHandler(func(error) {})

	X, y := createBenchmarkData(1000, 10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sgd := NewSGDRegressor(WithMaxIter(100), WithRandomState(1))
		if err := sgd.Fit(X, y); err != nil {
			b.Fatal(err)
		}
	}
}
