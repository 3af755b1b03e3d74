package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/linbridge/pkg/errors"
)

func TestMSE(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{"perfect prediction", []float64{1, 2, 3, 4, 5}, []float64{1, 2, 3, 4, 5}, 0, false},
		{"simple case", []float64{1, 2, 3, 4}, []float64{1.5, 2.5, 2.5, 3.5}, 0.25, false},
		{"larger errors", []float64{10, 20, 30}, []float64{12, 18, 33}, 17.0 / 3.0, false},
		{"dimension mismatch", []float64{1, 2, 3}, []float64{1, 2}, 0, true},
		{"empty vectors", nil, nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MSE(tt.yTrue, tt.yPred)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-10)
		})
	}
}

func TestRMSEAndMAE(t *testing.T) {
	yTrue := []float64{10, 20, 30}
	yPred := []float64{12, 18, 33}

	rmse, err := RMSE(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(17.0/3.0), rmse, 1e-12)

	mae, err := MAE(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 7.0/3.0, mae, 1e-12)

	_, err = MAE([]float64{1}, []float64{1, 2})
	var dim *errors.DimensionError
	assert.True(t, errors.As(err, &dim))
}

func TestR2Score(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{"perfect prediction", []float64{1, 2, 3}, []float64{1, 2, 3}, 1, false},
		// mean 2, TSS 2, RSS 0.5
		{"partial fit", []float64{1, 2, 3}, []float64{1.5, 2, 2.5}, 0.75, false},
		{"predicting the mean", []float64{1, 2, 3}, []float64{2, 2, 2}, 0, false},
		{"worse than the mean", []float64{1, 2, 3}, []float64{3, 2, 1}, -3, false},
		{"no variance", []float64{4, 4, 4}, []float64{4, 4, 4}, 0, true},
		{"empty", []float64{}, []float64{}, 0, true},
		{"mismatch", []float64{1, 2}, []float64{1}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := R2Score(tt.yTrue, tt.yPred)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}
