package telemetry

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(nil)

	m.OnCall("fit", "ok", 3*time.Millisecond)
	m.OnCall("fit", "ok", time.Millisecond)
	m.OnCall("predict", "not_fitted", time.Microsecond)
	m.OnLiveModels(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.calls.WithLabelValues("fit", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calls.WithLabelValues("predict", "not_fitted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.liveModels))
	assert.Equal(t, 2, testutil.CollectAndCount(m.callDuration))

	expected := `
# HELP linreg_models_live Number of model handles currently registered
# TYPE linreg_models_live gauge
linreg_models_live 2
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "linreg_models_live"))
}

func TestMetrics_WriteText(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.OnCall("get_params", "ok", time.Millisecond)

	text, err := m.Text()
	require.NoError(t, err)
	assert.Contains(t, text, "# TYPE linreg_calls_total counter")
	assert.Contains(t, text, `linreg_calls_total{op="get_params",status="ok"} 1`)
	assert.Contains(t, text, `linreg_call_duration_seconds_count{op="get_params"} 1`)
	assert.Contains(t, text, "linreg_models_live 0")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.OnCall("fit", "ok", time.Second)
	m.OnLiveModels(3)
	assert.Nil(t, m.Registry())

	text, err := m.Text()
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestMetrics_DurationHistogram(t *testing.T) {
	m := New(nil)
	m.OnCall("fit", "ok", 2*time.Millisecond)
	m.OnCall("fit", "shape_mismatch", 4*time.Millisecond)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	var hist *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == "linreg_call_duration_seconds" {
			hist = mf
		}
	}
	require.NotNil(t, hist)
	assert.Equal(t, dto.MetricType_HISTOGRAM, hist.GetType())
	require.Len(t, hist.GetMetric(), 1, "status is not a duration label")

	h := hist.GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(2), h.GetSampleCount())
	assert.InDelta(t, 0.006, h.GetSampleSum(), 1e-9)
}
