// Package telemetry records per-call boundary metrics with the Prometheus
// client library and renders them in the text exposition format.
//
// A nil *Metrics is valid and records nothing.
package telemetry

import (
	"bytes"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/YuminosukeSato/linbridge/pkg/errors"
)

// Metrics holds the collectors for one boundary instance.
type Metrics struct {
	reg *prometheus.Registry

	liveModels   prometheus.Gauge
	calls        *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
}

// New registers the collectors on reg. A nil reg gets a fresh private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		reg: reg,
		liveModels: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "linreg_models_live",
			Help: "Number of model handles currently registered",
		}),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linreg_calls_total",
			Help: "Boundary calls by operation and status",
		}, []string{"op", "status"}),
		callDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "linreg_call_duration_seconds",
			Help:    "Latency of boundary calls",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"op"}),
	}
	reg.MustRegister(m.liveModels, m.calls, m.callDuration)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// OnLiveModels records the current number of registered handles.
func (m *Metrics) OnLiveModels(n int) {
	if m == nil {
		return
	}
	m.liveModels.Set(float64(n))
}

// OnCall records one boundary call.
func (m *Metrics) OnCall(op, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(op, status).Inc()
	m.callDuration.WithLabelValues(op).Observe(d.Seconds())
}

// WriteText writes every gathered family in the Prometheus text format.
func (m *Metrics) WriteText(w io.Writer) error {
	if m == nil {
		return nil
	}
	families, err := m.reg.Gather()
	if err != nil {
		return errors.Wrap(err, "telemetry: gather")
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return errors.Wrapf(err, "telemetry: encode %s", mf.GetName())
		}
	}
	return nil
}

// Text returns WriteText's output as a string.
func (m *Metrics) Text() (string, error) {
	var buf bytes.Buffer
	if err := m.WriteText(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
