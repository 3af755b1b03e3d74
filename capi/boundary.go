// Package capi implements the boundary operations behind the exported C
// symbols in cmd/liblinreg, in plain Go so they can be tested without cgo.
//
// Every operation converts foreign buffer descriptors into views at entry,
// resolves the handle through the registry, runs the estimator and writes
// results back through a view or the parameter codec. Failures become a
// negative Status; the message of the most recent failure is kept for
// LastError. No panic escapes an operation.
package capi

import (
	"fmt"
	"sync"
	"time"

	"github.com/YuminosukeSato/linbridge/config"
	"github.com/YuminosukeSato/linbridge/core/model"
	"github.com/YuminosukeSato/linbridge/core/view"
	"github.com/YuminosukeSato/linbridge/linear"
	"github.com/YuminosukeSato/linbridge/metrics"
	"github.com/YuminosukeSato/linbridge/params"
	"github.com/YuminosukeSato/linbridge/pkg/errors"
	"github.com/YuminosukeSato/linbridge/pkg/log"
	"github.com/YuminosukeSato/linbridge/pkg/telemetry"
	"github.com/YuminosukeSato/linbridge/registry"
)

// Handle is the opaque model identifier handed to the host.
type Handle = registry.Handle

// Boundary is one instance of the exported API with its own registry.
type Boundary struct {
	cfg      config.Config
	registry *registry.Registry
	logger   log.Logger
	metrics  *telemetry.Metrics

	errMu   sync.Mutex
	lastErr string
}

// Option configures a Boundary.
type Option func(*Boundary)

// WithLogger sets the logger for boundary and registry events.
func WithLogger(l log.Logger) Option {
	return func(b *Boundary) {
		b.logger = l
	}
}

// WithTelemetry records call counts, latencies and live models in m.
func WithTelemetry(m *telemetry.Metrics) Option {
	return func(b *Boundary) {
		b.metrics = m
	}
}

// New creates a Boundary whose models are built from cfg.
func New(cfg config.Config, opts ...Option) *Boundary {
	b := &Boundary{
		cfg:    cfg,
		logger: log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.registry = registry.New(
		func(kind string) (model.Estimator, error) {
			return linear.NewEstimator(kind, b.cfg)
		},
		registry.WithLogger(b.logger.With(log.ComponentKey, "registry")),
		registry.WithTelemetry(b.metrics),
	)
	return b
}

// Registry exposes the underlying registry for diagnostics.
func (b *Boundary) Registry() *registry.Registry {
	return b.registry
}

// NewModel registers a fresh estimator of the configured default kind.
// It returns 0 only if the configuration itself is unusable.
func (b *Boundary) NewModel() Handle {
	h, _ := b.NewModelKind("")
	return h
}

// NewModelKind registers a fresh estimator of the named kind.
func (b *Boundary) NewModelKind(kind string) (Handle, Status) {
	var h Handle
	st := b.call(log.OperationNewModel, 0, func() error {
		var err error
		h, err = b.registry.Create(kind)
		return err
	})
	return h, st
}

// DeleteModel removes h. Unknown handles are ignored.
func (b *Boundary) DeleteModel(h Handle) {
	b.call(log.OperationDeleteModel, h, func() error {
		b.registry.Delete(h)
		return nil
	})
}

// Fit trains h on the rows of x against the flattened y.
func (b *Boundary) Fit(h Handle, x, y view.Descriptor) Status {
	return b.call(log.OperationFit, h, func() error {
		xv, err := view.LittleEndian(x)
		if err != nil {
			return err
		}
		yv, err := view.LittleEndian(y)
		if err != nil {
			return err
		}
		target := yv.Flatten()

		return b.registry.With(log.OperationFit, h, func(est model.Estimator) error {
			if err := est.Fit(xv, target); err != nil {
				return err
			}
			coef, intercept := est.Coefficients()
			b.logger.Debug("model fitted",
				log.HandleKey, uint64(h),
				log.SamplesKey, x.Rows,
				log.FeaturesKey, x.Cols,
				"coef", coef,
				"intercept", intercept,
			)
			return nil
		})
	})
}

// Predict writes one prediction per row of x into out, which must hold
// exactly rows(x) elements. out is overwritten in place.
func (b *Boundary) Predict(out view.Descriptor, h Handle, x view.Descriptor) Status {
	return b.call(log.OperationPredict, h, func() error {
		xv, err := view.LittleEndian(x)
		if err != nil {
			return err
		}
		ov, err := view.LittleEndian(out)
		if err != nil {
			return err
		}

		return b.registry.With(log.OperationPredict, h, func(est model.Estimator) error {
			if ov.Len() != x.Rows {
				return errors.NewDimensionError(log.OperationPredict, x.Rows, ov.Len(), 0)
			}
			pred, err := est.Predict(xv)
			if err != nil {
				return err
			}
			return ov.WriteVector(pred)
		})
	})
}

// GetParams returns the JSON parameter payload of h.
func (b *Boundary) GetParams(h Handle) ([]byte, Status) {
	var text []byte
	st := b.call(log.OperationGetParams, h, func() error {
		return b.registry.With(log.OperationGetParams, h, func(est model.Estimator) error {
			var err error
			text, err = params.Encode(est)
			return err
		})
	})
	return text, st
}

// GetParamsInto copies the payload of h into dst as a null-terminated string.
// needed is the required size including the terminator; when it exceeds
// len(dst) nothing is written and StatusBufferTooSmall is returned.
func (b *Boundary) GetParamsInto(h Handle, dst []byte) (needed int, st Status) {
	text, st := b.GetParams(h)
	if st != StatusOK {
		return 0, st
	}
	needed, err := CopyCString(dst, text)
	if err != nil {
		return needed, b.fail(log.OperationGetParams, h, err)
	}
	return needed, StatusOK
}

// SetParams decodes text and installs it on h.
func (b *Boundary) SetParams(h Handle, text string) Status {
	return b.call(log.OperationSetParams, h, func() error {
		p, err := params.Decode([]byte(text))
		if err != nil {
			return err
		}
		return b.registry.With(log.OperationSetParams, h, func(est model.Estimator) error {
			return params.Apply(est, p)
		})
	})
}

// Score returns the coefficient of determination of h on (x, y).
func (b *Boundary) Score(h Handle, x, y view.Descriptor) (float64, Status) {
	var r2 float64
	st := b.call(log.OperationScore, h, func() error {
		xv, err := view.LittleEndian(x)
		if err != nil {
			return err
		}
		yv, err := view.LittleEndian(y)
		if err != nil {
			return err
		}
		target := yv.Flatten()
		if len(target) != x.Rows {
			return errors.NewDimensionError(log.OperationScore, x.Rows, len(target), 0)
		}

		return b.registry.With(log.OperationScore, h, func(est model.Estimator) error {
			pred, err := est.Predict(xv)
			if err != nil {
				return err
			}
			r2, err = metrics.R2Score(target, pred)
			return err
		})
	})
	return r2, st
}

// SaveParams writes the payload of h to path.
func (b *Boundary) SaveParams(h Handle, path string) Status {
	return b.call(log.OperationSaveParams, h, func() error {
		return b.registry.With(log.OperationSaveParams, h, func(est model.Estimator) error {
			if err := params.SaveFile(path, est); err != nil {
				return err
			}
			b.logger.Info("parameters saved", log.HandleKey, uint64(h), log.PathKey, path)
			return nil
		})
	})
}

// LoadParams reads the payload stored at path and installs it on h.
func (b *Boundary) LoadParams(h Handle, path string) Status {
	return b.call(log.OperationLoadParams, h, func() error {
		// resolve first so an unknown handle wins over a missing file
		if _, err := b.registry.Get(log.OperationLoadParams, h); err != nil {
			return err
		}
		p, err := params.LoadFile(path)
		if err != nil {
			return err
		}
		return b.registry.With(log.OperationLoadParams, h, func(est model.Estimator) error {
			if err := params.Apply(est, p); err != nil {
				return err
			}
			b.logger.Info("parameters loaded", log.HandleKey, uint64(h), log.PathKey, path)
			return nil
		})
	})
}

// MetricsText renders the boundary metrics in the Prometheus text format.
func (b *Boundary) MetricsText() (string, Status) {
	text, err := b.metrics.Text()
	if err != nil {
		return "", b.fail("metrics_text", 0, err)
	}
	return text, StatusOK
}

// LastError returns the message of the most recent failed call, or "" if no
// call has failed yet. Successful calls do not clear it.
func (b *Boundary) LastError() string {
	b.errMu.Lock()
	defer b.errMu.Unlock()
	return b.lastErr
}

// MetricsTextInto copies the metrics exposition into dst with the same
// sizing contract as GetParamsInto.
func (b *Boundary) MetricsTextInto(dst []byte) (needed int, st Status) {
	text, st := b.MetricsText()
	if st != StatusOK {
		return 0, st
	}
	needed, err := CopyCString(dst, []byte(text))
	if err != nil {
		return needed, b.fail("metrics_text", 0, err)
	}
	return needed, StatusOK
}

// LastErrorInto copies the last error message into dst, truncating it to fit.
// Truncation returns StatusBufferTooSmall but does not replace the message.
func (b *Boundary) LastErrorInto(dst []byte) Status {
	if len(dst) == 0 {
		return StatusBufferTooSmall
	}
	msg := b.LastError()
	if _, err := CopyCString(dst, []byte(msg)); err != nil {
		n := copy(dst[:len(dst)-1], msg)
		dst[n] = 0
		return StatusBufferTooSmall
	}
	return StatusOK
}

// NullArgument records a null pointer passed for the named argument.
func (b *Boundary) NullArgument(op, name string) Status {
	return b.fail(op, 0, errors.NewValueError(op, fmt.Sprintf("%s must not be null", name)))
}

// call runs fn with panic recovery, maps its error to a Status and records
// metrics for op.
func (b *Boundary) call(op string, h Handle, fn func() error) Status {
	start := time.Now()
	err := errors.SafeExecute(op, fn)
	st := StatusOK
	if err != nil {
		st = b.fail(op, h, err)
	}
	b.metrics.OnCall(op, st.String(), time.Since(start))
	return st
}

func (b *Boundary) fail(op string, h Handle, err error) Status {
	st := StatusOf(err)

	b.errMu.Lock()
	b.lastErr = err.Error()
	b.errMu.Unlock()

	fields := []any{
		err,
		log.OperationKey, op,
		log.ErrorCodeKey, int32(st),
		log.ErrorTypeKey, st.String(),
	}
	if h != 0 {
		fields = append(fields, log.HandleKey, uint64(h))
	}
	if st == StatusInternal {
		b.logger.Error("boundary call failed", fields...)
	} else {
		b.logger.Warn("boundary call rejected", append([]any{"error", err}, fields[1:]...)...)
	}
	return st
}

// CopyCString writes text plus a terminating NUL into dst. It returns the
// required size and ErrBufferTooSmall, leaving dst untouched, when dst is too
// short.
func CopyCString(dst, text []byte) (int, error) {
	needed := len(text) + 1
	if len(dst) < needed {
		return needed, errors.Wrapf(ErrBufferTooSmall, "need %d bytes, have %d", needed, len(dst))
	}
	copy(dst, text)
	dst[len(text)] = 0
	return needed, nil
}
