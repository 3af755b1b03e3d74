package registry

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/linbridge/config"
	"github.com/YuminosukeSato/linbridge/core/model"
	"github.com/YuminosukeSato/linbridge/linear"
	"github.com/YuminosukeSato/linbridge/pkg/errors"
	"github.com/YuminosukeSato/linbridge/pkg/log"
	"github.com/YuminosukeSato/linbridge/pkg/telemetry"
)

func newTestRegistry(opts ...Option) *Registry {
	cfg := config.Default()
	return New(func(kind string) (model.Estimator, error) {
		return linear.NewEstimator(kind, cfg)
	}, opts...)
}

func TestRegistry_HandlesAreMonotonicAndNeverReused(t *testing.T) {
	r := newTestRegistry()

	h1, err := r.Create("")
	require.NoError(t, err)
	h2, err := r.Create(config.KindSGD)
	require.NoError(t, err)
	assert.Equal(t, Handle(1), h1)
	assert.Equal(t, Handle(2), h2)

	assert.True(t, r.Delete(h1))
	h3, err := r.Create("")
	require.NoError(t, err)
	assert.Equal(t, Handle(3), h3, "deleted handles are not recycled")

	assert.Equal(t, []Handle{2, 3}, r.Handles())
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_UnknownKind(t *testing.T) {
	r := newTestRegistry()
	_, err := r.Create("ridge")
	var ve *errors.ValueError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, 0, r.Len())

	// a failed create does not burn a handle
	h, err := r.Create("")
	require.NoError(t, err)
	assert.Equal(t, Handle(1), h)
}

func TestRegistry_DeleteUnknownIsNoop(t *testing.T) {
	r := newTestRegistry()
	assert.False(t, r.Delete(999999))

	h, err := r.Create("")
	require.NoError(t, err)
	assert.True(t, r.Delete(h))
	assert.False(t, r.Delete(h), "second delete is a no-op")
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := newTestRegistry()
	_, err := r.Get("get_params", 999999)

	var uh *errors.UnknownHandleError
	require.True(t, errors.As(err, &uh))
	assert.Equal(t, uint64(999999), uh.Handle)
	assert.Equal(t, "get_params", uh.Op)

	err = r.With("fit", 0, func(model.Estimator) error { return nil })
	assert.True(t, errors.As(err, &uh), "handle 0 is never valid")
}

func TestRegistry_WithRunsOnOwnedEstimator(t *testing.T) {
	r := newTestRegistry()
	h, err := r.Create("")
	require.NoError(t, err)

	e, err := r.Get("test", h)
	require.NoError(t, err)
	assert.Equal(t, "", e.Kind())

	err = r.With("fit", h, func(est model.Estimator) error {
		return est.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), []float64{2, 4, 6})
	})
	require.NoError(t, err)

	err = r.With("get_params", h, func(est model.Estimator) error {
		assert.True(t, est.IsFitted())
		assert.Equal(t, 1, est.NFeatures())
		return nil
	})
	require.NoError(t, err)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := newTestRegistry()

	var wg sync.WaitGroup
	handles := make([]Handle, 64)
	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := r.Create("")
			assert.NoError(t, err)
			handles[i] = h
			_ = r.With("set_params", h, func(est model.Estimator) error {
				return est.SetCoefficients([]float64{float64(i)}, 0)
			})
		}(i)
	}
	wg.Wait()

	seen := make(map[Handle]bool)
	for _, h := range handles {
		assert.False(t, seen[h], "duplicate handle %d", h)
		seen[h] = true
	}
	assert.Equal(t, 64, r.Len())

	// many goroutines serialized on one entry
	h := handles[0]
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.With("predict", h, func(est model.Estimator) error {
				_, err := est.Predict(mat.NewDense(1, 1, []float64{1}))
				return err
			})
		}()
	}
	wg.Wait()
}

func TestRegistry_TelemetryAndLogging(t *testing.T) {
	m := telemetry.New(nil)
	logger, _ := log.NewTestLogger(log.LevelDebug)
	r := newTestRegistry(WithTelemetry(m), WithLogger(logger))

	h, err := r.Create("")
	require.NoError(t, err)
	_, err = r.Create("")
	require.NoError(t, err)
	r.Delete(h)

	assert.Contains(t, mustText(t, m), "linreg_models_live 1")
	assert.True(t, logger.ContainsMessage("model registered"))
	assert.True(t, logger.ContainsMessage("model deleted"))
	assert.True(t, logger.ContainsField(log.HandleKey, float64(1)))
	n, err := testutil.GatherAndCount(m.Registry(), "linreg_models_live")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func mustText(t *testing.T, m *telemetry.Metrics) string {
	t.Helper()
	text, err := m.Text()
	require.NoError(t, err)
	return text
}
