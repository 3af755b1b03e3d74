// Package linbridge is a linear regression model registry exposed to foreign
// hosts through a C ABI.
//
// A host creates models, trains them on row-major float64 matrices it owns,
// predicts into buffers it owns and moves coefficients in and out as JSON.
// Models are addressed by opaque integer handles; no Go pointer ever crosses
// the boundary.
//
// # Building
//
//	go build -buildmode=c-shared -o liblinreg.so ./cmd/liblinreg
//
// The exported symbols are declared in cmd/liblinreg/linreg.h.
//
// # Using the boundary from Go
//
// The same operations are available in-process through capi.Boundary:
//
//	b := capi.New(config.Default())
//	h := b.NewModel()
//
//	X := []float64{1, 2, 3}
//	y := []float64{2, 4, 6}
//	if st := b.Fit(h, view.FromSlice(X, 3, 1), view.FromSlice(y, 3, 1)); st != capi.StatusOK {
//	    log.Fatal(b.LastError())
//	}
//
//	out := make([]float64, 1)
//	b.Predict(view.FromSlice(out, 1, 1), h, view.FromSlice([]float64{4}, 1, 1))
//	fmt.Println(out[0]) // 8
//
//	text, _ := b.GetParams(h)
//	fmt.Println(string(text)) // {"coef":[2],"intercept":0,"loss":"squared_error"}
//
// # Packages
//
//   - capi: status codes and the Boundary implementing every export
//   - registry: handle allocation and per-model locking
//   - linear: OrdinaryLeastSquares (SVD) and SGDRegressor estimators
//   - params: the JSON parameter payload
//   - metrics: MSE, RMSE, MAE, R²
//   - config: YAML and environment configuration
//   - core/view: zero-copy mat.Matrix views over host memory
//   - core/model: Estimator interface and fit state
//   - core/parallel: row-parallel helpers
//   - pkg/errors, pkg/log, pkg/telemetry: errors, structured logging, Prometheus metrics
//
// # Configuration
//
// LINREG_CONFIG points at a YAML file; LINREG_ESTIMATOR ("ols" or "sgd") and
// LINREG_LOG_LEVEL override individual settings.
//
// # License
//
// linbridge is released under the MIT License.
package linbridge
