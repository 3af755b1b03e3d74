// Command liblinreg builds the linear regression model registry as a C shared
// library:
//
//	go build -buildmode=c-shared -o liblinreg.so ./cmd/liblinreg
//
// The exported symbols are declared in linreg.h. Every call goes through one
// process-wide capi.Boundary configured from the environment (LINREG_CONFIG,
// LINREG_ESTIMATOR, LINREG_LOG_LEVEL).
package main

/*
#include <stdint.h>

typedef struct {
    uint64_t data_address;
    int dim1;
    int dim2;
} Array2Ptr;
*/
import "C"

import (
	"unsafe"

	"github.com/YuminosukeSato/linbridge/capi"
	"github.com/YuminosukeSato/linbridge/config"
	"github.com/YuminosukeSato/linbridge/core/view"
	"github.com/YuminosukeSato/linbridge/pkg/log"
	"github.com/YuminosukeSato/linbridge/pkg/telemetry"
)

var boundary *capi.Boundary

func init() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.GetLogger().Error("invalid configuration, using defaults", err)
		cfg = config.Default()
	}
	if err := log.SetupLogger(cfg.LogLevel); err != nil {
		log.GetLogger().Error("invalid log level", err, "level", cfg.LogLevel)
	}
	boundary = capi.New(cfg,
		capi.WithLogger(log.GetLogger().With(log.ComponentKey, "capi")),
		capi.WithTelemetry(telemetry.New(nil)),
	)
}

func descriptor(a C.Array2Ptr) view.Descriptor {
	return view.Descriptor{
		Address: uintptr(a.data_address),
		Rows:    int(a.dim1),
		Cols:    int(a.dim2),
	}
}

func bytesOf(out *C.char, n C.int64_t) []byte {
	if out == nil || n <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(out)), int(n))
}

//export new_model
func new_model() C.uint64_t {
	return C.uint64_t(boundary.NewModel())
}

//export new_model_kind
func new_model_kind(kind *C.char, out *C.uint64_t) C.int {
	if out == nil {
		return C.int(boundary.NullArgument("new_model_kind", "out"))
	}
	name := ""
	if kind != nil {
		name = C.GoString(kind)
	}
	h, st := boundary.NewModelKind(name)
	*out = C.uint64_t(h)
	return C.int(st)
}

//export delete_model
func delete_model(h C.uint64_t) {
	boundary.DeleteModel(capi.Handle(h))
}

//export fit
func fit(h C.uint64_t, x, y C.Array2Ptr) C.int {
	return C.int(boundary.Fit(capi.Handle(h), descriptor(x), descriptor(y)))
}

//export predict
func predict(out C.Array2Ptr, h C.uint64_t, x C.Array2Ptr) C.int {
	return C.int(boundary.Predict(descriptor(out), capi.Handle(h), descriptor(x)))
}

//export score
func score(h C.uint64_t, x, y C.Array2Ptr, out *C.double) C.int {
	if out == nil {
		return C.int(boundary.NullArgument(log.OperationScore, "out"))
	}
	r2, st := boundary.Score(capi.Handle(h), descriptor(x), descriptor(y))
	if st == capi.StatusOK {
		*out = C.double(r2)
	}
	return C.int(st)
}

//export get_params
func get_params(h C.uint64_t, out *C.char, n C.int64_t, needed *C.int64_t) C.int {
	size, st := boundary.GetParamsInto(capi.Handle(h), bytesOf(out, n))
	if needed != nil {
		*needed = C.int64_t(size)
	}
	return C.int(st)
}

//export set_params
func set_params(h C.uint64_t, text *C.char) C.int {
	if text == nil {
		return C.int(boundary.NullArgument(log.OperationSetParams, "text"))
	}
	return C.int(boundary.SetParams(capi.Handle(h), C.GoString(text)))
}

//export save_params
func save_params(h C.uint64_t, path *C.char) C.int {
	if path == nil {
		return C.int(boundary.NullArgument(log.OperationSaveParams, "path"))
	}
	return C.int(boundary.SaveParams(capi.Handle(h), C.GoString(path)))
}

//export load_params
func load_params(h C.uint64_t, path *C.char) C.int {
	if path == nil {
		return C.int(boundary.NullArgument(log.OperationLoadParams, "path"))
	}
	return C.int(boundary.LoadParams(capi.Handle(h), C.GoString(path)))
}

//export last_error
func last_error(out *C.char, n C.int64_t) C.int {
	return C.int(boundary.LastErrorInto(bytesOf(out, n)))
}

//export metrics_text
func metrics_text(out *C.char, n C.int64_t, needed *C.int64_t) C.int {
	size, st := boundary.MetricsTextInto(bytesOf(out, n))
	if needed != nil {
		*needed = C.int64_t(size)
	}
	return C.int(st)
}

func main() {}
