// Package log defines standard attribute keys for linbridge operations.
//
// Using these keys keeps boundary, registry and estimator logs consistent.
// They follow a hierarchical naming convention (e.g. "model.handle",
// "data.samples") to enable structured log filtering.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator type, e.g. "OrdinaryLeastSquares".
	ModelNameKey = "model.name"

	// HandleKey is the registry handle of the model instance.
	HandleKey = "model.handle"

	// EstimatorKindKey is the configured variant name ("ols", "sgd").
	EstimatorKindKey = "estimator.kind"

	// OperationKey specifies the boundary operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is logging.
	ComponentKey = "ml.component"

	// LiveModelsKey is the number of live registry entries.
	LiveModelsKey = "registry.live"
)

// Data Shape
const (
	// SamplesKey indicates the number of samples (rows).
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns).
	FeaturesKey = "data.features"

	// PayloadSizeKey is the size of a parameter payload in bytes.
	PayloadSizeKey = "data.payload_bytes"

	// PathKey is a file path for parameter persistence.
	PathKey = "data.path"
)

// Performance and Training
const (
	DurationMsKey   = "perf.duration_ms"
	LossKey         = "metrics.loss"
	R2ScoreKey      = "metrics.r2_score"
	IterationKey    = "training.iteration"
	LearningRateKey = "hyperparams.learning_rate"
	RandomSeedKey   = "config.random_seed"
)

// Error Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	// Automatically populated by Error when the first field is an error.
	StacktraceKey = "error.stacktrace"
)

// Standard attribute values.
const (
	OperationNewModel    = "new_model"
	OperationDeleteModel = "delete_model"
	OperationFit         = "fit"
	OperationPredict     = "predict"
	OperationGetParams   = "get_params"
	OperationSetParams   = "set_params"
	OperationScore       = "score"
	OperationSaveParams  = "save_params"
	OperationLoadParams  = "load_params"
)
