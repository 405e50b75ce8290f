// Standard attribute keys for fitting operations. Keys are hierarchical
// ("model.name", "data.samples") so log records can be filtered by prefix.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the retention model family.
	// Examples: "VanGenuchten", "BrooksCorey", "FredlundXing"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "fit_quantiles", "evaluate", "ingest", "export"
	OperationKey = "wrc.operation"

	// ComponentKey identifies which package is logging.
	// Examples: "fit", "search", "dataset", "report"
	ComponentKey = "wrc.component"

	// ModeKey is "point" for MSE calibration and "quantile" for pinball
	// calibration.
	ModeKey = "fit.mode"

	// QuantileKey records the quantile level of a quantile fit.
	QuantileKey = "fit.quantile"
)

// Data Shape
const (
	// SamplesKey indicates the number of (suction, water content) pairs.
	SamplesKey = "data.samples"

	// DroppedKey counts samples removed before fitting (zero suction,
	// missing cells).
	DroppedKey = "data.dropped"

	// SourceKey names the input file or stream.
	SourceKey = "data.source"
)

// Search and Performance Metrics
const (
	// AlgorithmKey names the global search strategy.
	// Examples: "annealing", "evolution"
	AlgorithmKey = "search.algorithm"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// LossKey records the achieved objective value.
	LossKey = "metrics.loss"

	// RMSEKey records the root mean squared error of a point fit.
	RMSEKey = "metrics.rmse"

	// IterationKey records the number of iterations run by the search.
	IterationKey = "search.iterations"

	// EvaluationsKey records the number of objective evaluations.
	EvaluationsKey = "search.evaluations"

	// ParamsKey records a parameter vector.
	ParamsKey = "model.params"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Error Context
const (
	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// SuggestionKey provides helpful suggestions for resolving issues.
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationFit          = "fit"
	OperationFitQuantiles = "fit_quantiles"
	OperationEvaluate     = "evaluate"
	OperationIngest       = "ingest"
	OperationExport       = "export"

	ModePoint    = "point"
	ModeQuantile = "quantile"
)
