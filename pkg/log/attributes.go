package log

// Standard attribute keys for training and inference operations. Using one
// set of keys across the pipeline keeps the emitted logs filterable.
const (
	// ComponentKey identifies which package emitted the record.
	ComponentKey = "ml.component"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "tune", "evaluate", "load".
	OperationKey = "ml.operation"

	// SamplesKey is the number of rows being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns.
	FeaturesKey = "data.features"

	// ClassesKey is the number of target classes.
	ClassesKey = "data.classes"

	// IterationKey is the current iteration of an iterative process.
	IterationKey = "training.iteration"

	// LossKey is a loss value observed during training or evaluation.
	LossKey = "metrics.loss"

	// AccuracyKey is a classification accuracy in [0, 1].
	AccuracyKey = "metrics.accuracy"

	// DurationKey is a human-readable elapsed time for the operation.
	DurationKey = "perf.duration"

	// ArtifactKey is the storage location of a model or data artifact.
	ArtifactKey = "artifact.uri"
)
