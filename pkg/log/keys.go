package log

// Field keys shared by all components.
const (
	NameKey       = "logger"
	ErrorKey      = "error"
	ModelNameKey  = "model"
	ComponentKey  = "component"
	OperationKey  = "operation"
	PhaseKey      = "phase"
	SamplesKey    = "samples"
	FeaturesKey   = "features"
	PredsKey      = "predictions"
	DurationMsKey = "duration_ms"

	StageKey     = "stage"
	FoldKey      = "fold"
	ContainerKey = "container"
	BlobKey      = "blob"
	URLKey       = "url"
	RequestIDKey = "request_id"
	MethodKey    = "method"
	PathKey      = "path"
	StatusKey    = "status"
)

// Operation values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationScore     = "score"
)

// Phase values.
const (
	PhaseTraining   = "training"
	PhaseInference  = "inference"
	PhaseValidation = "validation"
	PhaseEvaluation = "evaluation"
)
