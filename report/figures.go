// Package report turns pipeline results into PNG charts.
//
// The pipeline builds plain figure values (series and scores only); a
// Renderer decides how they look. Layout, colors and resolution are cosmetic
// and live entirely in the renderer.
package report

// FoldPanel is one cross-validation fold. Row indices refer to the rows of
// CrossValidationFigure.Actual.
type FoldPanel struct {
	Fold       int
	TrainIndex []int
	TestIndex  []int
	TrainPred  []float64
	TestPred   []float64
	TestActual []float64
	R2         float64
	RMSE       float64
}

// CrossValidationFigure is the training chart: one panel pair per fold and
// a trailing pair with the per-fold scores.
type CrossValidationFigure struct {
	Actual   []float64
	Folds    []FoldPanel
	MeanR2   float64
	MeanRMSE float64
}

// EvaluationFigure is the evaluation chart.
type EvaluationFigure struct {
	Actual    []float64
	Predicted []float64
	RMSE      float64
	R2        float64
}

// PredictionFigure is the prediction chart.
type PredictionFigure struct {
	Predicted []float64
}

// Renderer draws figures to image bytes.
type Renderer interface {
	RenderCrossValidation(fig CrossValidationFigure) ([]byte, error)
	RenderEvaluation(fig EvaluationFigure) ([]byte, error)
	RenderPrediction(fig PredictionFigure) ([]byte, error)
}
