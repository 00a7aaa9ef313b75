// Package model provides the estimator state shared by tsreg's models and the
// (de)serialization of fitted models to the opaque blobs kept in the object
// store.
//
//   - BaseEstimator: fitted-state tracking embedded by simple estimators
//   - StateManager: the same state held by composition, gob friendly
//   - SaveModelToWriter / LoadModelFromReader: gob persistence
//   - Weights: a portable, JSON-friendly view of linear model parameters
//
// Example usage:
//
//	var buf bytes.Buffer
//	if err := model.SaveModelToWriter(lr, &buf); err != nil {
//		return err
//	}
//	restored := linear.NewLinearRegression()
//	err := model.LoadModelFromReader(restored, &buf)
package model

// EstimatorState represents the learning state of a model
type EstimatorState int

const (
	// NotFitted indicates the model is not yet trained
	NotFitted EstimatorState = iota
	// Fitted indicates the model has been trained
	Fitted
)

func (s EstimatorState) String() string {
	if s == Fitted {
		return "fitted"
	}
	return "not_fitted"
}

// BaseEstimator is embedded by estimators that only need fitted-state tracking.
type BaseEstimator struct {
	// State holds the model's learning state. Public for gob encoding.
	State EstimatorState

	// ModelType identifies the type of model
	ModelType string

	// Version is the model version
	Version string
}

// IsFitted returns whether the model has been fitted with training data.
func (e *BaseEstimator) IsFitted() bool {
	return e.State == Fitted
}

// SetFitted marks the estimator as fitted. Called by Fit implementations only.
func (e *BaseEstimator) SetFitted() {
	e.State = Fitted
}

// Reset returns the estimator to its initial untrained state.
func (e *BaseEstimator) Reset() {
	e.State = NotFitted
}
