// Package linear provides the ordinary least squares estimator used by the
// training, evaluation and prediction stages.
//
// LinearRegression fits y = X·w + b by minimizing the squared residuals. The
// solve centers X and y, then takes the minimum-norm least squares solution
// from a thin SVD, so rank-deficient designs (for example a feature that
// min-max scaling turned into a constant zero column) still produce a
// deterministic model instead of failing on a singular normal equation.
//
// Example usage:
//
//	lr := linear.NewLinearRegression()
//	err := lr.Fit(X, y) // X: features, y: target values
//	if err != nil {
//		return err
//	}
//	predictions, err := lr.Predict(XTest)
//
// Fitted models are plain structs with exported fields, so they round-trip
// through core/model.SaveModelToWriter and LoadModelFromReader unchanged.
package linear

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/tsreg/core/model"
	"github.com/ezoic/tsreg/metrics"
	tsErrors "github.com/ezoic/tsreg/pkg/errors"
	"github.com/ezoic/tsreg/pkg/log"
)

// ModelType is the type tag written into exported weights.
const ModelType = "LinearRegression"

// Version of the persisted model layout.
const Version = "1.0.0"

// LinearRegression is a linear regression model
type LinearRegression struct {
	State        *model.StateManager // State manager (composition instead of embedding) - Public for gob encoding
	Weights      *mat.VecDense       // Model weights (coefficients)
	Intercept    float64             // Model intercept
	NFeatures    int                 // Number of features
	FeatureNames []string            // Column names, in weight order, when known
	Rank         int                 // Effective rank of the centered design matrix
	logger       log.Logger          // Logger instance
}

// NewLinearRegression creates a new, unfitted linear regression model.
//
// Example:
//
//	lr := linear.NewLinearRegression()
//	err := lr.Fit(X, y)
//	predictions, err := lr.Predict(X_test)
func NewLinearRegression() *LinearRegression {
	lr := &LinearRegression{
		State: model.NewStateManager(),
	}

	lr.logger = log.GetLoggerWithName("linear").With(
		log.ModelNameKey, ModelType,
		log.ComponentKey, "linear",
	)

	return lr
}

// SetLogger replaces the model's logger.
func (lr *LinearRegression) SetLogger(logger log.Logger) {
	lr.logger = logger
}

// Fit trains the linear regression model using the provided training data.
//
// Parameters:
//   - X: Feature matrix of shape (n_samples, n_features)
//   - y: Target column of shape (n_samples, 1)
//
// Errors:
//   - ErrEmptyData: if X or y are empty
//   - ErrDimensionMismatch: if the number of samples in X and y don't match
//   - ValueError: if y has more than one column or any input is not finite
//
// Example:
//
//	X := mat.NewDense(100, 5, nil) // 100 samples, 5 features
//	y := mat.NewVecDense(100, nil) // 100 target values
//	err := lr.Fit(X, y)
func (lr *LinearRegression) Fit(X, y mat.Matrix) (err error) {
	defer tsErrors.Recover(&err, "LinearRegression.Fit")

	startTime := time.Now()
	r, c := X.Dims()
	ry, cy := y.Dims()

	if lr.logger != nil {
		lr.logger.Debug("Training started",
			log.OperationKey, log.OperationFit,
			log.PhaseKey, log.PhaseTraining,
			log.SamplesKey, r,
			log.FeaturesKey, c,
		)
	}

	if r == 0 || c == 0 {
		return tsErrors.NewModelError("LinearRegression.Fit", "empty data", tsErrors.ErrEmptyData)
	}

	if ry != r {
		return tsErrors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}

	if cy != 1 {
		return tsErrors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}

	// Center X and y so the intercept drops out of the solve.
	xMean := make([]float64, c)
	var yMean float64
	for i := 0; i < r; i++ {
		yi := y.At(i, 0)
		if math.IsNaN(yi) || math.IsInf(yi, 0) {
			return tsErrors.NewValueError("LinearRegression.Fit", "y contains NaN or Inf")
		}
		yMean += yi
		for j := 0; j < c; j++ {
			xij := X.At(i, j)
			if math.IsNaN(xij) || math.IsInf(xij, 0) {
				return tsErrors.NewValueError("LinearRegression.Fit", "X contains NaN or Inf")
			}
			xMean[j] += xij
		}
	}
	yMean /= float64(r)
	for j := range xMean {
		xMean[j] /= float64(r)
	}

	Xc := mat.NewDense(r, c, nil)
	yc := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yc.SetVec(i, y.At(i, 0)-yMean)
		for j := 0; j < c; j++ {
			Xc.Set(i, j, X.At(i, j)-xMean[j])
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(Xc, mat.SVDThin); !ok {
		return tsErrors.NewModelError("LinearRegression.Fit", "SVD factorization failed", tsErrors.ErrSingularMatrix)
	}

	// Singular values below eps*max(n, p) relative to the largest are treated as zero.
	rcond := math.Nextafter(1, 2) - 1
	rcond *= float64(max(r, c))
	rank := svd.Rank(rcond)

	weights := mat.NewVecDense(c, nil)
	if rank > 0 {
		svd.SolveVecTo(weights, yc, rank)
	}

	intercept := yMean
	for j := 0; j < c; j++ {
		intercept -= xMean[j] * weights.AtVec(j)
	}

	lr.Weights = weights
	lr.Intercept = intercept
	lr.NFeatures = c
	lr.Rank = rank

	if lr.State == nil {
		lr.State = model.NewStateManager()
	}
	lr.State.SetFitted()
	lr.State.SetDimensions(lr.NFeatures, r)

	if lr.logger != nil {
		lr.logger.Debug("Training completed",
			log.OperationKey, log.OperationFit,
			log.PhaseKey, log.PhaseTraining,
			log.DurationMsKey, time.Since(startTime).Milliseconds(),
			log.SamplesKey, r,
			log.FeaturesKey, c,
			"rank", rank,
		)
	}

	return nil
}

// Predict returns X·w + b as an (n_samples, 1) matrix.
//
// Errors:
//   - ErrNotFitted: if the model hasn't been trained yet
//   - ErrDimensionMismatch: if X has a different number of features than training data
func (lr *LinearRegression) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer tsErrors.Recover(&err, "LinearRegression.Predict")
	if !lr.IsFitted() {
		return nil, tsErrors.NewNotFittedError(ModelType, "Predict")
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, tsErrors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		pred := lr.Intercept
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * lr.Weights.AtVec(j)
		}
		predictions.Set(i, 0, pred)
	}

	if lr.logger != nil {
		lr.logger.Debug("Prediction completed",
			log.OperationKey, log.OperationPredict,
			log.PhaseKey, log.PhaseInference,
			log.PredsKey, r,
		)
	}

	return predictions, nil
}

// PredictSlice is Predict returning a plain slice.
func (lr *LinearRegression) PredictSlice(X mat.Matrix) ([]float64, error) {
	pred, err := lr.Predict(X)
	if err != nil {
		return nil, err
	}
	r, _ := pred.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = pred.At(i, 0)
	}
	return out, nil
}

// Score returns the coefficient of determination R² = 1 - SS_res/SS_tot of
// the predictions for X against y.
func (lr *LinearRegression) Score(X, y mat.Matrix) (_ float64, err error) {
	defer tsErrors.Recover(&err, "LinearRegression.Score")
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, pred)
}

// GetWeights returns a copy of the learned coefficients.
func (lr *LinearRegression) GetWeights() []float64 {
	if lr.Weights == nil {
		return nil
	}

	weights := make([]float64, lr.Weights.Len())
	for i := 0; i < lr.Weights.Len(); i++ {
		weights[i] = lr.Weights.AtVec(i)
	}
	return weights
}

// GetIntercept returns the learned intercept
func (lr *LinearRegression) GetIntercept() float64 {
	if !lr.IsFitted() {
		return 0
	}
	return lr.Intercept
}

// ExportWeights returns the fitted parameters in portable form.
func (lr *LinearRegression) ExportWeights() (*model.Weights, error) {
	if !lr.IsFitted() {
		return nil, tsErrors.NewNotFittedError(ModelType, "ExportWeights")
	}
	_, nSamples := lr.State.Dimensions()
	return &model.Weights{
		ModelType:    ModelType,
		Version:      Version,
		FeatureNames: append([]string(nil), lr.FeatureNames...),
		Coefficients: lr.GetWeights(),
		Intercept:    lr.Intercept,
		NFeatures:    lr.NFeatures,
		NSamples:     nSamples,
		Rank:         lr.Rank,
	}, nil
}

// IsFitted returns whether the model has been fitted.
func (lr *LinearRegression) IsFitted() bool {
	return lr.State.IsFitted()
}
