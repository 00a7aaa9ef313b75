// Package metrics provides the regression scores reported by cross-validation
// and evaluation.
//
//   - MSE: Mean Squared Error
//   - RMSE: Root Mean Squared Error (square root of MSE)
//   - MAE: Mean Absolute Error
//   - R²: coefficient of determination
//
// Inputs are gonum vectors; the Matrix variants accept (n×1) column matrices
// as returned by LinearRegression.Predict.
//
// Example usage:
//
//	rmse, err := metrics.RMSE(yTrue, yPred)
//	r2, err := metrics.R2Score(yTrue, yPred)
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	tsErrors "github.com/ezoic/tsreg/pkg/errors"
)

// MSE calculates the Mean Squared Error between true and predicted values.
//
// Errors:
//   - ValueError: if input vectors are empty
//   - ErrDimensionMismatch: if yTrue and yPred have different lengths
//
// Example:
//
//	mse, err := metrics.MSE(yTrue, yPred)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("MSE: %.4f\n", mse)
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}

	return sum / float64(n), nil
}

// RMSE is the square root of MSE, in the units of the target.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE calculates the Mean Absolute Error between true and predicted values.
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}

	return sum / float64(n), nil
}

// R2Score calculates the coefficient of determination 1 - SS_res/SS_tot.
//
// The score is never NaN. When yTrue is constant (SS_tot == 0) the ratio is
// undefined and R2Score returns 1.0 for a perfect prediction and 0.0
// otherwise. Negative scores are returned unchanged.
//
// Example:
//
//	r2, err := metrics.R2Score(yTrue, yPred)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("R² Score: %.4f\n", r2)
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var yMean float64
	for i := 0; i < n; i++ {
		yMean += yTrue.AtVec(i)
	}
	yMean /= float64(n)

	var tss, rss float64
	for i := 0; i < n; i++ {
		yTrueVal := yTrue.AtVec(i)
		yPredVal := yPred.AtVec(i)

		tss += (yTrueVal - yMean) * (yTrueVal - yMean)
		rss += (yTrueVal - yPredVal) * (yTrueVal - yPredVal)
	}

	if tss == 0 {
		if rss == 0 {
			return 1, nil
		}
		return 0, nil
	}

	return 1 - rss/tss, nil
}

// RMSEMatrix is RMSE for (n×1) column matrices.
func RMSEMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	t, p, err := columnPair("RMSEMatrix", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return RMSE(t, p)
}

// R2ScoreMatrix is R2Score for (n×1) column matrices.
func R2ScoreMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	t, p, err := columnPair("R2ScoreMatrix", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return R2Score(t, p)
}

// Mean returns the arithmetic mean of scores, or NaN for an empty slice.
func Mean(scores []float64) float64 {
	if len(scores) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil || yTrue.IsEmpty() || yTrue.Len() == 0 {
		return 0, tsErrors.NewValueError(op, "empty vector")
	}
	n := yTrue.Len()
	if yPred.IsEmpty() || yPred.Len() != n {
		got := 0
		if !yPred.IsEmpty() {
			got = yPred.Len()
		}
		return 0, tsErrors.NewDimensionError(op, n, got, 0)
	}
	return n, nil
}

func columnPair(op string, yTrue, yPred mat.Matrix) (*mat.VecDense, *mat.VecDense, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()

	if rTrue == 0 || cTrue == 0 {
		return nil, nil, tsErrors.NewValueError(op, "empty matrix")
	}
	if rTrue != rPred || cTrue != cPred {
		return nil, nil, tsErrors.NewDimensionError(op, rTrue, rPred, 0)
	}
	if cTrue != 1 {
		return nil, nil, tsErrors.NewValueError(op, "must be a column vector (n×1 matrix)")
	}

	t := mat.NewVecDense(rTrue, nil)
	p := mat.NewVecDense(rPred, nil)
	for i := 0; i < rTrue; i++ {
		t.SetVec(i, yTrue.At(i, 0))
		p.SetVec(i, yPred.At(i, 0))
	}
	return t, p, nil
}
