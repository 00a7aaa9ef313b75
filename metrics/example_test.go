package metrics_test

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/tsreg/metrics"
)

// ExampleMSE demonstrates Mean Squared Error calculation
func ExampleMSE() {
	yTrue := mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0})
	yPred := mat.NewVecDense(4, []float64{1.1, 1.9, 3.2, 3.8})

	mse, err := metrics.MSE(yTrue, yPred)
	if err != nil {
		slog.Error("Test failed", "error", err)
		return
	}

	fmt.Printf("MSE: %.3f\n", mse)

	// Output: MSE: 0.025
}

// ExampleRMSE demonstrates Root Mean Squared Error calculation
func ExampleRMSE() {
	yTrue := mat.NewVecDense(3, []float64{10.0, 20.0, 30.0})
	yPred := mat.NewVecDense(3, []float64{12.0, 18.0, 32.0})

	rmse, err := metrics.RMSE(yTrue, yPred)
	if err != nil {
		slog.Error("Test failed", "error", err)
		return
	}

	fmt.Printf("RMSE: %.2f\n", rmse)

	// Output: RMSE: 2.00
}

// ExampleR2Score_imperfectPredictions demonstrates R² with prediction errors
func ExampleR2Score_imperfectPredictions() {
	yTrue := mat.NewVecDense(4, []float64{1.0, 3.0, 2.0, 4.0})
	yPred := mat.NewVecDense(4, []float64{1.2, 2.8, 2.1, 3.9})

	r2, err := metrics.R2Score(yTrue, yPred)
	if err != nil {
		slog.Error("Test failed", "error", err)
		return
	}

	fmt.Printf("R² Score: %.3f\n", r2)

	// Output: R² Score: 0.980
}

// ExampleR2Score_constantTarget shows the score for a target with no variance.
func ExampleR2Score_constantTarget() {
	yTrue := mat.NewVecDense(3, []float64{5, 5, 5})

	perfect, _ := metrics.R2Score(yTrue, mat.NewVecDense(3, []float64{5, 5, 5}))
	off, _ := metrics.R2Score(yTrue, mat.NewVecDense(3, []float64{5, 6, 5}))

	fmt.Printf("perfect: %.1f, off: %.1f\n", perfect, off)

	// Output: perfect: 1.0, off: 0.0
}
