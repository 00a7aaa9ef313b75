package linear_test

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/tsreg/core/model"
	"github.com/ezoic/tsreg/linear"
)

// ExampleLinearRegression demonstrates basic linear regression usage
func ExampleLinearRegression() {
	// y = 2*x + 1
	X := mat.NewDense(4, 1, []float64{1.0, 2.0, 3.0, 4.0})
	y := mat.NewDense(4, 1, []float64{3.0, 5.0, 7.0, 9.0})

	lr := linear.NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		return
	}

	testX := mat.NewDense(2, 1, []float64{5.0, 6.0})
	predictions, err := lr.Predict(testX)
	if err != nil {
		return
	}

	fmt.Printf("Input: %.1f, Prediction: %.1f\n", testX.At(0, 0), predictions.At(0, 0))
	fmt.Printf("Input: %.1f, Prediction: %.1f\n", testX.At(1, 0), predictions.At(1, 0))

	// Output: Input: 5.0, Prediction: 11.0
	// Input: 6.0, Prediction: 13.0
}

// ExampleLinearRegression_multipleFeatures demonstrates multiple feature regression
func ExampleLinearRegression_multipleFeatures() {
	X := mat.NewDense(4, 2, []float64{
		1.0, 1.0,
		2.0, 1.0,
		1.0, 2.0,
		2.0, 2.0,
	})

	// y = x1 + 2*x2 + 4
	y := mat.NewDense(4, 1, []float64{7.0, 8.0, 9.0, 10.0})

	lr := linear.NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		return
	}

	weights := lr.GetWeights()
	fmt.Printf("Weights: [%.1f, %.1f]\n", weights[0], weights[1])
	fmt.Printf("Intercept: %.1f\n", lr.GetIntercept())

	// Output: Weights: [1.0, 2.0]
	// Intercept: 4.0
}

// ExampleLinearRegression_persistence shows a model surviving a gob round trip.
func ExampleLinearRegression_persistence() {
	X := mat.NewDense(3, 1, []float64{1.0, 2.0, 3.0})
	y := mat.NewDense(3, 1, []float64{3.0, 5.0, 7.0})

	lr := linear.NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		return
	}

	blob, err := model.Marshal(lr)
	if err != nil {
		return
	}

	loaded := linear.NewLinearRegression()
	if err := model.Unmarshal(blob, loaded); err != nil {
		return
	}

	fmt.Printf("Weight: %.3f, Intercept: %.3f\n", loaded.GetWeights()[0], loaded.GetIntercept())

	// Output: Weight: 2.000, Intercept: 1.000
}
