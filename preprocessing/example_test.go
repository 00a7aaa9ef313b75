package preprocessing_test

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/tsreg/core/table"
	"github.com/ezoic/tsreg/preprocessing"
)

// ExampleMinMaxScaler demonstrates scaling features to [0, 1]
func ExampleMinMaxScaler() {
	X := mat.NewDense(3, 2, []float64{
		1.0, 10.0,
		2.0, 20.0,
		3.0, 30.0,
	})

	scaler := preprocessing.NewMinMaxScalerDefault()
	XScaled, err := scaler.FitTransform(X)
	if err != nil {
		return
	}

	for i := 0; i < 3; i++ {
		fmt.Printf("[%.1f, %.1f]\n", XScaled.At(i, 0), XScaled.At(i, 1))
	}

	// Output: [0.0, 0.0]
	// [0.5, 0.5]
	// [1.0, 1.0]
}

// ExampleNormalize shows table-level normalization with a constant column.
func ExampleNormalize() {
	tbl, _ := table.New(
		table.NewNumericColumn("sales", []float64{100, 150, 200}),
		table.NewNumericColumn("store", []float64{4, 4, 4}),
	)

	scaled, err := preprocessing.Normalize(tbl)
	if err != nil {
		return
	}

	for _, c := range scaled.Columns {
		fmt.Println(c.Name, c.Values)
	}

	// Output: sales [0 0.5 1]
	// store [0 0 0]
}
