package preprocessing_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/tsreg/core/table"
	"github.com/ezoic/tsreg/pkg/errors"
	"github.com/ezoic/tsreg/preprocessing"
)

const epsilon = 1e-10 // Tolerance for floating-point comparisons

func TestMinMaxScaler_BasicFunctionality(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		1.0, 10.0,
		2.0, 30.0,
		3.0, 20.0,
	})

	scaler := preprocessing.NewMinMaxScalerDefault()
	require.NoError(t, scaler.Fit(X))

	assert.Equal(t, []float64{1, 10}, scaler.DataMin)
	assert.Equal(t, []float64{3, 30}, scaler.DataMax)
	assert.Equal(t, []bool{false, false}, scaler.Degenerate)

	XScaled, err := scaler.Transform(X)
	require.NoError(t, err)

	want := []float64{
		0.0, 0.0,
		0.5, 1.0,
		1.0, 0.5,
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			assert.InDelta(t, want[i*2+j], XScaled.At(i, j), epsilon, "[%d,%d]", i, j)
		}
	}
}

func TestMinMaxScaler_CustomRange(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{0, 5, 10})

	scaler := preprocessing.NewMinMaxScaler([2]float64{-1.0, 1.0})
	XScaled, err := scaler.FitTransform(X)
	require.NoError(t, err)

	assert.InDelta(t, -1.0, XScaled.At(0, 0), epsilon)
	assert.InDelta(t, 0.0, XScaled.At(1, 0), epsilon)
	assert.InDelta(t, 1.0, XScaled.At(2, 0), epsilon)

	back, err := scaler.InverseTransform(XScaled)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, X.At(i, 0), back.At(i, 0), epsilon)
	}
}

func TestMinMaxScaler_DegenerateColumns(t *testing.T) {
	nan := math.NaN()
	X := mat.NewDense(3, 3, []float64{
		7, nan, 1,
		7, nan, nan,
		7, nan, 3,
	})

	scaler := preprocessing.NewMinMaxScalerDefault()
	XScaled, err := scaler.FitTransform(X)
	require.NoError(t, err)

	assert.Equal(t, []bool{true, true, false}, scaler.Degenerate)
	for i := 0; i < 3; i++ {
		assert.Equal(t, 0.0, XScaled.At(i, 0), "constant column row %d", i)
		assert.Equal(t, 0.0, XScaled.At(i, 1), "all-missing column row %d", i)
	}
	assert.InDelta(t, 0.0, XScaled.At(0, 2), epsilon)
	assert.True(t, math.IsNaN(XScaled.At(1, 2)))
	assert.InDelta(t, 1.0, XScaled.At(2, 2), epsilon)
}

func TestMinMaxScaler_ErrorCases(t *testing.T) {
	scaler := preprocessing.NewMinMaxScalerDefault()

	_, err := scaler.Transform(mat.NewDense(1, 1, []float64{1}))
	assert.True(t, errors.Is(err, errors.ErrNotFitted))

	assert.True(t, errors.Is(scaler.Fit(&mat.Dense{}), errors.ErrEmptyData))

	require.NoError(t, scaler.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})))
	_, err = scaler.Transform(mat.NewDense(1, 3, nil))
	assert.True(t, errors.Is(err, errors.ErrDimensionMismatch))
}

func TestMinMaxScaler_String(t *testing.T) {
	scaler := preprocessing.NewMinMaxScalerDefault()
	assert.Equal(t, "MinMaxScaler(feature_range=[0.0, 1.0])", scaler.String())

	require.NoError(t, scaler.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})))
	assert.Equal(t, "MinMaxScaler(feature_range=[0.0, 1.0], n_features=2)", scaler.String())
}

func TestNormalize(t *testing.T) {
	tbl, err := table.New(
		table.NewNumericColumn("temp", []float64{10, 20, 30, 40}),
		table.NewNumericColumn("flat", []float64{3, 3, 3, 3}),
	)
	require.NoError(t, err)

	out, err := preprocessing.Normalize(tbl)
	require.NoError(t, err)

	assert.Equal(t, []string{"temp", "flat"}, out.Names())
	assert.InDeltaSlice(t, []float64{0, 1.0 / 3, 2.0 / 3, 1}, out.Columns[0].Values, epsilon)
	assert.Equal(t, []float64{0, 0, 0, 0}, out.Columns[1].Values)

	// input is untouched
	assert.Equal(t, []float64{10, 20, 30, 40}, tbl.Columns[0].Values)
}

func TestNormalize_IndependentPerCall(t *testing.T) {
	a, _ := table.New(table.NewNumericColumn("x", []float64{0, 10}))
	b, _ := table.New(table.NewNumericColumn("x", []float64{100, 200}))

	outA, err := preprocessing.Normalize(a)
	require.NoError(t, err)
	outB, err := preprocessing.Normalize(b)
	require.NoError(t, err)

	// each table is scaled against its own range
	assert.Equal(t, outA.Columns[0].Values, outB.Columns[0].Values)
}

func TestNormalize_RejectsText(t *testing.T) {
	tbl, _ := table.New(table.NewTextColumn("city", []string{"a", "b"}))
	_, err := preprocessing.Normalize(tbl)
	assert.Error(t, err)
}
