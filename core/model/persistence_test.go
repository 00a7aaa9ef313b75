package model_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/tsreg/core/model"
	"github.com/ezoic/tsreg/linear"
	"github.com/ezoic/tsreg/pkg/errors"
)

func fittedRegression(t *testing.T) *linear.LinearRegression {
	t.Helper()
	reg := linear.NewLinearRegression()
	reg.FeatureNames = []string{"x1", "x2"}
	X := mat.NewDense(4, 2, []float64{
		1.0, 2.0,
		2.0, 1.0,
		3.0, 4.0,
		4.0, 3.0,
	})
	y := mat.NewVecDense(4, []float64{5.0, 4.0, 11.0, 10.0})
	require.NoError(t, reg.Fit(X, y))
	return reg
}

func TestSaveLoadModelToWriter(t *testing.T) {
	reg := fittedRegression(t)

	var buf bytes.Buffer
	require.NoError(t, model.SaveModelToWriter(reg, &buf))

	loaded := linear.NewLinearRegression()
	require.NoError(t, model.LoadModelFromReader(loaded, &buf))

	testX := mat.NewDense(1, 2, []float64{5.0, 6.0})
	want, err := reg.Predict(testX)
	require.NoError(t, err)
	got, err := loaded.Predict(testX)
	require.NoError(t, err)

	assert.Equal(t, want.At(0, 0), got.At(0, 0))
	assert.True(t, loaded.IsFitted())
	assert.Equal(t, reg.FeatureNames, loaded.FeatureNames)

	features, samples := loaded.State.Dimensions()
	assert.Equal(t, 2, features)
	assert.Equal(t, 4, samples)
}

func TestMarshalUnmarshal(t *testing.T) {
	reg := fittedRegression(t)

	blob, err := model.Marshal(reg)
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	loaded := linear.NewLinearRegression()
	require.NoError(t, model.Unmarshal(blob, loaded))
	assert.Equal(t, reg.GetWeights(), loaded.GetWeights())
	assert.Equal(t, reg.GetIntercept(), loaded.GetIntercept())
}

func TestUnmarshal_Errors(t *testing.T) {
	t.Run("empty blob", func(t *testing.T) {
		err := model.Unmarshal(nil, linear.NewLinearRegression())
		assert.True(t, errors.Is(err, errors.ErrEmptyData))
	})

	t.Run("garbage blob", func(t *testing.T) {
		err := model.Unmarshal([]byte("not a gob stream"), linear.NewLinearRegression())
		assert.Error(t, err)
	})
}
