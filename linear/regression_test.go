package linear

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/tsreg/core/model"
	"github.com/ezoic/tsreg/metrics"
	"github.com/ezoic/tsreg/pkg/errors"
)

func TestLinearRegression_Fit(t *testing.T) {
	tests := []struct {
		name    string
		X       *mat.Dense
		y       *mat.VecDense
		wantErr bool
	}{
		{
			name: "simple linear relationship y = 2x + 1",
			X:    mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5}),
			y:    mat.NewVecDense(5, []float64{3, 5, 7, 9, 11}),
		},
		{
			name: "multiple features",
			X: mat.NewDense(5, 2, []float64{
				1.0, 2.0,
				2.0, 1.0,
				3.0, 4.0,
				4.0, 3.0,
				5.0, 5.0,
			}),
			y: mat.NewVecDense(5, []float64{5, 4, 11, 10, 15}),
		},
		{
			name: "more features than samples",
			X: mat.NewDense(2, 3, []float64{
				1, 0, 2,
				0, 1, 3,
			}),
			y: mat.NewVecDense(2, []float64{1, 2}),
		},
		{
			name:    "empty data",
			X:       &mat.Dense{},
			y:       &mat.VecDense{},
			wantErr: true,
		},
		{
			name: "mismatched dimensions",
			X: mat.NewDense(3, 2, []float64{
				1.0, 2.0,
				3.0, 4.0,
				5.0, 6.0,
			}),
			y:       mat.NewVecDense(2, []float64{1.0, 2.0}),
			wantErr: true,
		},
		{
			name:    "NaN in features",
			X:       mat.NewDense(3, 1, []float64{1, math.NaN(), 3}),
			y:       mat.NewVecDense(3, []float64{1, 2, 3}),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr := NewLinearRegression()
			err := lr.Fit(tt.X, tt.y)

			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, lr.IsFitted())
				return
			}
			require.NoError(t, err)
			assert.True(t, lr.IsFitted())
		})
	}
}

func TestLinearRegression_Predict(t *testing.T) {
	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(
		mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5}),
		mat.NewVecDense(5, []float64{3, 5, 7, 9, 11}),
	))

	tests := []struct {
		name    string
		X       *mat.Dense
		wantY   []float64
		wantErr bool
	}{
		{
			name:  "predict on training data",
			X:     mat.NewDense(2, 1, []float64{1, 5}),
			wantY: []float64{3, 11},
		},
		{
			name:  "predict on new data",
			X:     mat.NewDense(3, 1, []float64{0, 6, 10}),
			wantY: []float64{1, 13, 21},
		},
		{
			name:    "wrong number of features",
			X:       mat.NewDense(2, 2, []float64{1, 2, 3, 4}),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := lr.Predict(tt.X)
			if tt.wantErr {
				assert.True(t, errors.Is(err, errors.ErrDimensionMismatch))
				return
			}
			require.NoError(t, err)

			r, c := pred.Dims()
			require.Equal(t, len(tt.wantY), r)
			require.Equal(t, 1, c)
			for i, want := range tt.wantY {
				assert.InDelta(t, want, pred.At(i, 0), 1e-9, "prediction %d", i)
			}
		})
	}
}

func TestLinearRegression_PredictNotFitted(t *testing.T) {
	lr := NewLinearRegression()

	_, err := lr.Predict(mat.NewDense(2, 1, []float64{1.0, 2.0}))
	assert.True(t, errors.Is(err, errors.ErrNotFitted))
}

func TestLinearRegression_MultipleFeatures(t *testing.T) {
	// y = 1*x1 + 2*x2 + 3
	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(
		mat.NewDense(6, 2, []float64{
			1.0, 1.0,
			2.0, 1.0,
			1.0, 2.0,
			3.0, 2.0,
			2.0, 3.0,
			4.0, 3.0,
		}),
		mat.NewVecDense(6, []float64{6, 7, 8, 10, 11, 13}),
	))

	assert.InDeltaSlice(t, []float64{1, 2}, lr.GetWeights(), 1e-9)
	assert.InDelta(t, 3.0, lr.GetIntercept(), 1e-9)
	assert.Equal(t, 2, lr.Rank)

	pred, err := lr.PredictSlice(mat.NewDense(2, 2, []float64{5, 1, 1, 4}))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{10, 12}, pred, 1e-9)
}

func TestLinearRegression_ConstantColumn(t *testing.T) {
	// The second feature is all zeros, as min-max scaling leaves a constant column.
	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(
		mat.NewDense(4, 2, []float64{
			0.0, 0,
			1.0 / 3, 0,
			2.0 / 3, 0,
			1.0, 0,
		}),
		mat.NewVecDense(4, []float64{1, 2, 3, 4}),
	))

	weights := lr.GetWeights()
	assert.InDelta(t, 3.0, weights[0], 1e-9)
	assert.Equal(t, 0.0, weights[1])
	assert.InDelta(t, 1.0, lr.GetIntercept(), 1e-9)
	assert.Equal(t, 1, lr.Rank)
}

func TestLinearRegression_AllColumnsConstant(t *testing.T) {
	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(
		mat.NewDense(3, 1, []float64{0, 0, 0}),
		mat.NewVecDense(3, []float64{2, 4, 6}),
	))

	assert.Equal(t, []float64{0}, lr.GetWeights())
	assert.InDelta(t, 4.0, lr.GetIntercept(), 1e-12)
	assert.Equal(t, 0, lr.Rank)
}

func TestLinearRegression_Deterministic(t *testing.T) {
	X := mat.NewDense(5, 2, []float64{
		0.1, 0.9,
		0.4, 0.2,
		0.5, 0.5,
		0.8, 0.3,
		1.0, 0.0,
	})
	y := mat.NewVecDense(5, []float64{1.2, 0.7, 1.1, 1.3, 1.4})

	a, b := NewLinearRegression(), NewLinearRegression()
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))

	assert.Equal(t, a.GetWeights(), b.GetWeights())
	assert.Equal(t, a.GetIntercept(), b.GetIntercept())
}

func TestLinearRegression_Score(t *testing.T) {
	X := mat.NewDense(10, 1, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	y := mat.NewVecDense(10, []float64{3, 5, 7, 9, 11, 13, 15, 17, 19, 21})

	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))

	r2, err := lr.Score(X, y)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r2, 1e-10)

	pred, err := lr.Predict(X)
	require.NoError(t, err)
	rmse, err := metrics.RMSEMatrix(y, pred)
	require.NoError(t, err)
	assert.Less(t, rmse, 1e-9)
}

func TestLinearRegression_NoisyData(t *testing.T) {
	// y ≈ 3x + 5 + noise
	X := mat.NewDense(20, 1, []float64{
		1.0, 1.5, 2.0, 2.5, 3.0, 3.5, 4.0, 4.5, 5.0, 5.5,
		6.0, 6.5, 7.0, 7.5, 8.0, 8.5, 9.0, 9.5, 10.0, 10.5,
	})
	y := mat.NewVecDense(20, []float64{
		8.1, 9.5, 11.2, 12.3, 14.1, 15.8, 17.2, 18.4, 20.1, 21.5,
		23.2, 24.3, 26.1, 27.8, 29.2, 30.4, 32.1, 33.5, 35.2, 36.8,
	})

	lr := NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))

	r2, err := lr.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, r2, 0.95)
	assert.InDelta(t, 3.0, lr.GetWeights()[0], 0.2)
}

func TestLinearRegression_ExportWeights(t *testing.T) {
	lr := NewLinearRegression()
	_, err := lr.ExportWeights()
	assert.True(t, errors.Is(err, errors.ErrNotFitted))

	lr.FeatureNames = []string{"x"}
	require.NoError(t, lr.Fit(
		mat.NewDense(3, 1, []float64{0, 1, 2}),
		mat.NewVecDense(3, []float64{1, 3, 5}),
	))

	w, err := lr.ExportWeights()
	require.NoError(t, err)
	assert.Equal(t, ModelType, w.ModelType)
	assert.Equal(t, []string{"x"}, w.FeatureNames)
	assert.InDeltaSlice(t, []float64{2}, w.Coefficients, 1e-9)
	assert.InDelta(t, 1.0, w.Intercept, 1e-9)
	assert.Equal(t, 3, w.NSamples)
}

func TestLinearRegression_GobRoundTrip(t *testing.T) {
	lr := NewLinearRegression()
	lr.FeatureNames = []string{"a", "b"}
	require.NoError(t, lr.Fit(
		mat.NewDense(4, 2, []float64{0, 1, 1, 0, 2, 2, 3, 1}),
		mat.NewVecDense(4, []float64{1, 2, 6, 6}),
	))

	blob, err := model.Marshal(lr)
	require.NoError(t, err)

	loaded := NewLinearRegression()
	require.NoError(t, model.Unmarshal(blob, loaded))

	assert.True(t, loaded.IsFitted())
	assert.Equal(t, lr.GetWeights(), loaded.GetWeights())
	assert.Equal(t, lr.GetIntercept(), loaded.GetIntercept())
	assert.Equal(t, []string{"a", "b"}, loaded.FeatureNames)
}

func BenchmarkLinearRegression_Fit(b *testing.B) {
	nSamples := 1000
	nFeatures := 10

	X := mat.NewDense(nSamples, nFeatures, nil)
	y := mat.NewVecDense(nSamples, nil)
	for i := 0; i < nSamples; i++ {
		sum := 0.0
		for j := 0; j < nFeatures; j++ {
			val := math.Sin(float64(i*nFeatures + j))
			X.Set(i, j, val)
			sum += val * float64(j+1)
		}
		y.SetVec(i, sum)
	}

	lr := NewLinearRegression()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = lr.Fit(X, y)
	}
}
