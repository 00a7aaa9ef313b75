// Package preprocessing provides the min-max feature scaling used by every
// pipeline stage.
//
// MinMaxScaler follows the Fit / Transform / FitTransform pattern. Normalize
// is the stage-level entry point: it fits a fresh scaler on the table it is
// given and transforms that same table, so training, evaluation and
// prediction data are each scaled against their own minimum and maximum.
//
// Example usage:
//
//	scaled, err := preprocessing.Normalize(X)
//	if err != nil {
//		return err
//	}
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/tsreg/core/model"
	"github.com/ezoic/tsreg/core/table"
	tsErrors "github.com/ezoic/tsreg/pkg/errors"
)

// MinMaxScaler scales each feature to FeatureRange using that feature's
// observed minimum and maximum. Missing (NaN) cells are ignored when fitting.
type MinMaxScaler struct {
	model.BaseEstimator

	// DataMin is the per-feature minimum seen during Fit (NaN if the feature
	// had no observed values).
	DataMin []float64

	// DataMax is the per-feature maximum seen during Fit.
	DataMax []float64

	// Scale is DataMax - DataMin for non-degenerate features.
	Scale []float64

	// Degenerate marks features whose range is zero or undefined. They are
	// mapped to FeatureRange[0] on every row.
	Degenerate []bool

	// NFeatures is the number of features seen during Fit.
	NFeatures int

	// FeatureRange is the output range [min, max].
	FeatureRange [2]float64
}

// NewMinMaxScaler creates a new MinMaxScaler for feature scaling.
//
// The transformation is X_scaled = (X - X.min) / (X.max - X.min) * (max - min) + min.
// Features with max == min, or with no observed values, scale to min.
//
// Parameters:
//   - featureRange: Target range for scaling [min, max]
//
// Example:
//
//	scaler := preprocessing.NewMinMaxScaler([2]float64{0.0, 1.0})
//	scaled, err := scaler.FitTransform(X)
func NewMinMaxScaler(featureRange [2]float64) *MinMaxScaler {
	s := &MinMaxScaler{FeatureRange: featureRange}
	s.ModelType = "MinMaxScaler"
	return s
}

// NewMinMaxScalerDefault creates a MinMaxScaler for the [0, 1] range.
func NewMinMaxScalerDefault() *MinMaxScaler {
	return NewMinMaxScaler([2]float64{0.0, 1.0})
}

// Fit computes the minimum and maximum of every feature, skipping NaN cells.
//
// Errors:
//   - ErrEmptyData: if X has no rows or no columns
func (m *MinMaxScaler) Fit(X mat.Matrix) (err error) {
	defer tsErrors.Recover(&err, "MinMaxScaler.Fit")
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return tsErrors.NewModelError("MinMaxScaler.Fit", "empty data", tsErrors.ErrEmptyData)
	}

	m.NFeatures = c
	m.DataMin = make([]float64, c)
	m.DataMax = make([]float64, c)
	m.Scale = make([]float64, c)
	m.Degenerate = make([]bool, c)

	for j := 0; j < c; j++ {
		lo, hi := math.NaN(), math.NaN()
		for i := 0; i < r; i++ {
			v := X.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			if math.IsNaN(lo) || v < lo {
				lo = v
			}
			if math.IsNaN(hi) || v > hi {
				hi = v
			}
		}

		m.DataMin[j] = lo
		m.DataMax[j] = hi

		dataRange := hi - lo
		if math.IsNaN(dataRange) || dataRange == 0 {
			m.Degenerate[j] = true
			m.Scale[j] = 1.0
		} else {
			m.Scale[j] = dataRange
		}
	}

	m.SetFitted()
	return nil
}

// Transform scales X with the fitted statistics. NaN cells of a
// non-degenerate feature stay NaN.
//
// Errors:
//   - ErrNotFitted: if the scaler hasn't been fitted yet
//   - ErrDimensionMismatch: if X doesn't match the number of fitted features
func (m *MinMaxScaler) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer tsErrors.Recover(&err, "MinMaxScaler.Transform")
	if !m.IsFitted() {
		return nil, tsErrors.NewNotFittedError("MinMaxScaler", "Transform")
	}

	r, c := X.Dims()
	if c != m.NFeatures {
		return nil, tsErrors.NewDimensionError("MinMaxScaler.Transform", m.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	featureRange := m.FeatureRange[1] - m.FeatureRange[0]
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			if m.Degenerate[j] {
				result.Set(i, j, m.FeatureRange[0])
				continue
			}
			scaled := (X.At(i, j)-m.DataMin[j])/m.Scale[j]*featureRange + m.FeatureRange[0]
			result.Set(i, j, scaled)
		}
	}

	return result, nil
}

// FitTransform fits the scaler on X and transforms X.
func (m *MinMaxScaler) FitTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer tsErrors.Recover(&err, "MinMaxScaler.FitTransform")
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

// InverseTransform maps scaled values back to the original range.
// Degenerate features map back to their constant (or NaN if never observed).
func (m *MinMaxScaler) InverseTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer tsErrors.Recover(&err, "MinMaxScaler.InverseTransform")
	if !m.IsFitted() {
		return nil, tsErrors.NewNotFittedError("MinMaxScaler", "InverseTransform")
	}

	r, c := X.Dims()
	if c != m.NFeatures {
		return nil, tsErrors.NewDimensionError("MinMaxScaler.InverseTransform", m.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	featureRange := m.FeatureRange[1] - m.FeatureRange[0]
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if m.Degenerate[j] {
				result.Set(i, j, m.DataMin[j])
				continue
			}
			original := ((X.At(i, j)-m.FeatureRange[0])/featureRange)*m.Scale[j] + m.DataMin[j]
			result.Set(i, j, original)
		}
	}

	return result, nil
}

// String returns a short description of the scaler.
func (m *MinMaxScaler) String() string {
	if !m.IsFitted() {
		return fmt.Sprintf("MinMaxScaler(feature_range=[%.1f, %.1f])",
			m.FeatureRange[0], m.FeatureRange[1])
	}
	return fmt.Sprintf("MinMaxScaler(feature_range=[%.1f, %.1f], n_features=%d)",
		m.FeatureRange[0], m.FeatureRange[1], m.NFeatures)
}

// Normalize min-max scales every column of t to [0, 1] using t's own
// statistics. It never reuses parameters from another call.
//
// A column with max == min, or with no observed values, becomes all zeros.
// t must contain only numeric columns.
func Normalize(t *table.Table) (*table.Table, error) {
	X, err := t.Matrix()
	if err != nil {
		return nil, tsErrors.Wrap(err, "preprocessing.Normalize")
	}
	scaled, err := NewMinMaxScalerDefault().FitTransform(X)
	if err != nil {
		return nil, tsErrors.Wrap(err, "preprocessing.Normalize")
	}
	return table.FromMatrix(scaled, t.Names())
}
