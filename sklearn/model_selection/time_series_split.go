// Package model_selection provides time-ordered cross-validation splits.
// This mirrors sklearn.model_selection.TimeSeriesSplit with its default
// settings (no gap, no max_train_size, test_size = n / (n_splits + 1)).
package model_selection

import (
	"fmt"

	"github.com/ezoic/tsreg/pkg/errors"
)

// DefaultNSplits is the fold count used by training.
const DefaultNSplits = 5

// Fold holds the row indices of one split. Train always precedes Test.
type Fold struct {
	Train []int
	Test  []int
}

// TimeSeriesSplit produces expanding-window folds over rows in their given order.
type TimeSeriesSplit struct {
	NSplits int
}

// NewTimeSeriesSplit creates a splitter with nSplits folds.
func NewTimeSeriesSplit(nSplits int) *TimeSeriesSplit {
	return &TimeSeriesSplit{NSplits: nSplits}
}

// TestSize returns the number of test rows per fold for nSamples rows.
func (s *TimeSeriesSplit) TestSize(nSamples int) int {
	return nSamples / (s.NSplits + 1)
}

// Split returns NSplits folds for nSamples rows. Fold i (0-based) trains on
// rows [0, nSamples-(NSplits-i)*testSize) and tests on the following testSize
// rows, so the last fold's test block ends at the final row.
//
// Errors:
//   - ValueError: if NSplits < 2, or nSamples is too small to give every
//     fold at least one test row and one training row
func (s *TimeSeriesSplit) Split(nSamples int) ([]Fold, error) {
	if s.NSplits < 2 {
		return nil, errors.NewValueError("TimeSeriesSplit.Split",
			fmt.Sprintf("n_splits must be at least 2, got %d", s.NSplits))
	}

	testSize := s.TestSize(nSamples)
	if testSize == 0 || nSamples-s.NSplits*testSize <= 0 {
		return nil, errors.NewValueError("TimeSeriesSplit.Split",
			fmt.Sprintf("cannot have n_splits=%d greater than n_samples=%d minus one", s.NSplits, nSamples))
	}

	folds := make([]Fold, s.NSplits)
	for i := range folds {
		trainEnd := nSamples - (s.NSplits-i)*testSize
		folds[i] = Fold{
			Train: indexRange(0, trainEnd),
			Test:  indexRange(trainEnd, trainEnd+testSize),
		}
	}
	return folds, nil
}

func indexRange(from, to int) []int {
	idx := make([]int, to-from)
	for i := range idx {
		idx[i] = from + i
	}
	return idx
}
