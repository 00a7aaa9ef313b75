package pipeline

import (
	"context"

	"github.com/ezoic/tsreg/codec"
	"github.com/ezoic/tsreg/core/table"
	"github.com/ezoic/tsreg/pkg/errors"
	"github.com/ezoic/tsreg/storage"
)

// Train splits t into features and the target column, stores both under the
// training data keys and runs TrainBlobs on them.
func (s *Service) Train(ctx context.Context, t *table.Table, target string) (*TrainReport, error) {
	X, y, err := t.Split(target)
	if err != nil {
		return nil, err
	}

	xRef, yRef := s.dataRef(storage.KeyTrainX), s.dataRef(storage.KeyTrainY)
	release := s.locks.Acquire(
		[]storage.Ref{xRef, yRef, s.modelRef(), s.chartRef(storage.KeyCVChart)}, nil,
	)
	defer release()

	if err := s.storeSplit(ctx, xRef, yRef, X, y); err != nil {
		return nil, err
	}
	return s.trainBlobs(ctx, storage.KeyTrainX, storage.KeyTrainY)
}

// Evaluate splits t, stores it under the evaluation data keys and runs
// EvaluateBlobs on them.
func (s *Service) Evaluate(ctx context.Context, t *table.Table, target string) (*EvaluateReport, error) {
	X, y, err := t.Split(target)
	if err != nil {
		return nil, err
	}

	xRef, yRef := s.dataRef(storage.KeyEvalX), s.dataRef(storage.KeyEvalY)
	release := s.locks.Acquire(
		[]storage.Ref{xRef, yRef, s.modelRef(), s.chartRef(storage.KeyEvalChart)}, nil,
	)
	defer release()

	if err := s.storeSplit(ctx, xRef, yRef, X, y); err != nil {
		return nil, err
	}
	return s.evaluateBlobs(ctx, storage.KeyEvalX, storage.KeyEvalY)
}

// Predict stores t under the prediction input key and runs PredictBlob.
// The persisted model is checked first so a missing model does not replace
// the previous prediction input.
func (s *Service) Predict(ctx context.Context, t *table.Table) (*PredictReport, error) {
	xRef := s.dataRef(storage.KeyPredictX)
	release := s.locks.Acquire(
		[]storage.Ref{xRef, s.chartRef(storage.KeyPredictChart)},
		[]storage.Ref{s.modelRef()},
	)
	defer release()

	ok, err := s.exists(ctx, s.modelRef())
	if err != nil {
		return nil, err
	}
	if !ok {
		ref := s.modelRef()
		return nil, errors.NewModelNotFoundError(ref.Container, ref.Key)
	}

	raw, err := codec.Encode(t)
	if err != nil {
		return nil, err
	}
	if _, err := s.put(ctx, xRef, raw); err != nil {
		return nil, err
	}
	return s.predictBlob(ctx, storage.KeyPredictX)
}

func (s *Service) storeSplit(ctx context.Context, xRef, yRef storage.Ref, X, y *table.Table) error {
	rawX, err := codec.Encode(X)
	if err != nil {
		return err
	}
	rawY, err := codec.Encode(y)
	if err != nil {
		return err
	}
	if _, err := s.put(ctx, xRef, rawX); err != nil {
		return err
	}
	_, err = s.put(ctx, yRef, rawY)
	return err
}
