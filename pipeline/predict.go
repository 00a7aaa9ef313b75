package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/ezoic/tsreg/core/table"
	"github.com/ezoic/tsreg/pkg/errors"
	"github.com/ezoic/tsreg/pkg/log"
	"github.com/ezoic/tsreg/preprocessing"
	"github.com/ezoic/tsreg/report"
	"github.com/ezoic/tsreg/storage"
)

// PredictionColumn names the column added by PredictionsTable.
const PredictionColumn = "prediction"

// PredictReport is the result of a prediction run.
type PredictReport struct {
	ChartURL    string
	Predictions []float64
	Samples     int
}

// PredictBlob applies the persisted model to the feature blob under xKey.
// It never trains: without a persisted model it fails with
// *errors.ModelNotFoundError. No row-count gate applies; interior gaps are
// interpolated and edge gaps take the nearest observed value.
func (s *Service) PredictBlob(ctx context.Context, xKey string) (*PredictReport, error) {
	release := s.locks.Acquire(
		[]storage.Ref{s.chartRef(storage.KeyPredictChart)},
		[]storage.Ref{s.modelRef(), s.dataRef(xKey)},
	)
	defer release()
	return s.predictBlob(ctx, xKey)
}

func (s *Service) predictBlob(ctx context.Context, xKey string) (*PredictReport, error) {
	start := time.Now()

	_, pred, err := s.runPrediction(ctx, xKey)
	if err != nil {
		return nil, err
	}

	png, err := s.renderer.RenderPrediction(report.PredictionFigure{Predicted: pred})
	if err != nil {
		return nil, errors.Wrap(err, "render prediction chart")
	}
	url, err := s.put(ctx, s.chartRef(storage.KeyPredictChart), png)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Prediction completed",
		log.StageKey, "predict",
		log.PredsKey, len(pred),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return &PredictReport{ChartURL: url, Predictions: pred, Samples: len(pred)}, nil
}

// PredictionsTable reruns the last prediction input through the persisted
// model and returns the input columns followed by a "prediction" column.
// Nothing is retrained or written.
func (s *Service) PredictionsTable(ctx context.Context) (*table.Table, error) {
	release := s.locks.Acquire(nil, []storage.Ref{s.modelRef(), s.dataRef(storage.KeyPredictX)})
	defer release()

	input, pred, err := s.runPrediction(ctx, storage.KeyPredictX)
	if err != nil {
		return nil, err
	}
	out := input.Clone()
	if err := out.Append(table.NewNumericColumn(PredictionColumn, pred)); err != nil {
		return nil, err
	}
	return out, nil
}

// runPrediction returns the decoded input table and its predictions.
func (s *Service) runPrediction(ctx context.Context, xKey string) (*table.Table, []float64, error) {
	lr, err := s.loadModel(ctx)
	if err != nil {
		return nil, nil, err
	}
	if lr == nil {
		ref := s.modelRef()
		return nil, nil, errors.NewModelNotFoundError(ref.Container, ref.Key)
	}

	input, err := s.fetchTable(ctx, s.dataRef(xKey))
	if err != nil {
		return nil, nil, err
	}

	features, err := alignFeatures(input.Interpolate().FillEdges(), lr)
	if err != nil {
		return nil, nil, err
	}
	if text := features.TextColumns(); len(text) > 0 {
		return nil, nil, errors.NewValidationError("pipeline.Predict", errors.Violation{
			Rule:    errors.RuleNonNumericColumns,
			Message: "non-numeric columns: " + strings.Join(text, ", "),
			Columns: text,
		})
	}

	normalized, err := preprocessing.Normalize(features)
	if err != nil {
		return nil, nil, err
	}
	X, err := normalized.Matrix()
	if err != nil {
		return nil, nil, err
	}
	pred, err := lr.PredictSlice(X)
	if err != nil {
		return nil, nil, err
	}
	return input, pred, nil
}
