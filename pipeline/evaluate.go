package pipeline

import (
	"context"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/tsreg/linear"
	"github.com/ezoic/tsreg/metrics"
	"github.com/ezoic/tsreg/pkg/errors"
	"github.com/ezoic/tsreg/pkg/log"
	"github.com/ezoic/tsreg/preprocessing"
	"github.com/ezoic/tsreg/report"
	"github.com/ezoic/tsreg/storage"
)

// ModelSource tells where the model used by an evaluation came from.
type ModelSource int

const (
	// ModelLoaded means the persisted model was used.
	ModelLoaded ModelSource = iota
	// ModelFreshlyFitted means no model existed, so one was fitted on the
	// evaluation data and persisted as the canonical model.
	ModelFreshlyFitted
)

func (m ModelSource) String() string {
	switch m {
	case ModelLoaded:
		return "loaded"
	case ModelFreshlyFitted:
		return "freshly_fitted"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m ModelSource) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// EvaluateReport is the result of an evaluation run.
type EvaluateReport struct {
	ChartURL    string
	ModelSource ModelSource
	RMSE        float64
	R2          float64
	Samples     int
}

// EvaluateBlobs scores the persisted model on the labeled blobs under xKey
// and yKey. Without a persisted model it fits one on the evaluation data and
// persists it; that is reported through ModelSource, not as an error.
func (s *Service) EvaluateBlobs(ctx context.Context, xKey, yKey string) (*EvaluateReport, error) {
	release := s.locks.Acquire(
		[]storage.Ref{s.modelRef(), s.chartRef(storage.KeyEvalChart)},
		[]storage.Ref{s.dataRef(xKey), s.dataRef(yKey)},
	)
	defer release()
	return s.evaluateBlobs(ctx, xKey, yKey)
}

func (s *Service) evaluateBlobs(ctx context.Context, xKey, yKey string) (*EvaluateReport, error) {
	start := time.Now()
	logger := s.logger.With(log.StageKey, "evaluate")

	ds, err := s.ingest(ctx, xKey, yKey)
	if err != nil {
		return nil, err
	}

	lr, err := s.loadModel(ctx)
	if err != nil {
		return nil, err
	}
	source := ModelLoaded

	features := ds.X
	if lr != nil {
		if features, err = alignFeatures(ds.X, lr); err != nil {
			return nil, err
		}
	}

	normalized, err := preprocessing.Normalize(features)
	if err != nil {
		return nil, err
	}
	X, err := normalized.Matrix()
	if err != nil {
		return nil, err
	}
	n := X.RawMatrix().Rows
	y := mat.NewVecDense(n, column(ds.y.Values))

	if lr == nil {
		logger.Warn("No persisted model, fitting one on the evaluation data")
		lr = linear.NewLinearRegression()
		lr.FeatureNames = normalized.Names()
		if err := lr.Fit(X, y); err != nil {
			return nil, errors.Wrap(err, "fallback fit")
		}
		if err := s.saveModel(ctx, lr); err != nil {
			return nil, err
		}
		source = ModelFreshlyFitted
	}

	pred, err := lr.PredictSlice(X)
	if err != nil {
		return nil, err
	}
	predVec := mat.NewVecDense(n, pred)
	rep := &EvaluateReport{ModelSource: source, Samples: n}
	if rep.RMSE, err = metrics.RMSE(y, predVec); err != nil {
		return nil, err
	}
	if rep.R2, err = metrics.R2Score(y, predVec); err != nil {
		return nil, err
	}

	png, err := s.renderer.RenderEvaluation(report.EvaluationFigure{
		Actual:    column(ds.y.Values),
		Predicted: pred,
		RMSE:      rep.RMSE,
		R2:        rep.R2,
	})
	if err != nil {
		return nil, errors.Wrap(err, "render evaluation chart")
	}
	if rep.ChartURL, err = s.put(ctx, s.chartRef(storage.KeyEvalChart), png); err != nil {
		return nil, err
	}

	logger.Info("Evaluation completed",
		log.SamplesKey, n,
		"model_source", source.String(),
		"rmse", rep.RMSE,
		"r2", rep.R2,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return rep, nil
}
