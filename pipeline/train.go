package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/tsreg/core/model"
	"github.com/ezoic/tsreg/linear"
	"github.com/ezoic/tsreg/metrics"
	"github.com/ezoic/tsreg/pkg/errors"
	"github.com/ezoic/tsreg/pkg/log"
	"github.com/ezoic/tsreg/preprocessing"
	"github.com/ezoic/tsreg/report"
	"github.com/ezoic/tsreg/sklearn/model_selection"
	"github.com/ezoic/tsreg/storage"
)

// FoldScore is the held-out fit quality of one cross-validation fold.
type FoldScore struct {
	Fold      int     `json:"fold"`
	TrainSize int     `json:"train_size"`
	TestSize  int     `json:"test_size"`
	R2        float64 `json:"r2"`
	RMSE      float64 `json:"rmse"`
}

// TrainReport is the result of a training run.
type TrainReport struct {
	ChartURL string
	Folds    []FoldScore
	MeanR2   float64
	MeanRMSE float64
	Samples  int
	Weights  *model.Weights
}

// TrainBlobs trains on the feature and target blobs stored under xKey and
// yKey in the data container. It cross-validates with expanding time-ordered
// folds, refits on every row, persists the model and the chart, and returns
// the chart URL with the fold scores.
//
// Errors:
//   - *errors.StorageError: a blob is missing or the store failed
//   - *errors.DecodeError: a blob is not a valid table
//   - *errors.ValidationError: the cleaned data is unusable; nothing is written
func (s *Service) TrainBlobs(ctx context.Context, xKey, yKey string) (*TrainReport, error) {
	release := s.locks.Acquire(
		[]storage.Ref{s.modelRef(), s.chartRef(storage.KeyCVChart)},
		[]storage.Ref{s.dataRef(xKey), s.dataRef(yKey)},
	)
	defer release()
	return s.trainBlobs(ctx, xKey, yKey)
}

func (s *Service) trainBlobs(ctx context.Context, xKey, yKey string) (*TrainReport, error) {
	start := time.Now()
	logger := s.logger.With(log.StageKey, "train")

	ds, err := s.ingest(ctx, xKey, yKey)
	if err != nil {
		return nil, err
	}

	normalized, err := preprocessing.Normalize(ds.X)
	if err != nil {
		return nil, err
	}
	X, err := normalized.Matrix()
	if err != nil {
		return nil, err
	}
	n := X.RawMatrix().Rows
	y := mat.NewVecDense(n, column(ds.y.Values))

	logger.Info("Training started",
		log.SamplesKey, n,
		log.FeaturesKey, normalized.NumCols(),
	)

	splitter := model_selection.NewTimeSeriesSplit(s.opts.NSplits)
	folds, err := splitter.Split(n)
	if err != nil {
		return nil, errors.Wrap(err, "cross-validation")
	}

	fig := report.CrossValidationFigure{Actual: column(ds.y.Values)}
	rep := &TrainReport{Samples: n}
	r2s := make([]float64, 0, len(folds))
	rmses := make([]float64, 0, len(folds))

	for i, fold := range folds {
		panel, err := fitFold(X, y, fold, i+1)
		if err != nil {
			return nil, err
		}
		logger.Debug("Fold scored",
			log.FoldKey, panel.Fold,
			"r2", panel.R2,
			"rmse", panel.RMSE,
		)

		fig.Folds = append(fig.Folds, *panel)
		rep.Folds = append(rep.Folds, FoldScore{
			Fold:      panel.Fold,
			TrainSize: len(fold.Train),
			TestSize:  len(fold.Test),
			R2:        panel.R2,
			RMSE:      panel.RMSE,
		})
		r2s = append(r2s, panel.R2)
		rmses = append(rmses, panel.RMSE)
	}
	rep.MeanR2 = metrics.Mean(r2s)
	rep.MeanRMSE = metrics.Mean(rmses)
	fig.MeanR2, fig.MeanRMSE = rep.MeanR2, rep.MeanRMSE

	final := linear.NewLinearRegression()
	final.FeatureNames = normalized.Names()
	if err := final.Fit(X, y); err != nil {
		return nil, errors.Wrap(err, "final fit")
	}
	if err := s.saveModel(ctx, final); err != nil {
		return nil, err
	}
	if rep.Weights, err = final.ExportWeights(); err != nil {
		return nil, err
	}

	png, err := s.renderer.RenderCrossValidation(fig)
	if err != nil {
		return nil, errors.Wrap(err, "render cross-validation chart")
	}
	if rep.ChartURL, err = s.put(ctx, s.chartRef(storage.KeyCVChart), png); err != nil {
		return nil, err
	}

	logger.Info("Training completed",
		log.SamplesKey, n,
		"mean_r2", rep.MeanR2,
		"mean_rmse", rep.MeanRMSE,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return rep, nil
}

// fitFold fits on the fold's training rows and scores on its test rows.
func fitFold(X *mat.Dense, y *mat.VecDense, fold model_selection.Fold, number int) (*report.FoldPanel, error) {
	Xtr, ytr := rows(X, y, fold.Train)
	Xte, yte := rows(X, y, fold.Test)

	lr := linear.NewLinearRegression()
	if err := lr.Fit(Xtr, ytr); err != nil {
		return nil, errors.Wrapf(err, "cross-validation fold %d", number)
	}
	trainPred, err := lr.PredictSlice(Xtr)
	if err != nil {
		return nil, errors.Wrapf(err, "cross-validation fold %d", number)
	}
	testPred, err := lr.PredictSlice(Xte)
	if err != nil {
		return nil, errors.Wrapf(err, "cross-validation fold %d", number)
	}

	testPredVec := mat.NewVecDense(len(testPred), testPred)
	r2, err := metrics.R2Score(yte, testPredVec)
	if err != nil {
		return nil, errors.Wrapf(err, "cross-validation fold %d", number)
	}
	rmse, err := metrics.RMSE(yte, testPredVec)
	if err != nil {
		return nil, errors.Wrapf(err, "cross-validation fold %d", number)
	}
	if math.IsNaN(r2) || math.IsInf(r2, 0) || math.IsNaN(rmse) || math.IsInf(rmse, 0) {
		return nil, errors.NewValueError("pipeline.fitFold",
			fmt.Sprintf("fold %d produced non-finite scores (r2=%v, rmse=%v)", number, r2, rmse))
	}

	return &report.FoldPanel{
		Fold:       number,
		TrainIndex: fold.Train,
		TestIndex:  fold.Test,
		TrainPred:  trainPred,
		TestPred:   testPred,
		TestActual: column(yte.RawVector().Data),
		R2:         r2,
		RMSE:       rmse,
	}, nil
}

// rows copies the selected rows of X and y.
func rows(X *mat.Dense, y *mat.VecDense, idx []int) (*mat.Dense, *mat.VecDense) {
	_, c := X.Dims()
	Xs := mat.NewDense(len(idx), c, nil)
	ys := mat.NewVecDense(len(idx), nil)
	for i, r := range idx {
		Xs.SetRow(i, X.RawRowView(r))
		ys.SetVec(i, y.AtVec(r))
	}
	return Xs, ys
}
