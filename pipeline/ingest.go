package pipeline

import (
	"context"

	"github.com/ezoic/tsreg/codec"
	"github.com/ezoic/tsreg/core/table"
	"github.com/ezoic/tsreg/linear"
	"github.com/ezoic/tsreg/pkg/errors"
	"github.com/ezoic/tsreg/storage"
)

// dataset is a cleaned feature table with its target.
type dataset struct {
	X *table.Table
	y table.Column
}

func (s *Service) fetchTable(ctx context.Context, ref storage.Ref) (*table.Table, error) {
	raw, err := s.get(ctx, ref)
	if err != nil {
		return nil, err
	}
	t, err := codec.Decode(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", ref)
	}
	return t, nil
}

// ingest fetches a feature blob and a target blob, aligns them by row
// position, fills interior gaps by linear interpolation, drops rows that are
// still incomplete and validates the result.
func (s *Service) ingest(ctx context.Context, xKey, yKey string) (*dataset, error) {
	X, err := s.fetchTable(ctx, s.dataRef(xKey))
	if err != nil {
		return nil, err
	}
	Y, err := s.fetchTable(ctx, s.dataRef(yKey))
	if err != nil {
		return nil, err
	}
	if Y.NumCols() == 0 {
		return nil, errors.NewDecodeError("pipeline.ingest", errors.Newf("target blob %s has no columns", yKey))
	}

	target := &table.Table{Columns: []table.Column{Y.Columns[0]}}
	combined := table.Concat(X, target).Interpolate().DropIncomplete()

	nX := X.NumCols()
	ds := &dataset{
		X: &table.Table{Columns: combined.Columns[:nX]},
		y: combined.Columns[nX],
	}
	if err := Validate(ds.X, &ds.y); err != nil {
		return nil, err
	}
	return ds, nil
}

// alignFeatures selects the model's feature columns from X in training order.
// Models without recorded names use X as is.
func alignFeatures(X *table.Table, lr *linear.LinearRegression) (*table.Table, error) {
	if len(lr.FeatureNames) == 0 {
		return X, nil
	}
	return X.Select(lr.FeatureNames...)
}

func column(values []float64) []float64 {
	return append([]float64(nil), values...)
}
