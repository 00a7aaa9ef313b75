package report

import (
	"bytes"
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/ezoic/tsreg/pkg/errors"
)

// PNGRenderer draws figures with gonum/plot onto a tiled raster canvas.
type PNGRenderer struct {
	// PanelWidth and PanelHeight size one tile of the grid.
	PanelWidth  vg.Length
	PanelHeight vg.Length

	// DPI of the output image.
	DPI int
}

// NewPNGRenderer returns a renderer with the default panel size and 96 DPI.
func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{
		PanelWidth:  6 * vg.Inch,
		PanelHeight: 3.5 * vg.Inch,
		DPI:         96,
	}
}

// RenderCrossValidation implements Renderer.
func (r *PNGRenderer) RenderCrossValidation(fig CrossValidationFigure) (_ []byte, err error) {
	defer errors.Recover(&err, "PNGRenderer.RenderCrossValidation")
	if len(fig.Folds) == 0 {
		return nil, errors.NewValueError("PNGRenderer.RenderCrossValidation", "no folds to draw")
	}

	grid := make([][]*plot.Plot, 0, len(fig.Folds)+1)
	for _, f := range fig.Folds {
		series, err := r.foldSeries(fig.Actual, f)
		if err != nil {
			return nil, err
		}
		scatter, err := r.scatter(
			fmt.Sprintf("Fold %d: R² = %.3f, RMSE = %.3f", f.Fold, f.R2, f.RMSE),
			f.TestActual, f.TestPred,
		)
		if err != nil {
			return nil, err
		}
		grid = append(grid, []*plot.Plot{series, scatter})
	}

	r2s := make([]float64, len(fig.Folds))
	rmses := make([]float64, len(fig.Folds))
	for i, f := range fig.Folds {
		r2s[i] = f.R2
		rmses[i] = f.RMSE
	}
	r2Trend, err := r.trend("R² per fold", "R²", r2s, fig.MeanR2, 0)
	if err != nil {
		return nil, err
	}
	rmseTrend, err := r.trend("RMSE per fold", "RMSE", rmses, fig.MeanRMSE, 1)
	if err != nil {
		return nil, err
	}
	grid = append(grid, []*plot.Plot{r2Trend, rmseTrend})

	return r.render(grid)
}

// RenderEvaluation implements Renderer.
func (r *PNGRenderer) RenderEvaluation(fig EvaluationFigure) (_ []byte, err error) {
	defer errors.Recover(&err, "PNGRenderer.RenderEvaluation")

	overlay := newPlot("Actual vs predicted", "row", "value")
	if err := addLine(overlay, "actual", indexed(fig.Actual), 0); err != nil {
		return nil, err
	}
	if err := addLine(overlay, "predicted", indexed(fig.Predicted), 1); err != nil {
		return nil, err
	}

	scatter, err := r.scatter(fmt.Sprintf("RMSE = %.3f, R² = %.3f", fig.RMSE, fig.R2), fig.Actual, fig.Predicted)
	if err != nil {
		return nil, err
	}

	return r.render([][]*plot.Plot{{overlay, scatter}})
}

// RenderPrediction implements Renderer.
func (r *PNGRenderer) RenderPrediction(fig PredictionFigure) (_ []byte, err error) {
	defer errors.Recover(&err, "PNGRenderer.RenderPrediction")

	p := newPlot("Predictions", "row", "prediction")
	if err := addLine(p, "predicted", indexed(fig.Predicted), 1); err != nil {
		return nil, err
	}
	return r.render([][]*plot.Plot{{p}})
}

func (r *PNGRenderer) foldSeries(actual []float64, f FoldPanel) (*plot.Plot, error) {
	p := newPlot(fmt.Sprintf("Fold %d", f.Fold), "row", "value")
	if err := addLine(p, "actual", indexed(actual), 0); err != nil {
		return nil, err
	}
	if err := addLine(p, "train prediction", at(f.TrainIndex, f.TrainPred), 2); err != nil {
		return nil, err
	}
	if err := addLine(p, "test prediction", at(f.TestIndex, f.TestPred), 1); err != nil {
		return nil, err
	}
	return p, nil
}

// scatter plots predicted against actual with an identity reference line.
func (r *PNGRenderer) scatter(title string, actual, predicted []float64) (*plot.Plot, error) {
	p := newPlot(title, "actual", "predicted")
	pts := pairs(actual, predicted)
	if len(pts) == 0 {
		return p, nil
	}

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, errors.Wrap(err, "scatter")
	}
	s.GlyphStyle.Color = plotutil.Color(0)
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(2.5)
	p.Add(s)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, pt := range pts {
		lo = math.Min(lo, math.Min(pt.X, pt.Y))
		hi = math.Max(hi, math.Max(pt.X, pt.Y))
	}
	identity, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return nil, errors.Wrap(err, "identity line")
	}
	identity.Color = plotutil.Color(1)
	identity.Dashes = plotutil.Dashes(1)
	p.Add(identity)
	p.Legend.Add("y = x", identity)
	return p, nil
}

// trend plots one score per fold with its mean as a dashed reference.
func (r *PNGRenderer) trend(title, label string, scores []float64, mean float64, colorIdx int) (*plot.Plot, error) {
	p := newPlot(title, "fold", label)
	pts := make(plotter.XYs, 0, len(scores))
	for i, v := range scores {
		if finite(v) {
			pts = append(pts, plotter.XY{X: float64(i + 1), Y: v})
		}
	}
	if len(pts) == 0 {
		return p, nil
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, errors.Wrap(err, "trend")
	}
	line.Color = plotutil.Color(colorIdx)
	points.Color = plotutil.Color(colorIdx)
	p.Add(line, points)
	p.Legend.Add(label, line, points)

	if finite(mean) {
		ref, err := plotter.NewLine(plotter.XYs{{X: 1, Y: mean}, {X: float64(len(scores)), Y: mean}})
		if err != nil {
			return nil, errors.Wrap(err, "mean line")
		}
		ref.Color = plotutil.Color(3)
		ref.Dashes = plotutil.Dashes(2)
		p.Add(ref)
		p.Legend.Add(fmt.Sprintf("mean = %.3f", mean), ref)
	}
	return p, nil
}

func (r *PNGRenderer) render(grid [][]*plot.Plot) ([]byte, error) {
	rows, cols := len(grid), len(grid[0])
	img := vgimg.NewWith(
		vgimg.UseWH(vg.Length(cols)*r.PanelWidth, vg.Length(rows)*r.PanelHeight),
		vgimg.UseDPI(r.DPI),
	)
	dc := draw.New(img)

	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      4 * vg.Millimeter,
		PadY:      6 * vg.Millimeter,
		PadTop:    2 * vg.Millimeter,
		PadBottom: 2 * vg.Millimeter,
		PadLeft:   2 * vg.Millimeter,
		PadRight:  2 * vg.Millimeter,
	}

	canvases := plot.Align(grid, tiles, dc)
	for j := range grid {
		for i, p := range grid[j] {
			if p != nil {
				p.Draw(canvases[j][i])
			}
		}
	}

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "encode png")
	}
	return buf.Bytes(), nil
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p
}

func addLine(p *plot.Plot, name string, pts plotter.XYs, colorIdx int) error {
	if len(pts) == 0 {
		return nil
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrapf(err, "line %q", name)
	}
	l.Color = plotutil.Color(colorIdx)
	l.Width = vg.Points(1.2)
	p.Add(l)
	p.Legend.Add(name, l)
	return nil
}

// indexed pairs each value with its row number, skipping non-finite values.
func indexed(ys []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(ys))
	for i, y := range ys {
		if finite(y) {
			pts = append(pts, plotter.XY{X: float64(i), Y: y})
		}
	}
	return pts
}

func at(index []int, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(ys))
	for i, y := range ys {
		if i < len(index) && finite(y) {
			pts = append(pts, plotter.XY{X: float64(index[i]), Y: y})
		}
	}
	return pts
}

func pairs(xs, ys []float64) plotter.XYs {
	n := min(len(xs), len(ys))
	pts := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		if finite(xs[i]) && finite(ys[i]) {
			pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
		}
	}
	return pts
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
