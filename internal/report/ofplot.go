package report

import (
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SaveOutlierFactorPlot writes a PNG of the sorted outlier-factor curve
// with a horizontal line at the chosen upper bound. Points above the line
// are excluded from every cluster; the plot makes it easy to judge whether
// the bound sits in the curve's tail or cuts into the bulk.
func SaveOutlierFactorPlot(path string, outlierFactor []float64, upperBound float64) error {
	if len(outlierFactor) == 0 {
		return fmt.Errorf("report: no outlier factors to plot")
	}

	sorted := append([]float64(nil), outlierFactor...)
	sort.Float64s(sorted)

	pts := make(plotter.XYs, len(sorted))
	for i, v := range sorted {
		pts[i] = plotter.XY{X: float64(i), Y: v}
	}

	p := plot.New()
	p.Title.Text = "ST-BOF distribution"
	p.X.Label.Text = "rank"
	p.Y.Label.Text = "outlier factor"

	curve, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("report: building curve: %w", err)
	}
	curve.Width = vg.Points(1.5)

	bound := plotter.NewFunction(func(x float64) float64 { return upperBound })
	bound.Color = color.RGBA{R: 200, A: 255}
	bound.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}

	p.Add(curve, bound)
	p.Legend.Add("sorted ST-BOF", curve)
	p.Legend.Add(fmt.Sprintf("upper bound %.3f", upperBound), bound)

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("report: saving plot: %w", err)
	}
	return nil
}
