package report

import (
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/wrcfit/pkg/errors"
	"github.com/YuminosukeSato/wrcfit/retention"
)

// Default figure size.
const (
	DefaultWidth  = 16 * vg.Centimeter
	DefaultHeight = 11 * vg.Centimeter
)

// PlotOptions sets the texts of a figure. Empty axis labels fall back to
// "Psi" and "Theta".
type PlotOptions struct {
	Title  string
	XLabel string
	YLabel string
}

// Plot draws the measurements of s and every series on a logarithmic suction
// axis. Measurements at zero suction are left out of the scatter.
func Plot(s retention.Sample, series []Series, opts PlotOptions) (*plot.Plot, error) {
	grid := PlotGrid(s)
	if grid == nil {
		return nil, errors.NewValueError("report.Plot", "no positive suction to draw on a log axis")
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = orDefault(opts.XLabel, "Psi")
	p.Y.Label.Text = orDefault(opts.YLabel, "Theta")
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for _, sr := range series {
		xys := make(plotter.XYs, len(grid))
		for i, x := range grid {
			xys[i].X = x
			xys[i].Y = sr.Curve.Eval(x)
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, errors.Wrapf(err, "plot %s", sr.Label)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = sr.Color
		if line.LineStyle.Color == nil {
			line.LineStyle.Color = color.Black
		}
		p.Add(line)
		p.Legend.Add(sr.Label, line)
	}

	var pts plotter.XYs
	for i := 0; i < s.Len(); i++ {
		psi, theta := s.At(i)
		if psi > 0 {
			pts = append(pts, plotter.XY{X: psi, Y: theta})
		}
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, errors.Wrap(err, "plot data")
	}
	sc.GlyphStyle.Color = ColorData
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	sc.GlyphStyle.Radius = vg.Points(3)
	p.Add(sc)
	p.Legend.Add("Data", sc)

	return p, nil
}

// WritePlot renders p to w. format is one of the gonum/plot formats such as
// "png", "svg" or "pdf"; a zero size uses DefaultWidth and DefaultHeight.
func WritePlot(w io.Writer, p *plot.Plot, format string, width, height vg.Length) error {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return errors.Wrapf(errors.ErrUnsupportedFormat, "plot format %q: %v", format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrap(err, "write plot")
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
