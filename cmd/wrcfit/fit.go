package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/YuminosukeSato/wrcfit/dataset"
	"github.com/YuminosukeSato/wrcfit/fit"
	"github.com/YuminosukeSato/wrcfit/pkg/errors"
	"github.com/YuminosukeSato/wrcfit/pkg/log"
	"github.com/YuminosukeSato/wrcfit/report"
	"github.com/YuminosukeSato/wrcfit/retention"
)

type fitCmd struct {
	Input string `arg:"" type:"existingfile" help:"Measurement table with a suction and a water content column."`

	Model      string    `short:"m" default:"VanGenuchten" env:"WRCFIT_MODEL" help:"Model: VanGenuchten, BrooksCorey or FredlundXing (abbreviations accepted)."`
	Quantiles  bool      `short:"q" help:"Fit the quantile envelope instead of the best fit."`
	Levels     []float64 `default:"0.05,0.5,0.95" help:"Quantile levels of the envelope."`
	Seed       int64     `default:"-1" env:"WRCFIT_SEED" help:"Random seed, negative for a random one."`
	MaxIter    int       `default:"1000" env:"WRCFIT_MAX_ITER" help:"Iteration budget of the global search."`
	Population int       `default:"24" help:"Candidates per generation of the quantile search."`
	Tolerance  float64   `default:"0.3" help:"Relative slack of the saturation and residual content bounds."`
	NoPolish   bool      `help:"Skip the local refinement of the best fit."`

	Out         string `short:"o" type:"path" default:"." help:"Output directory."`
	Prefix      string `help:"Output file prefix, defaults to the input name."`
	PlotFormat  string `enum:"png,svg,pdf" default:"png" help:"Plot format."`
	TableFormat string `enum:"csv,xlsx" default:"csv" env:"WRCFIT_TABLE_FORMAT" help:"Format of the curve and parameter tables."`
	Title       string `help:"Plot title."`
	NoFiles     bool   `help:"Print the parameters only."`
}

func (f *fitCmd) options(logger log.Logger) []fit.Option {
	return []fit.Option{
		fit.WithSeed(f.Seed),
		fit.WithMaxIter(f.MaxIter),
		fit.WithPopulation(f.Population),
		fit.WithTolerance(f.Tolerance),
		fit.WithLocalSearch(!f.NoPolish),
		fit.WithLogger(logger),
	}
}

func (f *fitCmd) Run(ctx context.Context, e *env) error {
	table, err := dataset.Open(f.Input)
	if err != nil {
		return err
	}
	logger := e.logger.With(log.SourceKey, f.Input)

	var (
		series []report.Series
		seed   int64
	)
	if f.Quantiles {
		qs, err := fit.FitQuantiles(ctx, table.Sample, f.Model, f.Levels, f.options(logger)...)
		e.recorder.ObserveQuantiles(f.Model, qs, err)
		if err != nil {
			return err
		}
		series = report.QuantileSeries(qs)
		seed = qs.Fits[0].Seed
		fmt.Fprintf(e.stdout, "combined pinball loss: %.6e\n", qs.Loss)
	} else {
		res, err := fit.Fit(ctx, table.Sample, f.Model, f.options(logger)...)
		e.recorder.ObserveFit(f.Model, log.ModePoint, res, err)
		if err != nil {
			return err
		}
		series = report.PointSeries(res)
		seed = res.Seed
		fmt.Fprintf(e.stdout, "loss: %.6e  rmse: %.6e  r2: %.4f  converged: %t\n",
			res.Loss, res.RMSE, res.R2, res.Converged)
	}
	fmt.Fprintf(e.stdout, "seed: %d\n", seed)
	if err := printParams(e, series); err != nil {
		return err
	}

	if f.NoFiles {
		return nil
	}
	return f.export(e, table, series)
}

func (f *fitCmd) export(e *env, table *dataset.Table, series []report.Series) error {
	if err := os.MkdirAll(f.Out, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", f.Out)
	}
	prefix := f.Prefix
	if prefix == "" {
		prefix = strings.TrimSuffix(filepath.Base(f.Input), filepath.Ext(f.Input))
	}
	base := filepath.Join(f.Out, prefix)

	p, err := report.Plot(table.Sample, series, report.PlotOptions{
		Title:  f.Title,
		XLabel: table.PsiName,
		YLabel: table.ThetaName,
	})
	if err != nil {
		return err
	}
	outputs := []struct {
		path  string
		write func(*os.File) error
	}{
		{base + "_plot." + f.PlotFormat, func(w *os.File) error {
			return report.WritePlot(w, p, f.PlotFormat, 0, 0)
		}},
		{base + "_curve." + f.TableFormat, func(w *os.File) error {
			if f.TableFormat == "xlsx" {
				return report.WriteCurveXLSX(w, report.ExportGrid(), series)
			}
			return report.WriteCurveCSV(w, report.ExportGrid(), series)
		}},
		{base + "_params." + f.TableFormat, func(w *os.File) error {
			if f.TableFormat == "xlsx" {
				return report.WriteParamsXLSX(w, series)
			}
			return report.WriteParamsCSV(w, series)
		}},
	}
	for _, o := range outputs {
		if err := writeFile(o.path, o.write); err != nil {
			return err
		}
		e.logger.Info("Wrote output", log.OperationKey, log.OperationExport, "path", o.path)
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()
	return write(f)
}

func printParams(e *env, series []report.Series) error {
	v := series[0].Curve.Variant
	m, err := retention.ModelOf(v)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s", m.DisplayName)
	for _, s := range series {
		fmt.Fprintf(tw, "\t%s", s.Column)
	}
	fmt.Fprintln(tw)
	for i, name := range m.ParamNames {
		fmt.Fprint(tw, name)
		for _, s := range series {
			fmt.Fprintf(tw, "\t%.6e", s.Curve.Params[i])
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
