package main

import (
	"fmt"
	"strconv"

	"github.com/YuminosukeSato/wrcfit/fit"
	"github.com/YuminosukeSato/wrcfit/pkg/errors"
	"github.com/YuminosukeSato/wrcfit/report"
	"github.com/YuminosukeSato/wrcfit/retention"
)

type curveCmd struct {
	Model  string    `short:"m" required:"" help:"Model name."`
	Params []float64 `required:"" help:"Parameter vector in catalog order, comma separated."`
	Psi    []float64 `help:"Suctions to evaluate at, defaults to the export grid."`
}

func (c *curveCmd) Run(e *env) error {
	if len(c.Params) != retention.NumParams {
		return errors.NewDimensionError("curve --params", retention.NumParams, len(c.Params))
	}
	var p retention.Params
	copy(p[:], c.Params)

	eval, err := fit.CurveEvaluator(c.Model)
	if err != nil {
		return err
	}
	psi := c.Psi
	if len(psi) == 0 {
		psi = report.ExportGrid()
	}
	theta, err := eval(psi, p)
	if err != nil {
		return err
	}

	fmt.Fprintf(e.stdout, "%s,%s\n", report.PressureColumn, "Theta")
	for i := range psi {
		fmt.Fprintf(e.stdout, "%s,%s\n",
			strconv.FormatFloat(psi[i], 'g', -1, 64),
			strconv.FormatFloat(theta[i], 'g', -1, 64))
	}
	return nil
}
