package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/YuminosukeSato/wrcfit/core/parallel"
	"github.com/YuminosukeSato/wrcfit/pkg/errors"
)

// PressureColumn heads the suction column of the curve table.
const PressureColumn = "Pressure"

// CurveTable evaluates every series at every suction of grid. Row i holds
// grid[i] followed by one water content per series.
func CurveTable(grid []float64, series []Series) ([][]float64, error) {
	rows := make([][]float64, len(grid))
	err := parallel.ParallelizeWithThreshold(len(grid), parallel.DefaultThreshold, func(start, end int) error {
		for i := start; i < end; i++ {
			row := make([]float64, len(series)+1)
			row[0] = grid[i]
			for j, s := range series {
				row[j+1] = s.Curve.Eval(grid[i])
			}
			rows[i] = row
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "curve table")
	}
	return rows, nil
}

// WriteCurveCSV writes the curve table of series on grid as CSV with a
// Pressure column followed by one column per series.
func WriteCurveCSV(w io.Writer, grid []float64, series []Series) error {
	if len(series) == 0 {
		return errors.NewValueError("report.WriteCurveCSV", "no series to export")
	}
	rows, err := CurveTable(grid, series)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := make([]string, 0, len(series)+1)
	header = append(header, PressureColumn)
	for _, s := range series {
		header = append(header, s.Column)
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "write curve table")
	}

	record := make([]string, len(header))
	for _, row := range rows {
		for j, v := range row {
			record[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, "write curve table")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "write curve table")
}

// WriteParamsCSV writes one row per parameter and one column per series. All
// series must belong to the same model family.
func WriteParamsCSV(w io.Writer, series []Series) error {
	m, err := commonModel("report.WriteParamsCSV", series)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{m.Abbrev + " Parameters"}
	for _, s := range series {
		header = append(header, s.Column)
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "write parameter table")
	}
	for i, name := range m.ParamNames {
		record := []string{name}
		for _, s := range series {
			record = append(record, fmt.Sprintf("%.6e", s.Curve.Params[i]))
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, "write parameter table")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "write parameter table")
}
