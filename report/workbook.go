package report

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/YuminosukeSato/wrcfit/pkg/errors"
	"github.com/YuminosukeSato/wrcfit/retention"
)

// Sheet names of the workbook exports.
const (
	CurveSheet  = "Curves"
	ParamsSheet = "Parameters"
)

// WriteCurveXLSX writes the curve table of series on grid as a workbook with
// one sheet laid out like WriteCurveCSV. Values are stored as numbers.
func WriteCurveXLSX(w io.Writer, grid []float64, series []Series) error {
	if len(series) == 0 {
		return errors.NewValueError("report.WriteCurveXLSX", "no series to export")
	}
	rows, err := CurveTable(grid, series)
	if err != nil {
		return err
	}

	header := make([]any, 0, len(series)+1)
	header = append(header, PressureColumn)
	for _, s := range series {
		header = append(header, s.Column)
	}
	records := make([][]any, 0, len(rows)+1)
	records = append(records, header)
	for _, r := range rows {
		rec := make([]any, len(r))
		for j, v := range r {
			rec[j] = v
		}
		records = append(records, rec)
	}
	return writeSheet(w, CurveSheet, records)
}

// WriteParamsXLSX writes the parameter table of series as a workbook with
// one sheet laid out like WriteParamsCSV. Values are stored as numbers.
func WriteParamsXLSX(w io.Writer, series []Series) error {
	m, err := commonModel("report.WriteParamsXLSX", series)
	if err != nil {
		return err
	}

	header := []any{m.Abbrev + " Parameters"}
	for _, s := range series {
		header = append(header, s.Column)
	}
	records := [][]any{header}
	for i, name := range m.ParamNames {
		rec := []any{name}
		for _, s := range series {
			rec = append(rec, s.Curve.Params[i])
		}
		records = append(records, rec)
	}
	return writeSheet(w, ParamsSheet, records)
}

// writeSheet streams records into a single-sheet workbook and writes it to w.
func writeSheet(w io.Writer, name string, records [][]any) (err error) {
	wb := excelize.NewFile()
	defer func() {
		if cerr := wb.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "close workbook")
		}
	}()

	if err := wb.SetSheetName(wb.GetSheetName(0), name); err != nil {
		return errors.Wrapf(err, "name sheet %s", name)
	}
	sw, err := wb.NewStreamWriter(name)
	if err != nil {
		return errors.Wrapf(err, "open sheet %s", name)
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "cell name")
		}
		if err := sw.SetRow(cell, rec); err != nil {
			return errors.Wrapf(err, "write sheet %s", name)
		}
	}
	if err := sw.Flush(); err != nil {
		return errors.Wrapf(err, "write sheet %s", name)
	}
	if err := wb.Write(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}

// commonModel returns the model shared by every series.
func commonModel(op string, series []Series) (retention.Model, error) {
	if len(series) == 0 {
		return retention.Model{}, errors.NewValueError(op, "no series to export")
	}
	v := series[0].Curve.Variant
	for _, s := range series[1:] {
		if s.Curve.Variant != v {
			return retention.Model{}, errors.NewValueError(op,
				"mixed model families "+v.String()+" and "+s.Curve.Variant.String())
		}
	}
	return retention.ModelOf(v)
}
